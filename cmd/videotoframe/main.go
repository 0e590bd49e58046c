package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kikiluvv/videotoframe/internal/config"
	"github.com/kikiluvv/videotoframe/internal/gui"
	"github.com/kikiluvv/videotoframe/internal/logging"
	"github.com/kikiluvv/videotoframe/internal/metrics"
	"github.com/kikiluvv/videotoframe/internal/pipeline"
	"github.com/kikiluvv/videotoframe/pkg/util"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "videotoframe",
	Short: "VideoToFrame - extract every native frame of a video range",
	Long:  "Pick a video, choose a start and end, and extract each frame in that range with ffmpeg. Runs the desktop window when no command is given.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging
		logging.Init(verbose)

		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// Store config in context
		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return guiCmd.RunE(cmd, args)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./videotoframe.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(guiCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(timecodeCmd)
	rootCmd.AddCommand(configCmd)
}

func newPipeline(cfg *config.Config) *pipeline.Pipeline {
	return pipeline.New(log.Logger, &pipeline.Config{
		FFmpegBinary:  cfg.FFmpeg.BinaryPath,
		FFprobeBinary: cfg.FFmpeg.ProbePath,
		Threads:       cfg.FFmpeg.Threads,
		Metrics:       metrics.New(),
		MetricsFile:   cfg.MetricsFile,
	})
}

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Open the extraction window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		p := newPipeline(cfg)
		if err := p.CheckTools(); err != nil {
			// the window still opens; extraction reports the same error
			log.Warn().Err(err).Msg("ffmpeg tools missing")
		}

		gui.Run(log.Logger, cfg, p)
		return nil
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [input video]",
	Short: "Show duration and stream details of a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		info, err := newPipeline(cfg).ProbeVideo(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "file:     %s\n", info.FilePath)
		fmt.Fprintf(out, "duration: %s\n", util.FormatTimecode(info.Duration.Milliseconds()))
		fmt.Fprintf(out, "video:    %s %dx%d @ %.3f fps\n", info.VideoCodec, info.Width, info.Height, info.FPS)
		if info.HasAudio {
			fmt.Fprintf(out, "audio:    %s\n", info.AudioCodec)
		}
		if info.Bitrate > 0 {
			fmt.Fprintf(out, "bitrate:  %d kb/s\n", info.Bitrate/1000)
		}
		return nil
	},
}

var timecodeCmd = &cobra.Command{
	Use:   "timecode [value...]",
	Short: "Normalize timecodes (HH:MM:SS.mmm or seconds)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var failed error
		for _, arg := range args {
			ms, err := util.ParseTimecode(arg)
			if err != nil {
				failed = errors.Join(failed, err)
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", arg, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d ms\n", util.FormatTimecode(ms), ms)
		}
		return failed
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(config.FromContext(cmd.Context()))
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var forceInit bool

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "./" + config.FileName
		if len(args) == 1 {
			path = args[0]
		}
		if util.FileExists(path) && !forceInit {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("config written")
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
