package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kikiluvv/videotoframe/internal/config"
	"github.com/kikiluvv/videotoframe/internal/pipeline"
	"github.com/kikiluvv/videotoframe/internal/session"
	"github.com/kikiluvv/videotoframe/pkg/util"
)

type extractOptions struct {
	start    string
	end      string
	duration string

	outputDir string
	prefix    string
	format    string
	quality   string
	pts       bool
	clip      string

	noProgress bool
}

var extractOpts extractOptions

var extractCmd = &cobra.Command{
	Use:   "extract [input video]",
	Short: "Extract the frames of a range without opening the window",
	Long: `Extract every native frame between --start and --end.

Times are HH:MM:SS.mmm or plain seconds. --duration wins over --end.
Without --end or --duration the range runs to the end of the video.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		s := session.New(log.Logger, newPipeline(cfg), defaultsFrom(cfg))

		report, err := extract(s, args[0], extractOpts, cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d frames -> %s\n", report.FrameCount, report.OutputDir)
		if report.ClipPath != "" {
			fmt.Fprintf(out, "clip -> %s\n", report.ClipPath)
		}
		return nil
	},
}

func init() {
	f := extractCmd.Flags()
	f.StringVarP(&extractOpts.start, "start", "s", "", "range start (default 00:00:00.000)")
	f.StringVarP(&extractOpts.end, "end", "e", "", "range end (default: end of video)")
	f.StringVarP(&extractOpts.duration, "duration", "d", "", "range length, overrides --end")
	f.StringVarP(&extractOpts.outputDir, "output", "o", "", "frames folder (default from config)")
	f.StringVar(&extractOpts.prefix, "prefix", "", "file name prefix (default from config)")
	f.StringVarP(&extractOpts.format, "format", "f", "", "png, jpg, jpeg, webp, bmp, tiff, tif or gif")
	f.StringVarP(&extractOpts.quality, "quality", "q", "", "2 (best) to 31, for jpg/jpeg/webp")
	f.BoolVar(&extractOpts.pts, "pts", false, "number files by presentation timestamp")
	f.StringVar(&extractOpts.clip, "clip", "", "also export the range as an MP4 to this path")
	f.BoolVar(&extractOpts.noProgress, "no-progress", false, "hide the progress bar")
}

func defaultsFrom(cfg *config.Config) session.Defaults {
	return session.Defaults{
		OutputDir: cfg.OutputDir,
		Prefix:    cfg.Prefix,
		Format:    cfg.Format,
		Quality:   cfg.Quality,
		ClipFile:  cfg.ClipFile,
	}
}

// await applies worker messages until the terminal one and returns it.
func await(s *session.Session, each func(session.Message)) session.Message {
	for msg := range s.Results() {
		s.Apply(msg)
		if each != nil {
			each(msg)
		}
		if msg.Terminal() {
			return msg
		}
	}
	return nil
}

// extract drives a session the way the window does: probe, range edit,
// extraction, with ffmpeg's log lines and a progress bar on w.
func extract(s *session.Session, input string, opts extractOptions, w io.Writer) (*pipeline.Report, error) {
	if err := s.SelectInput(input); err != nil {
		return nil, err
	}
	dm := await(s, nil).(session.DurationMsg)
	if dm.Known {
		log.Info().Str("duration", util.FormatSeconds(dm.Seconds)).Msg("input probed")
	} else {
		log.Warn().Err(dm.Err).Msg("duration unknown, range is not bounded by the video length")
	}

	end := opts.end
	if end == "" && opts.duration == "" {
		end = util.FormatTimecode(s.Snapshot().MaxMs)
	}
	if _, err := s.Dispatch(session.Event{
		Kind:         session.EventTextCommit,
		StartText:    opts.start,
		EndText:      end,
		DurationText: opts.duration,
	}); err != nil {
		return nil, fmt.Errorf("invalid range: %w", err)
	}

	job, err := s.StartExtraction(session.Request{
		Input:      input,
		OutputDir:  opts.outputDir,
		Prefix:     opts.prefix,
		Format:     opts.format,
		Quality:    opts.quality,
		UsePTS:     opts.pts,
		ExportClip: opts.clip != "",
		ClipPath:   opts.clip,
	})
	if err != nil {
		return nil, err
	}

	bar := progressbar.NewOptions(1000,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(fmt.Sprintf("%s -> %s", job.Start(), job.End())),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "|",
			BarEnd:        "|",
		}),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetVisibility(!opts.noProgress),
		progressbar.OptionSetRenderBlankState(true),
	)

	done := await(s, func(msg session.Message) {
		switch m := msg.(type) {
		case session.LogMsg:
			_ = bar.Clear()
			fmt.Fprintln(w, strings.TrimRight(m.Line, "\n"))
		case session.ProgressMsg:
			_ = bar.Set(int(m.Fraction * 1000))
		}
	}).(session.DoneMsg)

	if done.Err != nil {
		_ = bar.Exit()
		return nil, done.Err
	}
	_ = bar.Finish()
	fmt.Fprintln(w)
	return done.Report, nil
}
