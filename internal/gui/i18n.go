package gui

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Spanish labels. English is the source language.
	l10n.Register("es", l10n.LexiconMap{
		// Input
		"Input video":          "Video de entrada",
		"Path to a video file": "Ruta a un archivo de video",
		"Choose...":            "Elegir…",

		// Range
		"Start (drag or edit the field):": "Inicio (desliza o edita el campo):",
		"End (drag or edit the field):":   "Final (desliza o edita el campo):",
		"Start":                           "Inicio",
		"End":                             "Final",
		"Duration":                        "Duración",

		// Output
		"Frames folder":             "Carpeta de frames",
		"Prefix":                    "Prefijo",
		"Format":                    "Formato",
		"Quality (2-31)":            "Calidad (2–31)",
		"Export trimmed clip (MP4)": "Generar archivo recortado (MP4)",
		"Save as...":                "Guardar como…",

		"Use PTS in file names (real timestamps)": "Usar PTS en nombre de archivos (timestamps reales)",

		// Actions and log
		"Extract frames":                 "Extraer frames",
		"Extracting...":                  "Extrayendo...",
		"Clear log":                      "Limpiar log",
		"Log":                            "Log",
		"Log output will appear here...": "La salida del log aparecerá aquí...",

		// Duration label
		"Duration: %s":                    "Duración: %s",
		"Duration: loading...":            "Duración: Cargando...",
		"Duration: (ffprobe unavailable)": "Duración: (ffprobe no disponible)",
		"Duration: error reading video":   "Duración: Error al leer video",
		"Duration: -":                     "Duración: –",

		// Dialogs
		"In progress":            "En progreso",
		"Extraction in progress": "Extracción en progreso",
		"Input":                  "Entrada",
		"Dependencies":           "Dependencias",
		"Quality":                "Calidad",
		"Extraction":             "Extracción",
		"Done":                   "Listo",

		"An extraction is running. Wait for it to finish before loading another video.": "Ya hay una extracción en progreso. Por favor espera.",

		"%d %s frames saved to:\n%s": "%d frames %s guardados en:\n%s",
	})
}
