package format

import (
	"path/filepath"
	"strings"
)

// Output file suffixes.
const (
	TextGridExt  = ".TextGrid"
	ReportSuffix = "_report.txt"
)

// Content types served with the rendered documents.
const (
	TextGridContentType = "text/plain; charset=utf-8"
	ReportContentType   = "text/plain; charset=utf-8"
)

// TextGridName derives the TextGrid file name for an audio file,
// e.g. "take1.wav" → "take1.TextGrid".
func TextGridName(audioName string) string {
	return stem(audioName) + TextGridExt
}

// ReportName derives the report file name for an audio file,
// e.g. "take1.wav" → "take1_report.txt".
func ReportName(audioName string) string {
	return stem(audioName) + ReportSuffix
}

// stem drops the directory and the extension. Names without an extension,
// and dot-files such as ".wav", keep their full base name.
func stem(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// TranscriptExt is the extension of sidecar transcript files.
const TranscriptExt = ".txt"

// SidecarTranscriptPath returns the transcript file expected next to an
// audio file, e.g. "in/take1.wav" → "in/take1.txt".
func SidecarTranscriptPath(audioPath string) string {
	return filepath.Join(filepath.Dir(audioPath), stem(audioPath)+TranscriptExt)
}
