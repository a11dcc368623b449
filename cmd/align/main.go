// Package main provides a batch command that aligns audio files against
// their transcripts and writes a TextGrid and a report for each.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/listenupapp/aligner/internal/aligner"
	"github.com/listenupapp/aligner/internal/domain"
	"github.com/listenupapp/aligner/internal/format"
	"github.com/listenupapp/aligner/internal/id"
	"github.com/listenupapp/aligner/internal/logger"
)

const usage = `Usage: align [-out dir] [-seed n] [-delay d] [-log-level l] [-quiet] file.wav=TRANSCRIPT | file.wav ...

A bare audio path reads its transcript from the sibling .txt file.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "align: %v\n", err)
		}
		os.Exit(1)
	}
}

// input is one audio file to align together with where its outputs go.
type input struct {
	entry domain.TranscriptEntry
	dir   string
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("align", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}

	outDir := flags.String("out", "", "Output directory (default: next to each audio file)")
	seed := flags.Uint64("seed", 0, "Seed for reproducible alignments (default: random)")
	delay := flags.Duration("delay", 0, "Simulated processing time per file")
	logLevel := flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	quiet := flags.Bool("quiet", false, "Discard log output")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return errors.New("no audio files given")
	}

	seeded := false
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seeded = true
		}
	})

	log := logger.Discard()
	if !*quiet {
		log = logger.New(logger.Config{
			Writer: stderr,
			Level:  logger.ParseLevel(*logLevel),
		})
	}

	inputs, err := parseInputs(flags.Args(), *outDir)
	if err != nil {
		return err
	}

	entries := make([]domain.TranscriptEntry, len(inputs))
	for i := range inputs {
		entries[i] = inputs[i].entry
	}
	if err := domain.ValidateAll(entries); err != nil {
		return err
	}

	a := aligner.NewRandom()
	if seeded {
		a = aligner.NewSeeded(*seed)
	}

	for i, in := range inputs {
		if *delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(*delay):
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		result := a.Align(in.entry)
		written, err := format.WriteFiles(in.dir, &result)
		if err != nil {
			log.WithError(err).Error("Writing outputs failed", "file", in.entry.Identifier)
			return fmt.Errorf("%s: %w", in.entry.Identifier, err)
		}

		log.WithFields(map[string]any{
			"file":   in.entry.Identifier,
			"index":  i + 1,
			"total":  len(inputs),
			"words":  result.WordCount(),
			"phones": result.PhoneCount(),
		}).Info("File aligned")

		fmt.Fprintf(stdout, "%s: %d words, %d phonemes, %ss\n  %s\n  %s\n",
			in.entry.Identifier,
			result.WordCount(),
			result.PhoneCount(),
			format.Seconds(result.TotalDuration),
			written.TextGridPath,
			written.ReportPath)
	}

	return nil
}

// parseInputs turns "file.wav=TRANSCRIPT" and bare "file.wav" arguments
// into entries. A bare path without a sidecar gets an empty transcript so
// validation reports it like any other missing transcript. Two inputs that
// would write the same output file are rejected.
func parseInputs(args []string, outDir string) ([]input, error) {
	inputs := make([]input, 0, len(args))
	outputs := make(map[string]string, len(args))
	for _, arg := range args {
		path, transcript, inline := splitArg(arg)

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("audio file: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", path)
		}

		if !inline {
			text, err := os.ReadFile(format.SidecarTranscriptPath(path))
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read transcript: %w", err)
			}
			transcript = string(text)
		}

		entryID, err := id.NewEntryID()
		if err != nil {
			return nil, fmt.Errorf("generate entry ID: %w", err)
		}
		entry := domain.NewTranscriptEntry(entryID, filepath.Base(path), "", info.Size())
		entry.Transcript = transcript

		dir := outDir
		if dir == "" {
			dir = filepath.Dir(path)
		}

		target := filepath.Join(dir, format.TextGridName(entry.Identifier))
		if prev, dup := outputs[target]; dup {
			return nil, fmt.Errorf("%s and %s both write %s", prev, path, target)
		}
		outputs[target] = path

		inputs = append(inputs, input{entry: *entry, dir: dir})
	}
	return inputs, nil
}

// splitArg separates "path=TRANSCRIPT". An argument naming an existing file
// is a bare path even when it contains "=", and otherwise the split is made
// at the first "=" whose left side is an existing file.
func splitArg(arg string) (path, transcript string, inline bool) {
	if isFile(arg) {
		return arg, "", false
	}
	for i := range len(arg) {
		if arg[i] == '=' && isFile(arg[:i]) {
			return arg[:i], arg[i+1:], true
		}
	}
	return strings.Cut(arg, "=")
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
