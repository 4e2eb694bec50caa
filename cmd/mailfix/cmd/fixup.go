package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// ErrStdinTwice is returned when "-" is named more than once.
var ErrStdinTwice = errors.New("stdin (\"-\") may only be given once")

var (
	fixupEnv     envelope
	fixupInPlace bool

	fixupCmd = &cobra.Command{
		Use:   "fixup [file...]",
		Short: "Run messages through the pipeline and write out the result",
		Long: `Run each message through the pipeline with the fixup_date plugin loaded.

Each file is read as a single message. With no files, or a file named "-", the
message is read from stdin. Results are written to stdout in the order given,
unless --in-place is set, in which case each file is replaced.`,
		RunE: RunFixup,
	}
)

func init() {
	flags := fixupCmd.Flags()
	flags.StringVar(&fixupEnv.arrival, "arrival", "", "arrival time to record for every message")
	flags.StringVar(&fixupEnv.mailFrom, "mail-from", "", "envelope sender")
	flags.StringSliceVar(&fixupEnv.rcptTo, "rcpt-to", nil, "envelope recipients")
	flags.BoolVarP(&fixupInPlace, "in-place", "i", false, "replace each file with the result")
	flags.Int("workers", 4, "number of messages to process at once")
	flags.String("metrics-textfile", "", "write metrics to this file when done")

	_ = v.BindPFlag("pipeline.workers", flags.Lookup("workers"))
	_ = v.BindPFlag("metrics.textfile", flags.Lookup("metrics-textfile"))

	rootCmd.AddCommand(fixupCmd)
}

// fixupFile runs a single file (or stdin) through the pipeline and returns the
// rendered message.
func fixupFile(ctx context.Context, r *runner, path string) ([]byte, error) {
	var in io.Reader = os.Stdin
	source := "stdin"
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		in = f
		source = path
	}

	msg, err := r.process(ctx, source, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	buf := &bytes.Buffer{}
	if _, err := msg.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	return buf.Bytes(), nil
}

// replaceFile writes the data next to path and then renames it over path.
func replaceFile(path string, data []byte) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmp.Name(), fi.Mode().Perm()); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// RunFixup implements the fixup command.
func RunFixup(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"-"}
	}

	stdins := 0
	for _, path := range args {
		if path == "-" {
			stdins++
		}
	}
	if stdins > 1 {
		return ErrStdinTwice
	}

	r, err := newRunner(fixupEnv)
	if err != nil {
		return err
	}

	outputs := make([][]byte, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.Pipeline.Workers)
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			out, err := fixupFile(ctx, r, path)
			if err != nil {
				return err
			}

			if fixupInPlace && path != "-" {
				return replaceFile(path, out)
			}

			outputs[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, out := range outputs {
		if _, err := w.Write(out); err != nil {
			return err
		}
	}

	return r.writeMetrics()
}
