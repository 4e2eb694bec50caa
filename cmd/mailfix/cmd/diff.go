package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
)

var (
	diffEnv envelope

	diffCmd = &cobra.Command{
		Use:   "diff message",
		Short: "Show what the pipeline would change in a message",
		Args:  cobra.ExactArgs(1),
		RunE:  RunDiff,
	}
)

func init() {
	flags := diffCmd.Flags()
	flags.StringVar(&diffEnv.arrival, "arrival", "", "arrival time to record for the message")
	flags.StringVar(&diffEnv.mailFrom, "mail-from", "", "envelope sender")
	flags.StringSliceVar(&diffEnv.rcptTo, "rcpt-to", nil, "envelope recipients")

	rootCmd.AddCommand(diffCmd)
}

// lineDiff renders a line-by-line unified style diff of before and after,
// without hunk headers. It returns an empty string if they are the same.
func lineDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	changed := false
	out := &strings.Builder{}
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
			changed = true
		case diffmatchpatch.DiffDelete:
			prefix = "-"
			changed = true
		}

		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix)
			out.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				out.WriteString("\n")
			}
		}
	}

	if !changed {
		return ""
	}
	return out.String()
}

// RunDiff implements the diff command.
func RunDiff(cmd *cobra.Command, args []string) error {
	path := args[0]
	before, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	r, err := newRunner(diffEnv)
	if err != nil {
		return err
	}

	msg, err := r.process(cmd.Context(), path, bytes.NewReader(before))
	if err != nil {
		return err
	}

	after := &strings.Builder{}
	if _, err := msg.WriteTo(after); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "--- %s\n+++ %s (fixed)\n", path, path)
	_, err = io.WriteString(w, lineDiff(string(before), after.String()))
	return err
}
