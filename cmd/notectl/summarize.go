package main

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"note-summary-be/pkg/notesclient"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [id]",
	Short: "Summarize a stored note and keep the summary on it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseId(args[0])
		if err != nil {
			return err
		}

		stop := spinner("Summarizing")
		note, err := newClient().SummarizeNote(cmd.Context(), id)
		stop()
		if err != nil {
			return err
		}
		color.Green("Note summarized successfully.")
		if note.Summary != nil {
			color.Cyan("%s", *note.Summary)
		}
		return nil
	},
}

var summarizeTextCmd = &cobra.Command{
	Use:   "summarize-text [text]",
	Short: "Summarize text without saving it; reads stdin when no text is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := textArg(args)
		if err != nil {
			return err
		}

		stop := spinner("Summarizing")
		summary, err := newClient().Summarize(cmd.Context(), content)
		stop()
		if err != nil {
			return err
		}
		color.Cyan("%s", summary)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print note changes pushed by the server until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		color.HiBlack("Watching for note changes. Press Ctrl+C to stop.")
		return newClient().Watch(cmd.Context(), func(p notesclient.Push) {
			color.Yellow("%s  %s  %s", time.Now().Format("15:04:05"), p.Data.Reason, p.Data.NoteId)
		})
	},
}

func textArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// spinner prints a progress line to stderr until the returned func is called.
func spinner(label string) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		frames := []string{"|", "/", "-", "\\"}
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				_, _ = os.Stderr.WriteString("\r\033[K")
				return
			case <-ticker.C:
				_, _ = os.Stderr.WriteString("\r" + frames[i%len(frames)] + " " + label + "...")
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func init() {
	rootCmd.AddCommand(summarizeCmd, summarizeTextCmd, watchCmd)
}
