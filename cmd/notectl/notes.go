package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"note-summary-be/pkg/notesclient"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	listJSON bool

	noteTitle   string
	noteContent string
	noteSummary string

	assumeYes bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your notes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		notes, err := newClient().Notes(cmd.Context())
		if err != nil {
			return err
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(notes)
		}

		if len(notes) == 0 {
			color.HiBlack("No notes yet. Create one with `notectl create`.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tUPDATED\tSUMMARY")
		for _, n := range notes {
			summarized := "-"
			if n.Summary != nil {
				summarized = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.Id, n.Title, n.UpdatedAt.Local().Format("2006-01-02 15:04"), summarized)
		}
		return w.Flush()
	},
}

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print one note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseId(args[0])
		if err != nil {
			return err
		}
		note, err := newClient().Note(cmd.Context(), id)
		if err != nil {
			return err
		}
		printNote(note)
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a note",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		note, err := newClient().CreateNote(cmd.Context(), noteTitle, noteContent)
		if err != nil {
			return err
		}
		color.Green("Note created. Your note has been created successfully.")
		color.HiBlack("%s", note.Id)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Change the title, content or summary of a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseId(args[0])
		if err != nil {
			return err
		}

		var update notesclient.NoteUpdate
		if cmd.Flags().Changed("title") {
			update.Title = &noteTitle
		}
		if cmd.Flags().Changed("content") {
			update.Content = &noteContent
		}
		if cmd.Flags().Changed("summary") {
			update.Summary = &noteSummary
		}
		if update.Title == nil && update.Content == nil && update.Summary == nil {
			return fmt.Errorf("nothing to change: pass --title, --content or --summary")
		}

		if _, err := newClient().UpdateNote(cmd.Context(), id, update); err != nil {
			return err
		}
		color.Green("Note updated. Your note has been updated successfully.")
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseId(args[0])
		if err != nil {
			return err
		}
		if !assumeYes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Are you sure you want to delete this note?") {
			color.HiBlack("Cancelled.")
			return nil
		}
		if err := newClient().DeleteNote(cmd.Context(), id); err != nil {
			return err
		}
		color.Green("Note deleted. Your note has been deleted successfully.")
		return nil
	},
}

// confirm asks a yes/no question and treats anything but y or yes as no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// parseId accepts a full id only; the server treats anything else as an unknown note.
func parseId(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid note id %q", raw)
	}
	return id, nil
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")

	createCmd.Flags().StringVar(&noteTitle, "title", "", "Note title")
	createCmd.Flags().StringVar(&noteContent, "content", "", "Note body")
	_ = createCmd.MarkFlagRequired("title")
	_ = createCmd.MarkFlagRequired("content")

	editCmd.Flags().StringVar(&noteTitle, "title", "", "New title")
	editCmd.Flags().StringVar(&noteContent, "content", "", "New body")
	editCmd.Flags().StringVar(&noteSummary, "summary", "", "Replace the stored summary")

	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Delete without asking for confirmation")

	rootCmd.AddCommand(listCmd, showCmd, createCmd, editCmd, deleteCmd)
}
