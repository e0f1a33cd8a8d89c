package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"note-summary-be/pkg/notesclient"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	tokenFile string
)

var rootCmd = &cobra.Command{
	Use:           "notectl",
	Short:         "Command line client for the note summary API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		color.Red("Error: %s", describe(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("NOTES_API_URL", "http://localhost:3000"), "API base URL")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", defaultTokenFile(), "Where the session token is kept")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".notectl-token"
	}
	return filepath.Join(dir, "notectl", "token")
}

func loadToken() string {
	raw, err := os.ReadFile(tokenFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func saveToken(token string) error {
	if token == "" {
		if err := os.Remove(tokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(tokenFile), 0o700); err != nil {
		return err
	}
	return os.WriteFile(tokenFile, []byte(token+"\n"), 0o600)
}

func newClient() *notesclient.Client {
	return notesclient.New(serverURL, notesclient.WithToken(loadToken()))
}

// describe turns API errors into the server's own wording.
func describe(err error) string {
	var apiErr *notesclient.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == 401 {
			return "Unauthorized. Run `notectl login` first."
		}
		return apiErr.Message
	}
	if errors.Is(err, notesclient.ErrNotSignedIn) {
		return "Not signed in. Run `notectl login` first."
	}
	return err.Error()
}

func printNote(n *notesclient.Note) {
	color.New(color.Bold).Println(n.Title)
	color.HiBlack("%s  updated %s", n.Id, n.UpdatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Println()
	fmt.Println(n.Content)
	if n.Summary != nil {
		fmt.Println()
		color.Cyan("Summary: %s", *n.Summary)
	}
}
