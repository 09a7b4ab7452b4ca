package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/parley-chat/parley/pkg/client"
	"github.com/parley-chat/parley/pkg/client/tui"
)

func joinCmd() *cobra.Command {
	var (
		nickname    string
		logFile     string
		downloadDir string
	)

	cmd := &cobra.Command{
		Use:   "join <address>",
		Short: "Join a chat room from the terminal",
		Long: `Join a chat room and talk from a terminal UI.

The address is the server's host:port; the WebSocket endpoint and
scheme are filled in for you.

Examples:
  parley join chat.example.com:8080
  parley join localhost:8080 --nick alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJoin(args[0], nickname, logFile, downloadDir)
		},
	}

	cmd.Flags().StringVarP(&nickname, "nick", "n", defaultNickname(), "Nickname to join with")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write engine logs to this file (default: discard)")
	cmd.Flags().StringVar(&downloadDir, "download-dir", "downloads", "Where fetched attachments are saved")

	return cmd
}

func runJoin(address, nickname, logFile, downloadDir string) error {
	// The TUI owns the terminal, so logs go to a file or nowhere.
	logOut := io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	cfg := client.DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(logOut, nil))

	ui := tui.New()
	ui.DownloadDir = downloadDir
	ui.SetNickname(nickname)

	c := client.New(cfg, ui, ui, nil)
	ui.Bind(c)

	go func() {
		if err := c.Connect(context.Background(), address, nickname); err != nil {
			ui.Notice(client.NoticeError, err.Error())
		}
	}()
	defer c.Close()

	return ui.Run()
}

func defaultNickname() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "guest"
}
