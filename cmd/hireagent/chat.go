package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kalambet/hireagent/internal/brief"
	"github.com/kalambet/hireagent/internal/chatui"
	"github.com/kalambet/hireagent/internal/config"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the hiring agent in the terminal",
	Long: `Start an interactive chat session in the terminal.

Examples:
  hireagent chat
  hireagent chat --brief ./job-posting.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		briefPath, _ := cmd.Flags().GetString("brief")
		return runChat(briefPath)
	},
}

func init() {
	chatCmd.Flags().String("brief", "", "send a hiring brief (.txt, .md, .pdf, .html) as the first message")
}

func runChat(briefPath string) error {
	var first string
	if briefPath != "" {
		text, err := brief.Load(briefPath)
		if err != nil {
			return err
		}
		first = text
		printStep("Loaded brief %s (%d characters)", briefPath, len(first))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The TUI owns the terminal; keep logs out of it.
	logFile, err := openChatLog(cfg.Storage.DataDir)
	if err != nil {
		return err
	}
	defer logFile.Close()
	level, _ := config.ParseLevel(cfg.Log.Level)
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.backend.EnsureReady(ctx, os.Stderr); err != nil {
		return err
	}

	s := a.orch.Start()
	model := chatui.New(ctx, a.orch, s.ID, first)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("running chat: %w", err)
	}

	if turns := model.Turns(); len(turns) > 0 {
		printSuccess("Session %s ended after %d turns", s.ID, len(turns))
	}
	return nil
}

func openChatLog(dataDir string) (*os.File, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	path := filepath.Join(dataDir, "chat.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening chat log: %w", err)
	}
	return f, nil
}
