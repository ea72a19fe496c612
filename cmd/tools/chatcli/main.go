package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/aurion-studio/aurion-web/backend/internal/config"
	"github.com/aurion-studio/aurion-web/backend/internal/logging"
	"github.com/aurion-studio/aurion-web/backend/internal/model/profile"
	"github.com/aurion-studio/aurion-web/backend/internal/widget"
)

func main() {
	var (
		endpoint       string
		conversationID string
		maxMessages    int
		timeout        time.Duration
		verbose        bool
	)

	rootCmd := &cobra.Command{
		Use:   "chatcli",
		Short: "Chat with an Aurion relay from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if verbose {
				level = "debug"
			}
			logging.SetupWriter(config.LogConfig{Level: level, Format: "console"}, os.Stderr)

			if conversationID == "" {
				conversationID = uuid.NewString()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client := widget.NewClient(endpoint, widget.WithConversationID(conversationID))
			renderer := newLineRenderer(cmd.OutOrStdout())
			controller := widget.NewController(client, renderer, widget.WithCap(maxMessages))

			fmt.Fprintf(cmd.OutOrStdout(), "conversation %s, %d messages max, Ctrl+D to quit\n", conversationID, maxMessages)
			return runLoop(ctx, bufio.NewScanner(cmd.InOrStdin()), controller, timeout)
		},
	}

	rootCmd.Flags().StringVar(&endpoint, "endpoint", "http://localhost:8080/api/aurion-chat", "Relay URL")
	rootCmd.Flags().StringVar(&conversationID, "conversation", "", "Conversation id (random when empty)")
	rootCmd.Flags().IntVar(&maxMessages, "cap", profile.DefaultCap, "Local message cap")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 90*time.Second, "Per-message timeout")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log relay failures")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runLoop(ctx context.Context, scanner *bufio.Scanner, controller *widget.Controller, timeout time.Duration) error {
	for controller.State() != widget.StateLimitReached {
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, timeout)
		err := controller.Send(sendCtx, line)
		cancel()

		switch {
		case err == nil, errors.Is(err, widget.ErrEmptyMessage):
		case errors.Is(err, widget.ErrLimitReached):
			return nil
		default:
			return err
		}

		if ctx.Err() != nil {
			return nil
		}
	}
	return nil
}
