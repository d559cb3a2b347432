package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"

	"github.com/arthur-debert/serverwrap/cmd/serverwrap"
	"github.com/arthur-debert/serverwrap/pkg/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := serverwrap.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		msg := fmt.Sprintf("Error: %v", err)
		if ui.DetectFormat(os.Stderr).Color() {
			msg = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true).Render(msg)
		}
		fmt.Fprintln(os.Stderr, msg)
		stop()
		os.Exit(1)
	}
}
