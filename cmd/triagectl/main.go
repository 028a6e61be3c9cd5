package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/imcoderdev/emergency-backend/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "triagectl",
		Short: "Operator tool for the emergency incident backend",
		Long: `triagectl inspects the live response queue, explains the priority
of a single incident offline and applies database migrations.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.QueueCmd())
	rootCmd.AddCommand(cli.ScoreCmd())
	rootCmd.AddCommand(cli.MigrateCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
