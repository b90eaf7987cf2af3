package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/wordflash/internal/cli"
	"codeberg.org/snonux/wordflash/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	addCommands(rootCmd, flags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// withProcessor wraps a handler so it runs against a processor built from
// the merged flag, environment and config file settings
func withProcessor(flags *cli.Flags, run func(cmd *cobra.Command, args []string, proc *processor.Processor) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return err
		}
		proc, err := processor.NewProcessor(flags, cfg)
		if err != nil {
			return err
		}
		defer proc.Close()
		return run(cmd, args, proc)
	}
}
