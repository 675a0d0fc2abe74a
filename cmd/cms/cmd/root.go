// Package cmd contém os comandos do binário cms.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cms-maintenance/internal/config"
	"cms-maintenance/internal/logger"

	"github.com/spf13/cobra"
)

// forceDelaySeconds é a espera de --force antes de começar.
const forceDelaySeconds = 5

type app struct {
	envFile    string
	cfg        *config.Config
	log        logger.Logger
	forceDelay int
}

func newApp() *app {
	return &app{forceDelay: forceDelaySeconds}
}

// NewRootCmd monta a árvore de comandos.
func NewRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cms",
		Short:         "Content repository maintenance tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(a.cleanupCmd(), a.serveCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	a.cfg = cfg
	a.log = logger.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	return nil
}

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}
