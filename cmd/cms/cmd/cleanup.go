package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cms-maintenance/internal/cleanup"
	"cms-maintenance/internal/console"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func (a *app) cleanupCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "content:cleanup",
		Short: "Remove orphaned localized properties from the content repository",
		Long: `Walks every content node, replays each localized document through the
document pipeline and removes the "i18n:<locale>-*" properties the pipeline
no longer writes. Workflow and authorship fields are always kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCleanup(cmd, cleanupFlags{
				force:     v.GetBool("force"),
				dryRun:    v.GetBool("dry-run"),
				debug:     v.GetBool("debug"),
				debugFile: v.GetString("debug-file"),
			})
		},
	}

	cmd.Flags().BoolP("force", "f", false, "Do not ask for confirmation.")
	cmd.Flags().Bool("dry-run", false, "Do not make any changes to the repository.")
	cmd.Flags().Bool("debug", false, "Write debug information to a file.")
	cmd.Flags().String("debug-file", "", "Debug file (default <project-dir>/var/<timestamp>_content-cleanup.md).")

	v.SetEnvPrefix("CMS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		panic(fmt.Sprintf("bind cleanup flags: %v", err))
	}
	return cmd
}

type cleanupFlags struct {
	force     bool
	dryRun    bool
	debug     bool
	debugFile string
}

func defaultDebugFile(projectDir string, now time.Time) string {
	return filepath.Join(projectDir, "var", now.Format("2006-01-02-15-04-05")+"_content-cleanup.md")
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func (a *app) runCleanup(cmd *cobra.Command, flags cleanupFlags) (err error) {
	ctx := cmd.Context()
	ui := console.New(cmd.InOrStdin(), cmd.OutOrStdout())

	ui.Title("Content Cleanup")

	if !flags.dryRun {
		ui.Warning("This command will remove properties from the content repository. Make sure to have a backup before running this command.")
		if !flags.force {
			ok, err := ui.Confirm("Do you want to continue [y/n]")
			if err != nil {
				return err
			}
			if !ok {
				ui.Warning("You have aborted the command")
				return nil
			}
		} else if err := ui.Countdown(ctx, a.forceDelay); err != nil {
			return err
		}
	}

	ui.Section("Initiating cleanup process ...")
	ui.Writeln("Project directory: %s", a.cfg.ProjectDir)
	ui.Writeln("Dry-run: %s", enabled(flags.dryRun))
	ui.Writeln("Debug: %s", enabled(flags.debug))

	var debugLog io.Writer
	if flags.debug {
		path := flags.debugFile
		if path == "" {
			path = defaultDebugFile(a.cfg.ProjectDir, time.Now())
		}
		ui.Writeln("Debug file: %s", path)

		f, err := openDebugFile(path)
		if err != nil {
			return err
		}
		defer f.Close()
		debugLog = f
	}
	ui.Newline()
	ui.Newline()

	backend, err := a.openContent(ctx)
	if err != nil {
		return err
	}
	defer func() {
		// ctx pode já estar cancelado (SIGINT); o fechamento ainda precisa rodar
		if cerr := backend.close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}()

	p, err := a.documentPipeline(backend.session)
	if err != nil {
		return err
	}

	opts := []cleanup.Option{
		cleanup.WithNamespaces(p.namespaces),
		cleanup.WithPersistOptions(p.dispatcher.ResolveOptions()),
		cleanup.WithLogger(a.log.WithComponent("cleanup")),
	}
	if debugLog != nil {
		opts = append(opts, cleanup.WithDebugLog(debugLog))
	}
	reconciler := cleanup.NewReconciler(backend.session, p.manager, p.dispatcher, opts...)

	ui.Section("Running cleanup process ...")
	counters := ui.Counters("Nodes", "Properties", "Removed properties")
	counters.Start()

	_, runErr := reconciler.Run(ctx, cleanup.RunOptions{
		DryRun: flags.dryRun,
		Progress: func(s cleanup.Stats) {
			counters.Update(s.Nodes, s.Properties, s.RemovedProperties)
		},
	})
	counters.Finish()
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			ui.Warning("Cleanup interrupted; processed nodes were saved")
		}
		return runErr
	}

	ui.Success("Cleanup process finished")
	return nil
}

func openDebugFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create debug directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open debug file: %w", err)
	}
	return f, nil
}
