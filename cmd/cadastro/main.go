// Command cadastro manages the personnel registry: spreadsheet import,
// exports, allowances and bulletins.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/cadastro-militares/pkg/config"
)

// app carries the dependencies shared by every command. They are built
// before a command runs and released after it.
type app struct {
	deps *Dependencies
}

// close writes metrics and releases the dependencies. It runs whether or
// not the command failed.
func (a *app) close() {
	if a.deps == nil {
		return
	}
	a.deps.WriteMetrics()
	a.deps.Cleanup()
	a.deps = nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "cadastro",
		Short:         "Personnel registry with spreadsheet import and reconciliation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel}))
			slog.SetDefault(logger)

			deps, err := InitDependencies(cfg, logger)
			if err != nil {
				return err
			}
			a.deps = deps
			return nil
		},
	}

	root.AddCommand(
		newImportCmd(a),
		newExportCmd(a),
		newRosterCmd(a),
		newListCmd(a),
		newSearchCmd(a),
		newShowCmd(a),
		newAddCmd(a),
		newDeleteCmd(a),
		newRanksCmd(a),
		newBanksCmd(a),
		newStipendCmd(a),
		newTransportCmd(a),
		newBonusCmd(a),
		newBulletinCmd(a),
		newPhotoCmd(a),
		newBackupCmd(a),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "interrupted")
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		stop()
		os.Exit(1)
	}
}
