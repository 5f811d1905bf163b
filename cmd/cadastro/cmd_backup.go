package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBackupCmd(a *app) *cobra.Command {
	var serve bool

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a workbook backup now, or keep running and back up on schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := a.deps.Scheduler

			if !serve {
				path, err := s.RunNow(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}

			if err := s.Start(); err != nil {
				return err
			}
			<-ctx.Done()
			<-s.Stop().Done()
			return nil
		},
	}

	cmd.Flags().BoolVar(&serve, "serve", false, "Run until interrupted, backing up on BACKUP_SCHEDULE")
	return cmd
}
