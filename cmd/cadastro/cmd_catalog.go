package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/cadastro-militares/pkg/money"
)

func newRanksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ranks",
		Short: "List the rank catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ranks, err := a.deps.PersonnelService.Ranks(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range ranks {
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add NAME",
			Short: "Add a rank to the catalog",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				name := strings.Join(args, " ")
				added, err := a.deps.PersonnelService.AddRank(cmd.Context(), name)
				if err != nil {
					return err
				}
				if !added {
					fmt.Fprintf(cmd.OutOrStdout(), "%s already registered\n", name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "suggest TEXT",
			Short: "Suggest catalog ranks for a typed or abbreviated rank",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ranks, err := a.deps.PersonnelService.SuggestRank(cmd.Context(), strings.Join(args, " "), 5)
				if err != nil {
					return err
				}
				for _, r := range ranks {
					fmt.Fprintln(cmd.OutOrStdout(), r)
				}
				return nil
			},
		},
	)
	return cmd
}

func newBanksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "banks",
		Short: "List the bank catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			banks, err := a.deps.PersonnelService.Banks(cmd.Context())
			if err != nil {
				return err
			}
			for _, b := range banks {
				fmt.Fprintln(cmd.OutOrStdout(), b)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Add a bank to the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			added, err := a.deps.PersonnelService.AddBank(cmd.Context(), name)
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already registered\n", name)
			}
			return nil
		},
	})
	return cmd
}

func newStipendCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stipend",
		Short: "List the base pay of every rank",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stipends, err := a.deps.PersonnelService.Stipends(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, s := range stipends {
				fmt.Fprintf(tw, "%s\t%s\n", s.Rank, money.NewFromDecimal(s.Amount).Display())
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set RANK AMOUNT",
		Short: `Set the base pay of a rank ("3º Sargento" "5.483,00")`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := money.ParseDecimal(args[1])
			if err != nil {
				return err
			}
			return a.deps.PersonnelService.SetStipend(cmd.Context(), args[0], amount)
		},
	})
	return cmd
}
