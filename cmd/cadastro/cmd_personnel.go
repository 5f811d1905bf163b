package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/repository"
)

func newListCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the registry by seniority then name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := a.deps.PersonnelService
			var (
				records []repository.Record
				err     error
			)
			if strings.TrimSpace(name) != "" {
				records, err = svc.FilterByName(cmd.Context(), name)
			} else {
				records, err = svc.List(cmd.Context())
			}
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Only names or war names matching this term")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search TEXT",
		Short: "Search by name, war name, rank or identifier prefix",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.deps.PersonnelService.Search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum results")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show every field of a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			rec, err := a.deps.PersonnelService.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printRecord(cmd.OutOrStdout(), *rec)
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var r repository.Record

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a person",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.deps.PersonnelService.Create(cmd.Context(), r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s %s with id %d\n", rec.Rank, rec.FullName, rec.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&r.Rank, "rank", "", "Rank, abbreviations are expanded (required)")
	f.StringVar(&r.FullName, "name", "", "Full name (required)")
	f.StringVar(&r.WarName, "war-name", "", "War name, defaults to the first given name")
	f.StringVar(&r.NationalID, "cpf", "", "CPF")
	f.StringVar(&r.PrecedenceCode, "prec", "", "PREC-CP")
	f.StringVar(&r.MilitaryID, "idt", "", "Military identity number")
	f.StringVar(&r.Bank, "bank", "", "Bank")
	f.StringVar(&r.Agency, "agency", "", "Bank agency")
	f.StringVar(&r.Account, "account", "", "Bank account")
	f.StringVar(&r.FormationYear, "formation-year", "", "Formation year")
	f.StringVar(&r.BirthDate, "birth-date", "", "Birth date")
	f.StringVar(&r.EnlistmentDate, "enlistment-date", "", "Enlistment date")
	f.StringVar(&r.Address, "address", "", "Address")
	f.StringVar(&r.PostalCode, "cep", "", "Postal code")
	f.StringVar(&r.PreschoolValue, "preschool", "", "Preschool allowance value")
	f.StringVar(&r.TransportValue, "transport", "", "Transport allowance value")
	f.StringVar(&r.HousingFlag, "housing", "", "Has official housing (Sim/Não)")
	_ = cmd.MarkFlagRequired("rank")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Remove people from the registry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if err := a.deps.PersonnelService.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("id %d: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", id)
			}
			return nil
		},
	}
}
