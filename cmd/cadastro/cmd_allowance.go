package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/allowance"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/bulletin"
	"github.com/FACorreiaa/cadastro-militares/pkg/money"
)

func newTransportCmd(a *app) *cobra.Command {
	var (
		fares []string
		quote bool
	)

	cmd := &cobra.Command{
		Use:   "transport ID",
		Short: "Compute and store the transport allowance of a person from one-way fares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			values := make([]decimal.Decimal, 0, len(fares))
			for _, f := range fares {
				v, err := money.ParseDecimal(f)
				if err != nil {
					return err
				}
				values = append(values, v)
			}

			var t allowance.Transport
			if quote {
				_, t, err = a.deps.AllowanceService.Quote(cmd.Context(), id, values)
			} else {
				t, err = a.deps.AllowanceService.SaveTransport(cmd.Context(), id, values)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Diária:      %s\n", money.NewFromDecimal(t.Daily).Display())
			fmt.Fprintf(out, "Total (%dd): %s\n", allowance.WorkDays, money.NewFromDecimal(t.Total).Display())
			fmt.Fprintf(out, "Cota:        %s\n", money.NewFromDecimal(t.Quota).Display())
			fmt.Fprintf(out, "Líquido:     %s\n", money.NewFromDecimal(t.Net).Display())
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&fares, "fare", nil, "One-way fare, repeat for each leg")
	cmd.Flags().BoolVar(&quote, "quote", false, "Compute without storing")
	_ = cmd.MarkFlagRequired("fare")

	cmd.AddCommand(newCancelCmd(a))
	return cmd
}

// parseDayCounts reads ID:BLACK:RED triples.
func parseDayCounts(specs []string) (map[int64]allowance.DayCount, error) {
	days := make(map[int64]allowance.DayCount, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid day count %q, want ID:BLACK:RED", spec)
		}
		id, err := parseID(parts[0])
		if err != nil {
			return nil, err
		}
		black, errB := strconv.Atoi(strings.TrimSpace(parts[1]))
		red, errR := strconv.Atoi(strings.TrimSpace(parts[2]))
		if errB != nil || errR != nil || black < 0 || red < 0 {
			return nil, fmt.Errorf("invalid day count %q", spec)
		}
		days[id] = allowance.DayCount{Black: black, Red: red}
	}
	return days, nil
}

func newCancelCmd(a *app) *cobra.Command {
	var specs []string

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Write the transport allowance cancellation bulletin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := parseDayCounts(specs)
			if err != nil {
				return err
			}
			items, err := a.deps.AllowanceService.Cancellations(cmd.Context(), days)
			if err != nil {
				return err
			}
			text, err := bulletin.CancellationBulletin(items)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&specs, "days", nil, "Unworked and extra days as ID:BLACK:RED, repeat per person")
	return cmd
}

func newBonusCmd(a *app) *cobra.Command {
	var (
		from, to string
		params   bulletin.BonusParams
	)

	cmd := &cobra.Command{
		Use:   "bonus ID...",
		Short: "Write the 2% representation bonus bulletin for a trip",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			period, err := allowance.ParsePeriod(from, to)
			if err != nil {
				return err
			}
			params.Period = period

			lines, err := a.deps.AllowanceService.Bonuses(cmd.Context(), ids, period)
			if err != nil {
				return err
			}
			text, err := bulletin.BonusBulletin(params, lines)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&from, "from", "", "Departure date dd/mm/yyyy")
	f.StringVar(&to, "to", "", "Return date dd/mm/yyyy")
	f.StringVar(&params.Destination, "destination", "", "Where the trip went")
	f.StringVar(&params.Purpose, "purpose", "", "Purpose of the trip")
	f.StringVar(&params.Authorization, "authorization", "", "Bulletin that authorized the trip")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
