package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/rank"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/repository"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// parseIDs accepts ids as separate arguments or comma separated.
func parseIDs(args []string) ([]int64, error) {
	var ids []int64
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := parseID(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func printRecords(w io.Writer, records []repository.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tP/G\tNOME\tNOME DE GUERRA\tCPF\tPREC-CP")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, rank.Upper(r.Rank), r.FullName, r.WarName, r.NationalID, r.PrecedenceCode)
	}
	return tw.Flush()
}

func printRecord(w io.Writer, r repository.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%d\n", repository.Headers[0], r.ID)
	for i, v := range r.Row()[1:] {
		fmt.Fprintf(tw, "%s\t%s\n", repository.Headers[i+1], v)
	}
	return tw.Flush()
}
