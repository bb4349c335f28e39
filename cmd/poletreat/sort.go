package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Spok95/poletreat/internal/domain/sorting"
	"github.com/Spok95/poletreat/internal/domain/stock"
	"github.com/Spok95/poletreat/internal/infra/db"
)

// sortCmd fills the sort form from flags and submits it once.
func sortCmd() *cobra.Command {
	var (
		batch, category, size, length, diameter, qty, notes string
	)
	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort part of an unsorted batch into a category",
		Example: `  poletreat sort --batch B-1 --category fencing --size medium --length 2.4 --qty 12
  poletreat sort --batch B-1 --category telecom --size stout --length 9 --diameter 180 --qty 4
  poletreat sort --batch B-1 --category rejected --qty 2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			pool, err := db.Connect(ctx, cfg.Postgres.DSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			var seen sorting.Collector
			svc := sorting.NewService(stock.NewRepo(pool, cfg.Stock.EnforceRemaining),
				sorting.MultiSink{sorting.LogSink{Log: log}, &seen}, log, nil)

			form := sorting.NewForm(nil)
			form.UnsortedStockID = batch
			form.SetCategory(sorting.Category(category))
			form.Size = sorting.Size(size)
			form.LengthValue = length
			form.DiameterMM = diameter
			form.Quantity = qty
			form.Notes = notes

			rec, err := form.Submit(ctx, svc)
			if n, ok := seen.Last(); ok {
				fmt.Fprintln(cmd.OutOrStdout(), n.Message)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sorted stock #%d: %d x %s\n", rec.ID, rec.Quantity, rec.Category)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&batch, "batch", "", "unsorted batch id")
	f.StringVar(&category, "category", "", "fencing, telecom, distribution, high_voltage or rejected")
	f.StringVar(&size, "size", "", "small, medium or stout")
	f.StringVar(&length, "length", "", "length; feet for fencing, metres otherwise")
	f.StringVar(&diameter, "diameter", "", "diameter in mm (150-240), poles only")
	f.StringVar(&qty, "qty", "", "number of poles")
	f.StringVar(&notes, "notes", "", "free text")
	return cmd
}
