package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/little-lemon/internal/application/usecases"
	"github.com/example/little-lemon/internal/domain/reservation"
)

func newSlotsCmd() *cobra.Command {
	var (
		date string
		days int
	)
	c := &cobra.Command{
		Use:   "slots",
		Short: "Show available reservation times",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			d, err := setup(ctx, true)
			if err != nil {
				return err
			}
			defer d.Close()

			start := time.Now().In(d.cfg.Location)
			if date != "" {
				if start, err = reservation.ParseDateKey(date, d.cfg.Location); err != nil {
					return fmt.Errorf("invalid --date (want YYYY-MM-DD)")
				}
			}
			if days < 1 {
				days = 1
			}
			out := cmd.OutOrStdout()
			for i := 0; i < days; i++ {
				day := start.AddDate(0, 0, i)
				slots := d.provider.GetAvailableTimeSlots(ctx, &day)
				labels := make([]string, 0, len(slots))
				for _, s := range slots {
					labels = append(labels, reservation.To12Hour(s))
				}
				fmt.Fprintf(out, "%s %s\n", reservation.DateKey(day), strings.Join(labels, ", "))
			}
			return nil
		},
	}
	c.Flags().StringVar(&date, "date", "", "first date YYYY-MM-DD (default today)")
	c.Flags().IntVar(&days, "days", 1, "number of consecutive days to show")
	return c
}

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the reservation API answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			d, err := setup(ctx, true)
			if err != nil {
				return err
			}
			defer d.Close()

			slots, err := usecases.PingProvider{Provider: d.api}.Execute(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reservation api: ok (%d slots today)\n", len(slots))
			return nil
		},
	}
}
