package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/little-lemon/internal/domain/reservation"
)

func newBookingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Inspect and manage stored bookings",
	}
	cmd.AddCommand(newBookingsListCmd())
	cmd.AddCommand(newBookingsReleaseCmd())
	cmd.AddCommand(newBookingsEditCmd())
	return cmd
}

func newBookingsListCmd() *cobra.Command {
	var (
		q    reservation.Query
		sort string
	)
	c := &cobra.Command{
		Use:   "list",
		Short: "List bookings, optionally filtered and sorted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			d, err := setup(ctx, true)
			if err != nil {
				return err
			}
			defer d.Close()

			q.SortBy = reservation.SortField(sort)
			out := cmd.OutOrStdout()
			for _, it := range q.Apply(d.provider.State().Bookings) {
				b := it.Booking
				fmt.Fprintf(out, "%d id=%s %s %s guests=%d name=%q occasion=%q seating=%q\n",
					it.Index, b.ID, reservation.DateKey(b.Date), reservation.To12Hour(b.Time), b.Guests, b.Name, b.Occasion, b.Seating)
			}
			return nil
		},
	}
	c.Flags().StringVar(&q.Name, "name", "", "filter by name substring")
	c.Flags().StringVar(&q.DateKey, "date", "", "filter by date YYYY-MM-DD")
	c.Flags().StringVar(&q.Occasion, "occasion", "", "filter by occasion")
	c.Flags().StringVar(&sort, "sort", "date", "sort by date, name, guests or occasion")
	c.Flags().BoolVar(&q.Descending, "desc", false, "sort descending")
	return c
}

func newBookingsReleaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release <index>",
		Short: "Cancel the booking at index (as printed by list)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("index must be an integer")
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			d, err := setup(ctx, true)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.provider.ReleaseBooking(idx); err != nil {
				return fmt.Errorf("release %d: %w", idx, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "released booking %d\n", idx)
			return nil
		},
	}
}

func newBookingsEditCmd() *cobra.Command {
	var f bookingFlags
	c := &cobra.Command{
		Use:   "edit <index>",
		Short: "Change fields of the booking at index; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("index must be an integer")
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			d, err := setup(ctx, true)
			if err != nil {
				return err
			}
			defer d.Close()

			list := d.provider.State().Bookings
			if idx < 0 || idx >= len(list) {
				return fmt.Errorf("no booking at index %d (have %d)", idx, len(list))
			}
			b := list[idx]
			if err := f.apply(cmd, &b, d.cfg.Location); err != nil {
				return err
			}
			if err := reservation.Validate(b, time.Now()); err != nil {
				return err
			}
			if err := d.provider.EditBooking(idx, b); err != nil {
				return fmt.Errorf("edit %d: %w", idx, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated booking %d\n", idx)
			return nil
		},
	}
	f.register(c)
	return c
}
