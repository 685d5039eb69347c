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

type bookingFlags struct {
	name     string
	email    string
	phone    string
	date     string
	slot     string
	guests   int
	occasion string
	seating  string
	requests string
}

func (f *bookingFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.name, "name", "", "guest name")
	c.Flags().StringVar(&f.email, "email", "", "contact email")
	c.Flags().StringVar(&f.phone, "phone", "", "contact phone, 10 digits")
	c.Flags().StringVar(&f.date, "date", "", "reservation date YYYY-MM-DD")
	c.Flags().StringVar(&f.slot, "time", "", "reservation time HH:MM (24h)")
	c.Flags().IntVar(&f.guests, "guests", 2, "number of guests")
	c.Flags().StringVar(&f.occasion, "occasion", "", "one of: "+strings.Join(reservation.Occasions, ", "))
	c.Flags().StringVar(&f.seating, "seating", "", "one of: "+strings.Join(reservation.SeatingOptions, ", "))
	c.Flags().StringVar(&f.requests, "special-requests", "", "free text, up to 500 characters")
}

// apply copies every flag the user set onto b.
func (f *bookingFlags) apply(c *cobra.Command, b *reservation.Booking, loc *time.Location) error {
	set := func(name string) bool { return c.Flags().Changed(name) }
	if set("name") {
		b.Name = strings.TrimSpace(f.name)
	}
	if set("email") {
		b.Email = strings.TrimSpace(f.email)
	}
	if set("phone") {
		b.Phone = strings.TrimSpace(f.phone)
	}
	if set("date") {
		d, err := reservation.ParseDateKey(f.date, loc)
		if err != nil {
			return fmt.Errorf("invalid --date (want YYYY-MM-DD)")
		}
		b.Date = d
	}
	if set("time") {
		k, err := reservation.NormalizeSlotKey(f.slot)
		if err != nil {
			return fmt.Errorf("invalid --time (want HH:MM)")
		}
		b.Time = k
	}
	if set("guests") {
		b.Guests = f.guests
	}
	if set("occasion") {
		b.Occasion = strings.TrimSpace(f.occasion)
	}
	if set("seating") {
		b.Seating = strings.TrimSpace(f.seating)
	}
	if set("special-requests") {
		b.SpecialRequests = f.requests
	}
	return nil
}

func newBookCmd() *cobra.Command {
	var (
		f         bookingFlags
		preferred string
	)
	c := &cobra.Command{
		Use:   "book",
		Short: "Reserve a table: picks an open slot, validates and submits",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			d, err := setup(ctx, true)
			if err != nil {
				return err
			}
			defer d.Close()

			b := reservation.Booking{Guests: f.guests}
			if err := f.apply(cmd, &b, d.cfg.Location); err != nil {
				return err
			}
			uc := usecases.FindAndBook{Provider: d.provider, Schema: reservation.DefaultSchema}
			booked, err := uc.Execute(ctx, usecases.Request{Booking: b, Preferred: splitCSV(preferred)})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "booked id=%s %s at %s for %d (%s)\n",
				booked.ID, reservation.DateKey(booked.Date), reservation.To12Hour(booked.Time), booked.Guests, booked.Name)
			return nil
		},
	}
	f.register(c)
	c.Flags().StringVar(&preferred, "preferred-times", "", "comma-separated times to try in order when --time is not given")

	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("phone")
	_ = c.MarkFlagRequired("date")
	return c
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
