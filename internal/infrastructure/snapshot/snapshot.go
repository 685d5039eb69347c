package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/little-lemon/internal/domain/reservation"
	"github.com/example/little-lemon/internal/infrastructure/storage"
)

const (
	DefaultKey     = "little-lemon-bookings"
	CurrentVersion = 1
)

var ErrCorrupt = errors.New("snapshot: stored data is not a valid bookings snapshot")

type Snapshot struct {
	Version  int
	Bookings []reservation.Booking
}

// wire layout: {"version":1,"bookings":[{...,"date":"<ISO-8601>",...}]}
type wireSnapshot struct {
	Version  int            `json:"version,omitempty"`
	Bookings *[]wireBooking `json:"bookings"`
}

type wireBooking struct {
	ID              string `json:"id,omitempty"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Guests          int    `json:"guests"`
	Occasion        string `json:"occasion"`
	Seating         string `json:"seating"`
	SpecialRequests string `json:"specialRequests"`
}

// Adapter reads and writes the single snapshot blob under one fixed key.
type Adapter struct {
	kv     storage.KV
	key    string
	logger *zap.Logger
}

func New(kv storage.KV, key string, logger *zap.Logger) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{kv: kv, key: key, logger: logger}
}

// Load returns nil, nil when nothing is stored. Undecodable data is logged
// and reported as ErrCorrupt; it is never returned half-parsed.
func (a *Adapter) Load(ctx context.Context) (*Snapshot, error) {
	raw, err := a.kv.Get(ctx, a.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	snap, err := decode(raw)
	if err != nil {
		a.logger.Error("stored bookings snapshot unreadable", zap.String("key", a.key), zap.Error(err))
		return nil, err
	}
	return snap, nil
}

// Save overwrites the stored snapshot.
func (a *Adapter) Save(ctx context.Context, s Snapshot) error {
	raw, err := encode(s)
	if err != nil {
		return err
	}
	if err := a.kv.Put(ctx, a.key, raw); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (a *Adapter) LoadBookings(ctx context.Context) ([]reservation.Booking, bool, error) {
	s, err := a.Load(ctx)
	if err != nil {
		return nil, false, err
	}
	if s == nil {
		return nil, false, nil
	}
	return s.Bookings, true, nil
}

func (a *Adapter) SaveBookings(ctx context.Context, bookings []reservation.Booking) error {
	return a.Save(ctx, Snapshot{Version: CurrentVersion, Bookings: bookings})
}

// Clear removes the stored snapshot.
func (a *Adapter) Clear(ctx context.Context) error {
	return a.kv.Delete(ctx, a.key)
}

func encode(s Snapshot) ([]byte, error) {
	list := make([]wireBooking, 0, len(s.Bookings))
	for _, b := range s.Bookings {
		list = append(list, wireBooking{
			ID:              b.ID,
			Name:            b.Name,
			Email:           b.Email,
			Phone:           b.Phone,
			Date:            b.Date.Format(time.RFC3339Nano),
			Time:            b.Time,
			Guests:          b.Guests,
			Occasion:        b.Occasion,
			Seating:         b.Seating,
			SpecialRequests: b.SpecialRequests,
		})
	}
	v := s.Version
	if v == 0 {
		v = CurrentVersion
	}
	return json.Marshal(wireSnapshot{Version: v, Bookings: &list})
}

func decode(raw []byte) (*Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if w.Bookings == nil {
		return nil, fmt.Errorf("%w: missing bookings", ErrCorrupt)
	}
	// Snapshots written before versioning carry no version field.
	if w.Version == 0 {
		w.Version = 1
	}
	if w.Version > CurrentVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, w.Version)
	}

	out := &Snapshot{Version: w.Version, Bookings: make([]reservation.Booking, 0, len(*w.Bookings))}
	for i, wb := range *w.Bookings {
		d, err := parseDate(wb.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: booking %d: %v", ErrCorrupt, i, err)
		}
		out.Bookings = append(out.Bookings, reservation.Booking{
			ID:              wb.ID,
			Name:            wb.Name,
			Email:           wb.Email,
			Phone:           wb.Phone,
			Date:            d,
			Time:            wb.Time,
			Guests:          wb.Guests,
			Occasion:        wb.Occasion,
			Seating:         wb.Seating,
			SpecialRequests: wb.SpecialRequests,
		})
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
