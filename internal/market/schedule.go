// Package market decides whether the desk is open for trading, based
// on configured daily open/close times and holiday dates.
package market

import (
	"fmt"
	"sync"
	"time"

	"TradeDesk/internal/model"
	"TradeDesk/internal/store"
)

const storeKey = "market"

// Schedule is the configured trading calendar.
type Schedule struct {
	mu    sync.Mutex
	store *store.Store
}

// NewSchedule creates a Schedule over the given store.
func NewSchedule(s *store.Store) *Schedule {
	return &Schedule{store: s}
}

// Seed writes the default hours if no schedule has been stored yet.
// Called once at startup.
func (s *Schedule) Seed() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hours model.Hours
	if s.store.Load(storeKey, &hours) {
		return nil
	}
	return s.store.Save(storeKey, model.DefaultHours())
}

// Hours returns the current schedule, falling back to the default
// when nothing is stored.
func (s *Schedule) Hours() model.Hours {
	s.mu.Lock()
	defer s.mu.Unlock()

	hours := model.DefaultHours()
	s.store.Load(storeKey, &hours)
	return hours
}

// SetHours overwrites the schedule. Open and close must be "HH:MM"
// with open strictly before close; holidays must be "YYYY-MM-DD".
func (s *Schedule) SetHours(open, close string, holidays []string) error {
	openMin, err := parseHM(open)
	if err != nil {
		return fmt.Errorf("open time: %w", err)
	}
	closeMin, err := parseHM(close)
	if err != nil {
		return fmt.Errorf("close time: %w", err)
	}
	if openMin >= closeMin {
		return fmt.Errorf("open %q must be before close %q", open, close)
	}
	if holidays == nil {
		holidays = []string{}
	}
	for _, d := range holidays {
		if _, err := time.ParseInLocation("2006-01-02", d, time.Local); err != nil {
			return fmt.Errorf("holiday %q: %w", d, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Save(storeKey, model.Hours{Open: open, Close: close, Holidays: holidays})
}

// IsOpenAt reports whether the market is open at the given moment:
// closed on weekends and holidays, open when the local time of day is
// within [open, close], inclusive on both ends.
func (s *Schedule) IsOpenAt(t time.Time) bool {
	hours := s.Hours()

	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	today := t.Format("2006-01-02")
	for _, h := range hours.Holidays {
		if h == today {
			return false
		}
	}

	openMin, err := parseHM(hours.Open)
	if err != nil {
		return false
	}
	closeMin, err := parseHM(hours.Close)
	if err != nil {
		return false
	}
	now := t.Hour()*60 + t.Minute()
	return now >= openMin && now <= closeMin
}

// IsOpen reports whether the market is open right now.
func (s *Schedule) IsOpen() bool {
	return s.IsOpenAt(time.Now())
}

// parseHM converts "HH:MM" to minutes since midnight.
func parseHM(hm string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(hm, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", hm)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("out of range time %q", hm)
	}
	return h*60 + m, nil
}
