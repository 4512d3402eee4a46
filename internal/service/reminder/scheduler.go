package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/skyfare/skyfare/internal/domain"
	"github.com/skyfare/skyfare/internal/notify"
	"github.com/skyfare/skyfare/pkg/logger"
)

const keyPrefix = "reminder:"

// Default lead times: one reminder a day out, one shortly before
// boarding.
var defaultLeadHours = []int{24, 2}

// Store is the durable key-value storage reminder records live in.
// Get returns nil with no error for a missing key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Scheduler schedules, persists, restores and cancels flight
// reminders. Records are durable; armed timers are not, so a restart
// loses only in-flight timers and RestoreScheduledReminders rebuilds
// them from the store.
type Scheduler struct {
	store     Store
	notifier  notify.Notifier
	log       logger.Logger
	leadHours []int
	now       func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer
}

type SchedulerOption func(*Scheduler)

func WithLeadHours(hours []int) SchedulerOption {
	return func(s *Scheduler) {
		if len(hours) > 0 {
			s.leadHours = hours
		}
	}
}

// WithClock overrides the scheduling instant source. Tests use it.
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.now = now
	}
}

func NewScheduler(store Store, notifier notify.Notifier, log logger.Logger, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		store:     store,
		notifier:  notifier,
		log:       log,
		leadHours: defaultLeadHours,
		now:       time.Now,
		timers:    make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestPermission reports whether notifications can be shown at all.
// A missing or disabled delivery capability is not an error, just a
// degraded mode.
func (s *Scheduler) RequestPermission() bool {
	return s.notifier != nil && s.notifier.Enabled()
}

// ScheduleForBooking persists a reminder record for the booking at the
// given lead time and arms a one-shot timer. A reminder whose fire
// time is already in the past is dropped without a record: fresh
// scheduling never notifies about the past. Scheduling the same
// (booking, lead) pair twice leaves the existing timer in place.
func (s *Scheduler) ScheduleForBooking(ctx context.Context, bf domain.BookingFlight, leadHours int) error {
	now := s.now()
	at := bf.Flight.DepartureTime.Add(-time.Duration(leadHours) * time.Hour)
	if !at.After(now) {
		return nil
	}

	key := recordKey(bf.Booking.ID, leadHours)

	s.mu.Lock()
	_, armed := s.timers[key]
	s.mu.Unlock()
	if armed {
		return nil
	}

	rec := domain.ReminderRecord{
		BookingID:       bf.Booking.ID,
		FlightNumber:    bf.Flight.FlightNumber,
		DepartureTime:   bf.Flight.DepartureTime,
		OriginCode:      bf.Flight.OriginCode,
		DestinationCode: bf.Flight.DestinationCode,
		LeadHours:       leadHours,
		ScheduledFor:    at,
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal reminder record: %w", err)
	}
	if err := s.store.Set(ctx, key, payload); err != nil {
		return fmt.Errorf("persist reminder record: %w", err)
	}

	s.arm(key, rec, at.Sub(now))
	return nil
}

// SetupBookingReminders schedules every configured lead time for each
// confirmed booking. Non-confirmed bookings get nothing.
func (s *Scheduler) SetupBookingReminders(ctx context.Context, items []domain.BookingFlight) error {
	for _, bf := range items {
		if bf.Booking.Status != domain.BookingStatusConfirmed {
			continue
		}
		for _, hours := range s.leadHours {
			if err := s.ScheduleForBooking(ctx, bf, hours); err != nil {
				s.log.Error("schedule reminder", "booking_id", bf.Booking.ID, "lead_hours", hours, "error", err)
			}
		}
	}
	return nil
}

// RestoreScheduledReminders rebuilds timers from durable records after
// a restart. Overdue records fire immediately and are deleted: unlike
// fresh scheduling, restore tells the user what was missed while the
// process was down. Records that fail to parse are logged and deleted
// without aborting the rest.
func (s *Scheduler) RestoreScheduledReminders(ctx context.Context) error {
	keys, err := s.store.Keys(ctx, keyPrefix)
	if err != nil {
		return fmt.Errorf("list reminder records: %w", err)
	}

	for _, key := range keys {
		payload, err := s.store.Get(ctx, key)
		if err != nil {
			s.log.Error("load reminder record", "key", key, "error", err)
			continue
		}
		if payload == nil {
			continue
		}

		var rec domain.ReminderRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			s.log.Warn("dropping malformed reminder record", "key", key, "error", err)
			_ = s.store.Delete(ctx, key)
			continue
		}

		now := s.now()
		if !rec.ScheduledFor.After(now) {
			s.show(ctx, rec)
			if err := s.store.Delete(ctx, key); err != nil {
				s.log.Error("delete fired reminder record", "key", key, "error", err)
			}
			continue
		}

		s.arm(key, rec, rec.ScheduledFor.Sub(now))
	}
	return nil
}

// ClearForBooking deletes every reminder record for the booking and
// stops any armed timers. A timer that races past the stop still
// no-ops, because firing re-checks the durable record first.
func (s *Scheduler) ClearForBooking(ctx context.Context, bookingID int64) error {
	prefix := bookingKeyPrefix(bookingID)

	s.mu.Lock()
	for key, timer := range s.timers {
		if strings.HasPrefix(key, prefix) {
			timer.Stop()
			delete(s.timers, key)
		}
	}
	s.mu.Unlock()

	keys, err := s.store.Keys(ctx, prefix)
	if err != nil {
		return fmt.Errorf("list reminder records: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return s.store.Delete(ctx, keys...)
}

// Stop cancels all armed timers. Durable records stay put so the next
// restore picks them back up.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
}

func (s *Scheduler) arm(key string, rec domain.ReminderRecord, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[key]; ok {
		return
	}
	s.timers[key] = time.AfterFunc(delay, func() {
		s.fire(key, rec)
	})
}

func (s *Scheduler) fire(key string, rec domain.ReminderRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.mu.Lock()
	delete(s.timers, key)
	s.mu.Unlock()

	// The record may have been purged by a cancellation between arming
	// and firing.
	payload, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Error("load reminder record", "key", key, "error", err)
		return
	}
	if payload == nil {
		return
	}

	s.show(ctx, rec)
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Error("delete fired reminder record", "key", key, "error", err)
	}
}

func (s *Scheduler) show(ctx context.Context, rec domain.ReminderRecord) {
	if !s.RequestPermission() {
		return
	}

	title := fmt.Sprintf("Flight Reminder: %s", rec.FlightNumber)
	// The body always states the originally requested lead time, even
	// when the reminder fires late.
	body := fmt.Sprintf("Your flight from %s to %s departs in %d hours at %s",
		rec.OriginCode, rec.DestinationCode, rec.LeadHours, rec.DepartureTime.Format("15:04"))
	tag := "flight-" + rec.FlightNumber

	if err := s.notifier.Show(ctx, title, body, tag); err != nil {
		s.log.Error("show reminder notification", "booking_id", rec.BookingID, "flight", rec.FlightNumber, "error", err)
	}
}

func recordKey(bookingID int64, leadHours int) string {
	return fmt.Sprintf("%s%d:%dh", keyPrefix, bookingID, leadHours)
}

func bookingKeyPrefix(bookingID int64) string {
	return fmt.Sprintf("%s%d:", keyPrefix, bookingID)
}
