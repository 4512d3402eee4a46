package domain

import "time"

// ReminderRecord is the durable state behind a scheduled flight
// reminder. One record exists per (booking, lead-time) pair and
// survives process restarts; it is deleted once the reminder fires or
// the booking is cancelled.
type ReminderRecord struct {
	BookingID       int64     `json:"booking_id"`
	FlightNumber    string    `json:"flight_number"`
	DepartureTime   time.Time `json:"departure_time"`
	OriginCode      string    `json:"origin_code"`
	DestinationCode string    `json:"destination_code"`
	LeadHours       int       `json:"lead_hours"`
	ScheduledFor    time.Time `json:"scheduled_for"`
}
