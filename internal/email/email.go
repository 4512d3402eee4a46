package email

import (
	"context"
	"fmt"

	"github.com/skyfare/skyfare/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if event.RefundEligible {
		fmt.Printf("send email to %s about %s (confirmation %s, refund issued)\n", event.Email, event.Type, event.ConfirmationID)
		return nil
	}
	fmt.Printf("send email to %s about %s (confirmation %s) for flight %d seat %d\n", event.Email, event.Type, event.ConfirmationID, event.FlightID, event.SeatNumber)
	return nil
}

func (s *Sender) SendReminder(ctx context.Context, event kafka.ReminderEvent) error {
	fmt.Printf("send reminder [%s] %s: %s\n", event.Tag, event.Title, event.Body)
	return nil
}
