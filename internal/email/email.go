package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/skyfare/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

// Send notifies the customer about a booking change. Customer usernames
// are email addresses, so the event's customer id is the recipient.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	fmt.Printf("send email to %s about %s for booking %s on flight %s\n", event.CustomerID, event.Type, event.BookingID, event.FlightID)
	return nil
}
