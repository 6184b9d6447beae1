package consumer

import (
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/venuebook/payment-service/internal/service"
)

// EmailSender delivers a rendered message. Hosted email providers live
// behind this interface; the default implementation just logs.
type EmailSender interface {
	Send(to, subject, body string) error
}

type LogSender struct{}

func (LogSender) Send(to, subject, body string) error {
	slog.Info("email dispatched", "to", to, "subject", subject)
	return nil
}

// NotificationConsumer turns payments-exchange events into outbound emails:
// payment.received goes to the requester, booking.confirmed to the customer
// and the venue.
type NotificationConsumer struct {
	sender EmailSender
}

func NewNotificationConsumer(sender EmailSender) *NotificationConsumer {
	return &NotificationConsumer{sender: sender}
}

func (nc *NotificationConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			nc.handleMessage(msg)
		}
		slog.Info("notification consumer stopping, channel closed")
	}()
}

func (nc *NotificationConsumer) handleMessage(msg amqp.Delivery) {
	var err error
	switch msg.RoutingKey {
	case service.RoutingPaymentReceived:
		err = nc.handlePaymentReceived(msg.Body)
	case service.RoutingBookingConfirmed:
		err = nc.handleBookingConfirmed(msg.Body)
	default:
		msg.Ack(false)
		return
	}

	if err != nil {
		slog.Error("notification handling failed", "routing_key", msg.RoutingKey, "error", err)
		// Malformed payloads will never parse; requeueing would loop.
		msg.Nack(false, false)
		return
	}
	msg.Ack(false)
}

func (nc *NotificationConsumer) handlePaymentReceived(body []byte) error {
	var ev service.PaymentReceivedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal payment.received: %w", err)
	}

	subject := fmt.Sprintf("Payment received for booking #%d", ev.BookingID)
	msg := fmt.Sprintf("%s paid their share (%d.%02d %s) on %s.",
		ev.RecipientEmail, ev.AmountMinor/100, ev.AmountMinor%100, ev.Currency,
		ev.PaidAt.Format("2 Jan 2006 15:04"))
	return nc.sender.Send(ev.RequesterEmail, subject, msg)
}

func (nc *NotificationConsumer) handleBookingConfirmed(body []byte) error {
	var ev service.BookingConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal booking.confirmed: %w", err)
	}

	subject := fmt.Sprintf("Booking #%d confirmed", ev.BookingID)
	msg := fmt.Sprintf("Your booking on %s is confirmed. Entry code: %s",
		ev.StartsAt.Format("2 Jan 2006 15:04"), ev.QRToken)
	if err := nc.sender.Send(ev.CustomerEmail, subject, msg); err != nil {
		return err
	}

	venueMsg := fmt.Sprintf("Booking #%d for venue %d on %s is fully paid and confirmed.",
		ev.BookingID, ev.VenueID, ev.StartsAt.Format("2 Jan 2006 15:04"))
	return nc.sender.Send(venueAddress(ev.VenueID), subject, venueMsg)
}

func venueAddress(venueID uint) string {
	return fmt.Sprintf("venue-%d@venuebook.notifications", venueID)
}
