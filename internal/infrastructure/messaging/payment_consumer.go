package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gaming-cafe-booking/internal/domain/entity"
	"gaming-cafe-booking/pkg/apperror"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const paymentHandleTimeout = 10 * time.Second

// PaymentStatusUpdater applies a payment status reported by the payment collaborator
type PaymentStatusUpdater interface {
	UpdatePaymentStatus(ctx context.Context, update entity.PaymentUpdate) error
}

// PaymentConsumer applies payment.* messages to bookings
type PaymentConsumer struct {
	updater PaymentStatusUpdater
	log     *logrus.Logger
	wg      sync.WaitGroup
}

func NewPaymentConsumer(updater PaymentStatusUpdater, log *logrus.Logger) *PaymentConsumer {
	return &PaymentConsumer{updater: updater, log: log}
}

// Start handles messages until msgs is closed
func (pc *PaymentConsumer) Start(msgs <-chan amqp.Delivery) {
	pc.wg.Add(1)
	go func() {
		defer pc.wg.Done()
		for msg := range msgs {
			pc.handleMessage(msg)
		}
		pc.log.Info("Payment update channel closed, stopping consumer")
	}()
}

// Wait blocks until the consume loop has drained
func (pc *PaymentConsumer) Wait() {
	pc.wg.Wait()
}

func (pc *PaymentConsumer) handleMessage(msg amqp.Delivery) {
	var update entity.PaymentUpdate
	if err := json.Unmarshal(msg.Body, &update); err != nil || update.BookingID == uuid.Nil {
		pc.log.Warnf("Dropping unreadable payment update %q: %v", msg.RoutingKey, err)
		msg.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), paymentHandleTimeout)
	defer cancel()

	if err := pc.updater.UpdatePaymentStatus(ctx, update); err != nil {
		switch apperror.KindOf(err) {
		case apperror.KindStorage, apperror.KindInternal:
			pc.log.Warnf("Requeueing payment update for booking %s: %+v", update.BookingID, err)
			msg.Nack(false, true) // requeue
		default:
			// Replaying a rejected update can never succeed
			pc.log.Warnf("Rejected payment update for booking %s: %+v", update.BookingID, err)
			msg.Ack(false)
		}
		return
	}

	msg.Ack(false)
}
