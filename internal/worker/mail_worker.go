package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"gopherblog/internal/mail"
)

// MailWorker consumes queued emails and delivers them over SMTP, so
// request handlers never block on a mail server.
type MailWorker struct {
	conn      *amqp.Connection
	sender    mail.Sender
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMailWorker(conn *amqp.Connection, sender mail.Sender, queueName string) *MailWorker {
	return &MailWorker{
		conn:      conn,
		sender:    sender,
		queueName: queueName,
	}
}

func (w *MailWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare mail queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume mail queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var msg mail.Message
				if err := json.Unmarshal(d.Body, &msg); err != nil {
					logrus.WithError(err).Error("mail worker decode payload failed")
					_ = d.Nack(false, false)
					continue
				}

				if err := w.sender.Send(msg); err != nil {
					logrus.WithError(err).WithField("to", msg.To).Error("mail worker send failed")
					_ = d.Nack(false, false)
					continue
				}

				logrus.WithField("to", msg.To).Info("mail sent")
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *MailWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
