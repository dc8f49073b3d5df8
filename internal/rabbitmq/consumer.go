package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/app-subscriptions/internal/lib/sl"
)

// maxInFlight ограничивает число одновременно обрабатываемых сообщений.
const maxInFlight = 10

// Consumer: часть *amqp.Channel, нужная для чтения очереди.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// ConsumerMessage запускает чтение очереди queueName. Каждое сообщение
// обрабатывается handler; при ошибке сообщение возвращается в очередь.
// Чтение прекращается при отмене ctx или закрытии канала доставки.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch Consumer, queueName string, handler func(amqp.Delivery) error) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sem := make(chan struct{}, maxInFlight)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(d amqp.Delivery) {
					defer func() { <-sem }()
					if err := handler(d); err != nil {
						log.Warn("failed to handle message", slog.String("op", op), slog.String("routing_key", d.RoutingKey), sl.Err(err))
						if nackErr := d.Nack(false, true); nackErr != nil {
							log.Error("failed to nack message", slog.String("op", op), sl.Err(nackErr))
						}
						return
					}
					if ackErr := d.Ack(false); ackErr != nil {
						log.Error("failed to ack message", slog.String("op", op), sl.Err(ackErr))
					}
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// AuditHandler возвращает обработчик, записывающий каждое событие в лог.
func AuditHandler(log *slog.Logger) func(amqp.Delivery) error {
	return func(d amqp.Delivery) error {
		log.Info("domain event",
			slog.String("routing_key", d.RoutingKey),
			slog.String("content_type", d.ContentType),
			slog.String("body", string(d.Body)),
		)
		return nil
	}
}
