package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cashflow/payment-sync/internal/core"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName  = "transactions"
	QueueName     = "transaction_status"
	RoutingKey    = "transaction.status_changed"
	PrefetchCount = 1 // Process one message at a time per worker
)

// StatusChangedMessage announces the latest status of a transaction
type StatusChangedMessage struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Status        string    `json:"status"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Timestamp     time.Time `json:"timestamp"`
}

func newStatusChangedMessage(tx core.Transaction, now time.Time) StatusChangedMessage {
	return StatusChangedMessage{
		TransactionID: tx.ID,
		Status:        string(tx.Status),
		Amount:        tx.Amount,
		Currency:      tx.Currency.Code(),
		Timestamp:     now.UTC(),
	}
}

func decodeStatusChanged(body []byte) (StatusChangedMessage, error) {
	var msg StatusChangedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, err
	}
	if msg.TransactionID == uuid.Nil {
		return msg, fmt.Errorf("message has no transaction id")
	}
	return msg, nil
}

// shouldRequeue gives a failed message one more delivery
func shouldRequeue(redelivered bool) bool {
	return !redelivered
}

// RabbitMQClient is a secondary adapter that implements the TransactionEvents output port
type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *slog.Logger

	mu sync.Mutex // serializes publishes on the channel
}

// NewRabbitMQClient connects and declares the exchange, queue and binding
func NewRabbitMQClient(amqpURL string, logger *slog.Logger) (*RabbitMQClient, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		ExchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		QueueName,
		RoutingKey,
		ExchangeName,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: channel,
		logger:  logger.With(slog.String("component", "rabbitmq")),
	}, nil
}

// PublishStatusChanged publishes the transaction's current status
func (c *RabbitMQClient) PublishStatusChanged(ctx context.Context, tx core.Transaction) error {
	body, err := json.Marshal(newStatusChangedMessage(tx, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.channel.PublishWithContext(
		ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    tx.ID.String(),
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Debug("published status change",
		slog.String("transaction_id", tx.ID.String()),
		slog.String("status", string(tx.Status)),
	)
	return nil
}

// ConsumeStatusChanges starts consuming status change messages until ctx ends.
// Undecodable messages are dropped; handler failures are requeued once.
func (c *RabbitMQClient) ConsumeStatusChanges(ctx context.Context, handler func(context.Context, StatusChangedMessage) error) error {
	err := c.channel.Qos(
		PrefetchCount,
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	consumerTag := "status-" + uuid.NewString()
	msgs, err := c.channel.Consume(
		QueueName,
		consumerTag,
		false, // auto-ack (we'll manually ack after processing)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("started consuming status changes", slog.String("consumer", consumerTag))

	// cancelling the consumer closes msgs once in-flight deliveries are drained
	go func() {
		<-ctx.Done()
		if err := c.channel.Cancel(consumerTag, false); err != nil {
			c.logger.Debug("cancelling consumer", slog.Any("err", err))
		}
	}()

	go func() {
		for msg := range msgs {
			statusMsg, err := decodeStatusChanged(msg.Body)
			if err != nil {
				c.logger.Warn("dropping undecodable message", slog.Any("err", err))
				msg.Ack(false)
				continue
			}

			if err := handler(ctx, statusMsg); err != nil {
				requeue := shouldRequeue(msg.Redelivered)
				c.logger.Warn("handling status change",
					slog.String("transaction_id", statusMsg.TransactionID.String()),
					slog.Bool("requeue", requeue),
					slog.Any("err", err),
				)
				msg.Nack(false, requeue)
				continue
			}

			msg.Ack(false)
		}
	}()

	return nil
}

// Close closes the RabbitMQ connection
func (c *RabbitMQClient) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
