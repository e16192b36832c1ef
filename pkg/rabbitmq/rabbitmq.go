package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
)

// DefaultQueue is the queue activity events are published to.
const DefaultQueue = "activity_queue"

// ActivityEvent is the message published for every activity log entry.
type ActivityEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	UserID      string    `json:"user,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	mu      sync.Mutex // serializes publishes on the shared channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient connects to RabbitMQ, opens a channel and declares the durable
// activity queue.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareQueue(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	slog.Info("rabbitmq client connected", "queue", cfg.Queue)

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", name, err)
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Publish sends a persistent JSON message to the activity queue through the
// default exchange.
func (c *Client) Publish(body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// PublishActivity marshals evt and publishes it.
func (c *Client) PublishActivity(evt ActivityEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal activity event: %w", err)
	}
	if err := c.Publish(body); err != nil {
		return err
	}
	slog.Debug("activity event sent", "type", evt.Type, "id", evt.ID)
	return nil
}

// ConsumeActivity registers a consumer on the activity queue and hands each
// decoded event to handler in a background goroutine. Events the handler
// fails on are requeued once; undecodable messages are dropped.
func (c *Client) ConsumeActivity(handler func(ActivityEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			handleDelivery(msg, handler)
		}
		slog.Info("activity consumer stopped")
	}()

	return nil
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(msg amqp.Delivery, handler func(ActivityEvent) error) {
	dispatch(msg, msg.Body, msg.Redelivered, msg.DeliveryTag, handler)
}

func dispatch(ack acknowledger, body []byte, redelivered bool, tag uint64, handler func(ActivityEvent) error) {
	log := slog.With("op", "rabbitmq.dispatch", "tag", tag)

	var evt ActivityEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		log.Warn("dropping malformed activity event", "err", err)
		if err := ack.Nack(false, false); err != nil {
			log.Error("failed to nack message", "err", err)
		}
		return
	}

	if err := handler(evt); err != nil {
		log.Error("failed to process activity event", "err", err)
		if err := ack.Nack(false, !redelivered); err != nil {
			log.Error("failed to nack message", "err", err)
		}
		return
	}

	if err := ack.Ack(false); err != nil {
		log.Error("failed to ack message", "err", err)
	}
}
