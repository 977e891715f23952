package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"postfeed/pkg/config"
	"postfeed/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EmailQueueName  = "email_queue"
	EmailExchange   = "emails"
	EmailRoutingKey = "password_reset"
)

// EmailTask is the message body published to EmailQueueName.
type EmailTask struct {
	Type     string `json:"type"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Priority int    `json:"priority"`
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func URL(cfg *config.Config) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	conn, err := amqp.Dial(URL(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(channel); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func declareTopology(channel *amqp.Channel) error {
	err := channel.ExchangeDeclare(
		EmailExchange, // name
		"direct",      // type
		true,          // durable
		false,         // auto-deleted
		false,         // internal
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		EmailQueueName, // name
		true,           // durable
		false,          // delete when unused
		false,          // exclusive
		false,          // no-wait
		amqp.Table{
			"x-max-priority": 10,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.QueueBind(EmailQueueName, EmailRoutingKey, EmailExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// PublishEmailTask publishes a persistent email task; priority is clamped to 0-10.
func (c *Client) PublishEmailTask(ctx context.Context, task EmailTask) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	err = c.channel.PublishWithContext(ctx,
		EmailExchange,   // exchange
		EmailRoutingKey, // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			Priority:     clampPriority(task.Priority),
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish email task to exchange=%s: %v", EmailExchange, err)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Info("[RABBITMQ] Published email task type=%s to=%s", task.Type, task.To)
	return nil
}

// ConsumeEmailTasks delivers tasks to handler until ctx is done. Malformed messages
// are dropped; handler failures are requeued.
func (c *Client) ConsumeEmailTasks(ctx context.Context, handler func(ctx context.Context, task EmailTask) error) error {
	msgs, err := c.channel.Consume(
		EmailQueueName, // queue
		"",             // consumer
		false,          // auto-ack
		false,          // exclusive
		false,          // no-local
		false,          // no-wait
		nil,            // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("[RABBITMQ] Started consuming from queue: %s", EmailQueueName)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				c.handleDelivery(ctx, msg, handler)
			}
		}
	}()

	return nil
}

func (c *Client) handleDelivery(ctx context.Context, msg amqp.Delivery, handler func(ctx context.Context, task EmailTask) error) {
	task, err := DecodeEmailTask(msg.Body)
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to unmarshal email task: %v, body=%s", err, string(msg.Body))
		msg.Nack(false, false)
		return
	}

	if err := handler(ctx, task); err != nil {
		c.logger.Error("[RABBITMQ] Handler failed for email task to=%s: %v", task.To, err)
		msg.Nack(false, !msg.Redelivered)
		return
	}

	msg.Ack(false)
}

// DecodeEmailTask parses and sanity-checks a message body.
func DecodeEmailTask(body []byte) (EmailTask, error) {
	var task EmailTask
	if err := json.Unmarshal(body, &task); err != nil {
		return EmailTask{}, err
	}
	if task.To == "" {
		return EmailTask{}, fmt.Errorf("email task has no recipient")
	}
	return task, nil
}

func clampPriority(p int) uint8 {
	if p < 0 {
		return 0
	}
	if p > 10 {
		return 10
	}
	return uint8(p)
}

// GetQueueLength returns the number of messages waiting in the email queue.
func (c *Client) GetQueueLength() (int, error) {
	queue, err := c.channel.QueueInspect(EmailQueueName)
	if err != nil {
		return 0, err
	}
	return queue.Messages, nil
}
