package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// MessageHandler processes one delivery. A non-nil error causes a Nack
// without requeue: failed messages are logged and dropped, not retried.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

// ConsumerOptions configures a Consumer.
type ConsumerOptions struct {
	ExchangeName string // required: exchange to bind against
	QueueName    string // required: durable queue name
	RoutingKey   string // required: binding key
	ConsumerTag  string // optional: generated when empty
	Prefetch     int    // unacked message window per consumer; decouples slow consumers from producers
}

// Consumer consumes deliveries from a bound queue and dispatches them to a
// handler on a dedicated goroutine.
type Consumer struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	queueName   string
	consumerTag string
	handler     MessageHandler
	logger      *zap.Logger

	stop chan struct{} // closed by Shutdown to stop the consume loop
	done chan struct{} // closed by the consume loop on exit
}

// NewConsumer connects, declares the exchange and a durable queue, binds
// them, applies the prefetch window and starts consuming.
func NewConsumer(amqpURL string, handler MessageHandler, opts ConsumerOptions, logger *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		opts.ExchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %q: %w", opts.ExchangeName, err)
	}

	q, err := ch.QueueDeclare(
		opts.QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %q: %w", opts.QueueName, err)
	}

	if err := ch.QueueBind(q.Name, opts.RoutingKey, opts.ExchangeName, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue %q to exchange %q: %w", q.Name, opts.ExchangeName, err)
	}

	if opts.Prefetch > 0 {
		if err := ch.Qos(opts.Prefetch, 0, false); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to set prefetch: %w", err)
		}
	}

	consumerTag := opts.ConsumerTag
	if consumerTag == "" {
		consumerTag = fmt.Sprintf("consumer-%s-%d", q.Name, time.Now().UnixNano())
	}

	consumer := &Consumer{
		conn:        conn,
		channel:     ch,
		queueName:   q.Name,
		consumerTag: consumerTag,
		handler:     handler,
		logger:      logger.Named("rabbitmq_consumer").With(zap.String("queue", q.Name), zap.String("tag", consumerTag)),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	go consumer.startConsuming()
	logger.Info("RabbitMQ consumer started",
		zap.String("queue", q.Name),
		zap.String("routingKey", opts.RoutingKey),
		zap.Int("prefetch", opts.Prefetch),
	)

	return consumer, nil
}

func (c *Consumer) startConsuming() {
	defer close(c.done)

	deliveries, err := c.channel.Consume(
		c.queueName,
		c.consumerTag,
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		c.logger.Error("failed to start consuming", zap.Error(err))
		return
	}
	c.consumeLoop(deliveries)
}

// consumeLoop dispatches deliveries until the deliveries channel closes or
// Shutdown signals stop.
func (c *Consumer) consumeLoop(deliveries <-chan amqp.Delivery) {
	for {
		select {
		case delivery, ok := <-deliveries:
			if !ok {
				return
			}
			err := c.handler(context.Background(), delivery)
			if err != nil {
				// No retry queue: handler failures are logged by the
				// handler itself, the message is dropped.
				if ackErr := delivery.Nack(false, false); ackErr != nil {
					c.logger.Error("failed to nack delivery", zap.Error(ackErr))
				}
				continue
			}
			if ackErr := delivery.Ack(false); ackErr != nil {
				c.logger.Error("failed to ack delivery", zap.Error(ackErr))
			}
		case <-c.stop:
			return
		}
	}
}

// Shutdown cancels the consumer registration and closes the channel and
// connection, waiting briefly for the consume loop to exit.
func (c *Consumer) Shutdown() error {
	if c.channel == nil {
		return fmt.Errorf("consumer channel is nil, cannot shutdown")
	}

	err := c.channel.Cancel(c.consumerTag, false)
	if err != nil {
		c.logger.Error("failed to cancel consumer", zap.Error(err))
	}

	close(c.stop)

	select {
	case <-c.done:
	case <-time.After(10 * time.Second):
		c.logger.Warn("timed out waiting for consumer loop to exit")
	}

	if c.channel != nil {
		if chErr := c.channel.Close(); chErr != nil {
			c.logger.Error("failed to close channel", zap.Error(chErr))
		}
	}
	if c.conn != nil {
		if connErr := c.conn.Close(); connErr != nil {
			c.logger.Error("failed to close connection", zap.Error(connErr))
		}
	}

	c.logger.Info("RabbitMQ consumer shut down")
	return err
}
