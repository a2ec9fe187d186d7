// Package kafkaclient wraps a segmentio/kafka-go reader in a channel-based
// consumer with manual offset commits and graceful shutdown.
package kafkaclient

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Reader is the subset of the kafka-go Reader the consumer relies on.
// It exists so unit tests can inject a mock.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer runs the Kafka read loop and exposes messages on a channel.
// Offsets are committed explicitly via CommitOffset, never automatically,
// so a crash between read and commit replays the message.
type Consumer struct {
	reader Reader

	doneChan    chan struct{}
	wg          sync.WaitGroup
	messageChan chan kafka.Message
}

// NewConsumer creates a Consumer for one topic within a consumer group.
func NewConsumer(topic, groupID, broker string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{broker},
		Topic:   topic,
		GroupID: groupID,
		// Disable auto-commit; offsets are committed after processing.
		CommitInterval: 0,
		MinBytes:       10e3,
		MaxBytes:       10e6,
	})
	return &Consumer{
		reader:      reader,
		doneChan:    make(chan struct{}),
		messageChan: make(chan kafka.Message),
	}
}

// Messages returns the channel the read loop publishes to. The channel is
// closed when the consumer stops.
func (c *Consumer) Messages() <-chan kafka.Message {
	return c.messageChan
}

// CommitOffset acknowledges a processed message.
func (c *Consumer) CommitOffset(ctx context.Context, msg kafka.Message) error {
	log.Printf("Committing offset for topic=%s, partition=%d, offset=%d", msg.Topic, msg.Partition, msg.Offset)
	return c.reader.CommitMessages(ctx, msg)
}

// StartConsuming begins the read loop in its own goroutine. The loop ends
// when the context is canceled, Stop is called, or the reader is closed.
func (c *Consumer) StartConsuming(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(c.messageChan)

		log.Println("Starting Kafka consumer loop...")

		for {
			select {
			case <-ctx.Done():
				log.Println("Context canceled, stopping consumer loop.")
				return
			case <-c.doneChan:
				log.Println("Shutdown signal received, stopping consumer loop.")
				return
			default:
				msg, err := c.reader.ReadMessage(ctx)
				if err != nil {
					log.Printf("Error reading message: %v", err)
					if err.Error() == "kafka: reader closed" {
						return
					}
					// Back off to avoid a tight error loop.
					time.Sleep(1 * time.Second)
					continue
				}

				select {
				case c.messageChan <- msg:
					log.Printf("Message received: topic=%s, partition=%d, offset=%d", msg.Topic, msg.Partition, msg.Offset)
				case <-ctx.Done():
					log.Println("Context canceled, stopping consumer before sending message.")
					return
				case <-c.doneChan:
					log.Println("Shutdown signal received, stopping consumer before sending message.")
					return
				}
			}
		}
	}()
}

// Stop shuts the consumer down and waits for the read loop to exit.
func (c *Consumer) Stop() {
	log.Println("Stopping Kafka consumer...")
	close(c.doneChan)
	c.wg.Wait()
	if err := c.reader.Close(); err != nil {
		log.Printf("Failed to close Kafka reader: %v", err)
	}
	log.Println("Kafka consumer stopped.")
}
