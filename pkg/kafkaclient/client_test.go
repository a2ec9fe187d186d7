package kafkaclient

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

// mockReader simulates the kafka-go Reader for unit testing.
type mockReader struct {
	messages   chan kafka.Message
	commitChan chan kafka.Message
	wg         sync.WaitGroup
	isClosed   bool
}

func newMockReader() *mockReader {
	return &mockReader{
		messages:   make(chan kafka.Message, 10),
		commitChan: make(chan kafka.Message, 10),
	}
}

// produce feeds count messages into the mock stream, then closes it.
func (mr *mockReader) produce(count int) {
	mr.wg.Add(1)
	go func() {
		defer mr.wg.Done()
		defer close(mr.messages)

		for i := 0; i < count; i++ {
			mr.messages <- kafka.Message{
				Topic:     "photo-uploads",
				Partition: 0,
				Offset:    int64(i),
				Value:     []byte(fmt.Sprintf("mock-message-%d", i)),
			}
			time.Sleep(10 * time.Millisecond)
		}
	}()
}

func (mr *mockReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if mr.isClosed {
		return kafka.Message{}, fmt.Errorf("kafka: reader closed")
	}
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case msg, ok := <-mr.messages:
		if !ok {
			return kafka.Message{}, fmt.Errorf("kafka: reader closed")
		}
		return msg, nil
	}
}

func (mr *mockReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	if mr.isClosed {
		return fmt.Errorf("kafka: reader closed")
	}
	for _, msg := range msgs {
		mr.commitChan <- msg
	}
	return nil
}

func (mr *mockReader) Close() error {
	mr.isClosed = true
	close(mr.commitChan)
	return nil
}

func TestConsumerReadsAndCommits(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	mock := newMockReader()
	consumer := &Consumer{
		reader:      mock,
		doneChan:    make(chan struct{}),
		messageChan: make(chan kafka.Message),
	}

	const expectedMessages = 3
	mock.produce(expectedMessages)
	consumer.StartConsuming(ctx)

	received := 0
	for msg := range consumer.Messages() {
		want := fmt.Sprintf("mock-message-%d", received)
		if string(msg.Value) != want {
			t.Errorf("Expected message value %q, got %q", want, string(msg.Value))
		}
		if err := consumer.CommitOffset(ctx, msg); err != nil {
			t.Errorf("CommitOffset() failed: %v", err)
		}
		received++
	}
	if received != expectedMessages {
		t.Errorf("Expected %d messages, got %d", expectedMessages, received)
	}

	consumer.Stop()

	committed := 0
	for range mock.commitChan {
		committed++
	}
	if committed != expectedMessages {
		t.Errorf("Expected %d commits, got %d", expectedMessages, committed)
	}
}

func TestConsumerGracefulShutdown(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	mock := newMockReader()
	consumer := &Consumer{
		reader:      mock,
		doneChan:    make(chan struct{}),
		messageChan: make(chan kafka.Message),
	}

	// Produce far more messages than the test consumes; the consumer must
	// stop cleanly mid-stream.
	mock.produce(100)
	consumer.StartConsuming(ctx)

	consumed := 0
	for i := 0; i < 5; i++ {
		select {
		case <-consumer.Messages():
			consumed++
		case <-ctx.Done():
			t.Fatal("Context canceled unexpectedly")
		case <-time.After(500 * time.Millisecond):
			t.Fatal("Timed out waiting for a message")
		}
	}

	consumer.Stop()

	// The message channel must be closed after Stop.
	for range consumer.Messages() {
	}

	if consumed < 5 {
		t.Errorf("Expected at least 5 messages before stopping, got %d", consumed)
	}
	if !mock.isClosed {
		t.Error("Expected the reader to be closed after Stop()")
	}
}
