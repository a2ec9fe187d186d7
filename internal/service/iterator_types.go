package service

import (
	"context"

	"github.com/minio/minio-go/v7/pkg/notification"
	"github.com/segmentio/kafka-go"
)

// MessageIterator defines the contract for consuming messages from a Kafka
// topic. It is used by the Iterator to abstract away the details of the
// underlying consumer.
//
// Implementations are responsible for the lifecycle of the consumer
// connection.
type MessageIterator interface {
	// Messages returns a receive-only channel of Kafka messages. The channel
	// is closed by the implementation when the consumer is stopped or the
	// underlying source is exhausted.
	Messages() <-chan kafka.Message

	// CommitOffset acknowledges that a message has been successfully
	// processed. Implementations can make this a no-op when auto-commit is
	// in use. An error is returned if the commit fails.
	CommitOffset(ctx context.Context, msg kafka.Message) error
}

// LoaderFunc loads an object of type T from an object store like S3 or
// MinIO. The Iterator calls it for each storage event with the event's
// bucket and key. Implementations should be read-only and must honor the
// provided context for cancellation and timeouts.
type LoaderFunc[T any] func(ctx context.Context, bucket, key string) (T, error)

// FetchedPhoto pairs a loaded photo with the storage event that announced
// it. Key is the unescaped object key, usable directly as the photo's
// source label.
type FetchedPhoto[T any] struct {
	Data  T
	Key   string
	Event notification.Event
}
