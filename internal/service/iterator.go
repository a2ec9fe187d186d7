package service

import (
	"context"
	"encoding/json"
	"log"
	"net/url"

	"github.com/minio/minio-go/v7/pkg/notification"
)

// Iterator consumes messages from a MessageIterator, interprets each message
// as a MinIO/S3 bucket notification, loads the referenced photo via
// LoaderFunc, and yields FetchedPhoto items on a channel. It is generic over
// the loaded item type T.
//
// The Iterator does not manage the lifecycle of the underlying message
// source; callers start and stop their consumer outside and pass in an
// implementation of MessageIterator.
type Iterator[T any] struct {
	msgIterator MessageIterator
	loader      LoaderFunc[T]
}

// NewIterator constructs an Iterator for the provided message source and
// photo loader. It spawns a goroutine per Photos() call to stream results.
func NewIterator[T any](iterator MessageIterator, loader LoaderFunc[T]) *Iterator[T] {
	return &Iterator[T]{
		msgIterator: iterator,
		loader:      loader,
	}
}

// Photos starts a goroutine that:
//  1. Receives messages from the underlying MessageIterator
//  2. Deserializes each message as a MinIO bucket notification
//  3. Loads the referenced photo using the provided LoaderFunc
//  4. Emits a FetchedPhoto[T] on the returned channel
//  5. Commits the message offset after a successful load
//
// Errors during JSON deserialization or photo loading are logged and the
// message is skipped; processing continues for subsequent messages. The
// output channel is closed when the underlying Messages() channel is closed.
func (it *Iterator[T]) Photos(ctx context.Context) <-chan *FetchedPhoto[T] {
	out := make(chan *FetchedPhoto[T])
	go func() {
		defer close(out)

		for msg := range it.msgIterator.Messages() {
			var info notification.Info
			if err := json.Unmarshal(msg.Value, &info); err != nil {
				log.Printf("Error unmarshalling notification: %v", err)
				continue
			}
			if len(info.Records) == 0 {
				log.Printf("Notification without records, skipping")
				continue
			}
			event := info.Records[0]

			objectKey, err := url.QueryUnescape(event.S3.Object.Key)
			if err != nil {
				log.Printf("Error unescaping object key %q: %v", event.S3.Object.Key, err)
				continue
			}
			data, err := it.loader(ctx, event.S3.Bucket.Name, objectKey)
			if err != nil {
				log.Printf("Error loading photo %s/%s: %v", event.S3.Bucket.Name, objectKey, err)
				continue
			}

			out <- &FetchedPhoto[T]{Data: data, Key: objectKey, Event: event}

			if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
				log.Printf("Failed to commit offset: %v", err)
			}
		}
	}()
	return out
}
