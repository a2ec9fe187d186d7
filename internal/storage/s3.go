// Package storage persists postcard sets: the local filesystem for the CLI,
// Postgres for the structured store, and S3/MinIO for the worker's object
// flow. Every sink writes a whole set or nothing visible.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"postcard/internal/models"
)

// S3Service is a client for S3-compatible storage.
type S3Service struct {
	client *minio.Client
}

// NewS3Service initializes and returns a new S3 storage service.
// It connects to the MinIO server using credentials from environment variables.
func NewS3Service() (*S3Service, error) {
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	if minioEndpoint == "" || minioAccessKey == "" || minioSecretKey == "" {
		return nil, fmt.Errorf("missing one or more required environment variables: MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY")
	}

	minioClient, err := minio.New(minioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(minioAccessKey, minioSecretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %v", err)
	}

	log.Println("Successfully connected to MinIO endpoint:", minioEndpoint)
	return &S3Service{client: minioClient}, nil
}

// CreateBucket ensures the bucket exists, creating it when missing.
func (s *S3Service) CreateBucket(ctx context.Context, bucketName string, location string) (bool, error) {
	exists, err := s.client.BucketExists(ctx, bucketName)
	if err != nil {
		return false, fmt.Errorf("error checking bucket existence: %v", err)
	}
	if !exists {
		err = s.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location})
		if err != nil {
			return false, err
		}
	}
	return true, nil
}

// GetPhoto retrieves the raw bytes of an uploaded photo. It matches the
// service.LoaderFunc signature so the worker can plug it into the iterator.
func (s *S3Service) GetPhoto(ctx context.Context, bucketName, objectKey string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %v", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %v", err)
	}

	log.Printf("Retrieved photo '%s' from bucket '%s' (%d bytes)", objectKey, bucketName, len(data))
	return data, nil
}

// StorePhotoSet uploads the shared source image and every rendered postcard
// under the set's canonical keys. Existing objects are left untouched, so
// reprocessing the same photo is idempotent.
func (s *S3Service) StorePhotoSet(ctx context.Context, bucketName string, set *models.PhotoSet) error {
	if err := s.putIfAbsent(ctx, bucketName, set.SourceKey(), set.Source); err != nil {
		return err
	}
	for _, pc := range set.Postcards {
		if err := s.putIfAbsent(ctx, bucketName, set.PostcardKey(pc.Placement), pc.Bytes); err != nil {
			return err
		}
	}
	log.Printf("Stored postcard set '%s' in bucket '%s' (%d postcards)", set.Name, bucketName, len(set.Postcards))
	return nil
}

// putIfAbsent writes an object unless it already exists.
func (s *S3Service) putIfAbsent(ctx context.Context, bucketName, objectKey string, data []byte) error {
	_, err := s.client.StatObject(ctx, bucketName, objectKey, minio.StatObjectOptions{})
	if err == nil {
		log.Printf("Object '%s' already exists in bucket '%s'. Ignoring write operation.", objectKey, bucketName)
		return nil
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("failed to check for existing object: %v", err)
	}

	_, err = s.client.PutObject(
		ctx,
		bucketName,
		objectKey,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "image/jpeg"},
	)
	if err != nil {
		return fmt.Errorf("failed to store object in S3: %v", err)
	}
	return nil
}

// ObjectSink adapts S3Service to the processor's Sink interface for a fixed
// output bucket.
type ObjectSink struct {
	Service *S3Service
	Bucket  string
}

func (s *ObjectSink) Store(ctx context.Context, set *models.PhotoSet) error {
	return s.Service.StorePhotoSet(ctx, s.Bucket, set)
}
