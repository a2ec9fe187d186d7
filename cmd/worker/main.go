package main

import (
	"context"
	"log"

	"postcard/internal/compose"
	"postcard/internal/env"
	"postcard/internal/geocode"
	"postcard/internal/models"
	"postcard/internal/naming"
	"postcard/internal/service"
	"postcard/internal/storage"
	"postcard/pkg/geo"
	"postcard/pkg/graceful"
	"postcard/pkg/kafkaclient"
)

func main() {
	env.LoadEnv()

	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	kafkaBroker := env.MustGetEnv("KAFKA_BROKER")
	kafkaTopic := env.MustGetEnv("KAFKA_TOPIC")
	kafkaGroupID := env.MustGetEnv("KAFKA_GROUP_ID")
	apiKey := env.MustGetEnv("MAPQUEST_KEY")
	fontPath := env.GetEnvDefault("FONT_PATH", "DejaVuSans.ttf")
	outBucket := env.GetEnvDefault("POSTCARD_BUCKET", "postcards")
	pgDSN := env.GetEnvDefault("POSTGRES_DSN", "")

	log.Printf("Connecting to Kafka broker: %s on topic: %s with group ID: %s", kafkaBroker, kafkaTopic, kafkaGroupID)

	faces, err := compose.LoadFont(fontPath)
	if err != nil {
		log.Fatalf("Loading font: %v", err)
	}

	s3Service, err := storage.NewS3Service()
	if err != nil {
		log.Fatal(err)
	}
	if _, err := s3Service.CreateBucket(ctx, outBucket, ""); err != nil {
		log.Fatalf("Ensuring output bucket: %v", err)
	}

	sinks := []service.Sink{&storage.ObjectSink{Service: s3Service, Bucket: outBucket}}
	if pgDSN != "" {
		pg, err := storage.NewPostgresStore(ctx, pgDSN)
		if err != nil {
			log.Fatalf("Connecting to postgres: %v", err)
		}
		defer pg.Close()
		sinks = append(sinks, pg)
	}

	processor := service.NewProcessor(
		geocode.NewClient(apiKey),
		naming.NewAggregator(geo.Resolver{}),
		compose.NewComposer(faces),
		models.AllPlacements,
		sinks...,
	)

	consumer := kafkaclient.NewConsumer(kafkaTopic, kafkaGroupID, kafkaBroker)
	consumer.StartConsuming(ctx)

	iterator := service.NewIterator(consumer, s3Service.GetPhoto)
	for photo := range iterator.Photos(ctx) {
		set, err := processor.Process(ctx, photo.Key, photo.Data)
		if err != nil {
			log.Printf("Skipping %s: %v", photo.Key, err)
			continue
		}
		log.Printf("Rendered postcard set '%s' from %s", set.Name, photo.Key)
	}

	consumer.Stop()
	log.Println("Worker finished, application exiting.")
}
