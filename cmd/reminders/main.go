package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"eventrooms/internal/availability"
	eventsrepo "eventrooms/internal/events/repository"
	eventsservice "eventrooms/internal/events/service"
	eventsvalidator "eventrooms/internal/events/validator"
	participantsrepo "eventrooms/internal/participants/repository"
	participantsservice "eventrooms/internal/participants/service"
	participantsvalidator "eventrooms/internal/participants/validator"
	"eventrooms/internal/reminders/dispatcher"
	"eventrooms/internal/reminders/job"
	"eventrooms/internal/reminders/repository"
	roomsrepo "eventrooms/internal/rooms/repository"
	"eventrooms/pkg/config"
	"eventrooms/pkg/kafka"
	kafka_config "eventrooms/pkg/kafka/config"
	kafka_middleware "eventrooms/pkg/kafka/middleware"
)

const JobName = "reminders"

func main() {
	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.ReminderTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}()

	metrics := &kafka_middleware.PublishMetrics{}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware(metrics))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting reminder job",
		"interval", cfg.ReminderInterval,
		"window", cfg.ReminderWindow,
		"topic", producer.Topic(),
	)
	initJob(cfg, dispatcher.NewKafkaDispatcher(producer, JobName)).Start(ctx)

	snapshot := metrics.Snapshot()
	cfg.Log.Info("Reminder job stopped",
		"published", snapshot.Published,
		"failed", snapshot.Failed,
		"avg_publish_duration", snapshot.AverageDuration,
	)
}

func initJob(cfg *config.Config, d dispatcher.Dispatcher) *job.Job {
	eventRepo := eventsrepo.NewMongoEventRepository(cfg)
	registrationRepo := eventsrepo.NewMongoRegistrationRepository(cfg)
	participantRepo := participantsrepo.NewMongoParticipantRepository(cfg)

	eventService := eventsservice.NewEventService(
		eventRepo,
		registrationRepo,
		roomsrepo.NewMongoRoomRepository(cfg),
		participantRepo,
		participantsservice.NewResolver(participantRepo, participantsvalidator.NewParticipantValidator(cfg.Log), cfg),
		availability.NewChecker(eventRepo, cfg.Policy),
		eventsvalidator.NewEventValidator(cfg.Log),
		cfg,
	)

	return job.New(
		eventService,
		registrationRepo,
		participantRepo,
		repository.NewMongoLeaseRepository(cfg),
		d,
		cfg,
	)
}
