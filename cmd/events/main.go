package main

import (
	"eventrooms/internal/availability"
	"eventrooms/internal/events/handler"
	"eventrooms/internal/events/repository"
	"eventrooms/internal/events/service"
	"eventrooms/internal/events/validator"
	participantsrepo "eventrooms/internal/participants/repository"
	participantsservice "eventrooms/internal/participants/service"
	participantsvalidator "eventrooms/internal/participants/validator"
	roomsrepo "eventrooms/internal/rooms/repository"
	"eventrooms/pkg/app"
	"eventrooms/pkg/config"
)

const ServiceName = "events"

// @title Eventrooms Events API
// @version 1.0
// @description API documentation for the Events microservice.
// @BasePath /
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Events service")
	eventService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewEventHandler(eventService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.EventService {
	eventRepo := repository.NewMongoEventRepository(cfg)
	participantRepo := participantsrepo.NewMongoParticipantRepository(cfg)
	resolver := participantsservice.NewResolver(
		participantRepo,
		participantsvalidator.NewParticipantValidator(cfg.Log),
		cfg,
	)

	eventService := service.NewEventService(
		eventRepo,
		repository.NewMongoRegistrationRepository(cfg),
		roomsrepo.NewMongoRoomRepository(cfg),
		participantRepo,
		resolver,
		availability.NewChecker(eventRepo, cfg.Policy),
		validator.NewEventValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Events service initialized", "database", cfg.MongoDatabaseName)
	return eventService
}
