package main

import (
	eventsrepo "eventrooms/internal/events/repository"
	"eventrooms/internal/participants/handler"
	"eventrooms/internal/participants/repository"
	"eventrooms/internal/participants/service"
	"eventrooms/internal/participants/validator"
	"eventrooms/pkg/app"
	"eventrooms/pkg/config"
)

const ServiceName = "participants"

// @title Eventrooms Participants API
// @version 1.0
// @description API documentation for the Participants microservice.
// @BasePath /
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Participants service")
	participantService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewParticipantHandler(participantService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.ParticipantService {
	participantService := service.NewParticipantService(
		repository.NewMongoParticipantRepository(cfg),
		eventsrepo.NewMongoEventRepository(cfg),
		eventsrepo.NewMongoRegistrationRepository(cfg),
		validator.NewParticipantValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Participants service initialized", "database", cfg.MongoDatabaseName)
	return participantService
}
