package main

import (
	"eventrooms/internal/availability"
	eventsrepo "eventrooms/internal/events/repository"
	"eventrooms/internal/rooms/handler"
	"eventrooms/internal/rooms/repository"
	"eventrooms/internal/rooms/service"
	"eventrooms/internal/rooms/validator"
	"eventrooms/pkg/app"
	"eventrooms/pkg/config"
)

const ServiceName = "rooms"

// @title Eventrooms Rooms API
// @version 1.0
// @description API documentation for the Rooms microservice.
// @BasePath /
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Rooms service")
	roomService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewRoomHandler(roomService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.RoomService {
	eventRepo := eventsrepo.NewMongoEventRepository(cfg)
	checker := availability.NewChecker(eventRepo, cfg.Policy)

	roomService := service.NewRoomService(
		repository.NewMongoRoomRepository(cfg),
		eventRepo,
		checker,
		validator.NewRoomValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Rooms service initialized",
		"database", cfg.MongoDatabaseName,
		"overlap_policy", checker.Policy(),
	)
	return roomService
}
