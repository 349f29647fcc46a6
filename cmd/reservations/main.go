package main

import (
	"context"

	"tourbook/internal/reservations/events"
	reshandler "tourbook/internal/reservations/handler"
	resrepo "tourbook/internal/reservations/repository"
	resservice "tourbook/internal/reservations/service"
	resvalidator "tourbook/internal/reservations/validator"
	"tourbook/internal/rooms/ledger"
	roomsrepo "tourbook/internal/rooms/repository"
	"tourbook/internal/tours/capacity"
	toursrepo "tourbook/internal/tours/repository"
	"tourbook/pkg/app"
	"tourbook/pkg/clock"
	"tourbook/pkg/config"
	kafka_config "tourbook/pkg/kafka/config"
)

func main() {
	cfg := config.Load("reservations")
	cfg.SetMongo()
	clk := clock.System()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	publisher, err := events.NewPublisher(kafkaCfg, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	tourRepository := toursrepo.NewMongoTourRepository(cfg)
	accountant := capacity.NewAccountant(tourRepository, cfg)

	roomRepository := roomsrepo.NewMongoRoomRepository(cfg)
	roomLedger := ledger.NewLedger(roomRepository, cfg, clk)

	reservationRepository := resrepo.NewMongoReservationRepository(cfg)
	slotLockRepository := resrepo.NewMongoSlotLockRepository(cfg)
	if err := slotLockRepository.EnsureIndexes(context.Background()); err != nil {
		cfg.Log.Fatal("Failed to create slot lock indexes", "error", err)
	}

	reservationValidator := resvalidator.NewReservationValidator(cfg, cfg.Log)
	reservationService := resservice.NewReservationService(
		reservationRepository,
		slotLockRepository,
		tourRepository,
		accountant,
		roomLedger,
		reservationValidator,
		publisher,
		cfg,
		clk,
	)
	reservationHandler := reshandler.NewReservationHandler(reservationService, roomLedger, cfg.Log)

	application := app.NewApplication(cfg)
	application.SetApp(reservationHandler)
	application.Run()
}
