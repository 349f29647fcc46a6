package main

import (
	roomshandler "tourbook/internal/rooms/handler"
	"tourbook/internal/rooms/ledger"
	roomsrepo "tourbook/internal/rooms/repository"
	roomsservice "tourbook/internal/rooms/service"
	roomsvalidator "tourbook/internal/rooms/validator"
	tourshandler "tourbook/internal/tours/handler"
	toursrepo "tourbook/internal/tours/repository"
	toursservice "tourbook/internal/tours/service"
	toursvalidator "tourbook/internal/tours/validator"
	"tourbook/pkg/app"
	"tourbook/pkg/clock"
	"tourbook/pkg/config"

	"github.com/julienschmidt/httprouter"
)

// adminHandler registers both the tour and room admin surfaces on one router.
type adminHandler struct {
	tours *tourshandler.TourHandler
	rooms *roomshandler.RoomHandler
}

func (h *adminHandler) RegisterRoutes(router *httprouter.Router) {
	h.tours.RegisterRoutes(router)
	h.rooms.RegisterRoutes(router)
}

func main() {
	cfg := config.Load("tours")
	cfg.SetMongo()
	clk := clock.System()

	tourRepository := toursrepo.NewMongoTourRepository(cfg)
	tourValidator := toursvalidator.NewTourValidator(cfg.Log)
	tourService := toursservice.NewTourService(tourRepository, tourValidator, cfg)
	tourHandler := tourshandler.NewTourHandler(tourService, cfg.Log)

	roomRepository := roomsrepo.NewMongoRoomRepository(cfg)
	roomValidator := roomsvalidator.NewRoomValidator(cfg.Log)
	roomService := roomsservice.NewRoomService(roomRepository, roomValidator, cfg, clk)
	roomLedger := ledger.NewLedger(roomRepository, cfg, clk)
	roomHandler := roomshandler.NewRoomHandler(roomService, roomLedger, cfg.Log)

	application := app.NewApplication(cfg)
	application.SetApp(&adminHandler{tours: tourHandler, rooms: roomHandler})
	application.Run()
}
