package handlers

import (
	"reservo/services/availability"
	"reservo/services/booking"
	"reservo/services/schedule"
	"reservo/services/unavailability"
	"reservo/utils"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Availability endpoints
	GetAvailabilityHandler        gin.HandlerFunc
	GetAvailabilityForManyHandler gin.HandlerFunc
	GetAvailabilityRangeHandler   gin.HandlerFunc
	GetNextAvailableSlotsHandler  gin.HandlerFunc
	CheckAvailabilityHandler      gin.HandlerFunc

	// Booking endpoints
	CreateBookingHandler   gin.HandlerFunc
	ListBookingsHandler    gin.HandlerFunc
	GetBookingHandler      gin.HandlerFunc
	UpdateBookingHandler   gin.HandlerFunc
	ConfirmBookingHandler  gin.HandlerFunc
	CompleteBookingHandler gin.HandlerFunc
	CancelBookingHandler   gin.HandlerFunc
	NoShowBookingHandler   gin.HandlerFunc

	// Schedule endpoints
	CreateScheduleHandler    gin.HandlerFunc
	GetScheduleHandler       gin.HandlerFunc
	UpdateScheduleHandler    gin.HandlerFunc
	DeleteScheduleHandler    gin.HandlerFunc
	GetActiveScheduleHandler gin.HandlerFunc
	WorkingDaysHandler       gin.HandlerFunc
	AvailableHoursHandler    gin.HandlerFunc

	// Unavailable block endpoints
	CreateUnavailableBlockHandler  gin.HandlerFunc
	ListUnavailableBlocksHandler   gin.HandlerFunc
	ExpandUnavailableBlocksHandler gin.HandlerFunc
	GetUnavailableBlockHandler     gin.HandlerFunc
	UpdateUnavailableBlockHandler  gin.HandlerFunc
	DeleteUnavailableBlockHandler  gin.HandlerFunc

	// Health
	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires every handler to its service.
func NewHandlerBundle(engine *availability.Engine, bookings *booking.Service, schedules *schedule.Service, blocks *unavailability.Service, health *utils.HealthMonitor) *HandlerBundle {
	ah := NewAvailabilityHandler(engine)
	bh := NewBookingHandler(bookings)
	sh := NewScheduleHandler(schedules)
	uh := NewUnavailableHandler(blocks)
	hh := NewHealthHandler(health)

	return &HandlerBundle{
		GetAvailabilityHandler:        ah.GetAvailabilityHandler,
		GetAvailabilityForManyHandler: ah.GetAvailabilityForManyHandler,
		GetAvailabilityRangeHandler:   ah.GetAvailabilityRangeHandler,
		GetNextAvailableSlotsHandler:  ah.GetNextAvailableSlotsHandler,
		CheckAvailabilityHandler:      ah.CheckAvailabilityHandler,

		CreateBookingHandler:   bh.CreateBookingHandler,
		ListBookingsHandler:    bh.ListBookingsHandler,
		GetBookingHandler:      bh.GetBookingHandler,
		UpdateBookingHandler:   bh.UpdateBookingHandler,
		ConfirmBookingHandler:  bh.ConfirmBookingHandler,
		CompleteBookingHandler: bh.CompleteBookingHandler,
		CancelBookingHandler:   bh.CancelBookingHandler,
		NoShowBookingHandler:   bh.NoShowBookingHandler,

		CreateScheduleHandler:    sh.CreateScheduleHandler,
		GetScheduleHandler:       sh.GetScheduleHandler,
		UpdateScheduleHandler:    sh.UpdateScheduleHandler,
		DeleteScheduleHandler:    sh.DeleteScheduleHandler,
		GetActiveScheduleHandler: sh.GetActiveScheduleHandler,
		WorkingDaysHandler:       sh.WorkingDaysHandler,
		AvailableHoursHandler:    sh.AvailableHoursHandler,

		CreateUnavailableBlockHandler:  uh.CreateUnavailableBlockHandler,
		ListUnavailableBlocksHandler:   uh.ListUnavailableBlocksHandler,
		ExpandUnavailableBlocksHandler: uh.ExpandUnavailableBlocksHandler,
		GetUnavailableBlockHandler:     uh.GetUnavailableBlockHandler,
		UpdateUnavailableBlockHandler:  uh.UpdateUnavailableBlockHandler,
		DeleteUnavailableBlockHandler:  uh.DeleteUnavailableBlockHandler,

		HealthHandler: hh.HealthHandler,
	}
}
