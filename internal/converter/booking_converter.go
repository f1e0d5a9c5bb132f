package converter

import (
	"gaming-cafe-booking/internal/delivery/dto"
	"gaming-cafe-booking/internal/domain/entity"
	"gaming-cafe-booking/internal/domain/slot"
)

// BookingToResponse converts a Booking entity to BookingResponse DTO
func BookingToResponse(booking *entity.Booking) *dto.BookingResponse {
	if booking == nil {
		return nil
	}

	response := &dto.BookingResponse{
		ID:               booking.ID,
		BookingCode:      booking.BookingCode,
		CafeID:           booking.CafeID,
		UserID:           booking.UserID,
		StationType:      booking.StationType,
		ConsoleType:      booking.ConsoleType,
		StationNumber:    booking.StationNumber,
		BookingDate:      booking.BookingDate,
		StartTime:        booking.StartTime,
		EndTime:          booking.EndTime,
		Status:           string(booking.Status),
		PaymentStatus:    string(booking.PaymentStatus),
		PaymentReference: booking.PaymentReference,
		DurationHours:    booking.DurationHours,
		HourlyRate:       booking.HourlyRate,
		TotalAmount:      booking.TotalAmount,
		Notes:            booking.Notes,
		CancelledAt:      booking.CancelledAt,
		CreatedAt:        booking.CreatedAt,
		UpdatedAt:        booking.UpdatedAt,
	}

	// Include cafe name if preloaded
	if booking.Cafe != nil {
		response.CafeName = booking.Cafe.Name
	}

	return response
}

// BookingsToResponses converts a slice of Booking entities to slice of BookingResponse DTOs
func BookingsToResponses(bookings []entity.Booking) []dto.BookingResponse {
	responses := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		if resp := BookingToResponse(&bookings[i]); resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}

// BillingToResponse summarises the frozen billing of a booking
func BillingToResponse(booking *entity.Booking) dto.BillingResponse {
	return dto.BillingResponse{
		StationType:   booking.StationType,
		ConsoleType:   booking.ConsoleType,
		DurationHours: booking.DurationHours,
		HourlyRate:    booking.HourlyRate,
		TotalAmount:   booking.TotalAmount,
	}
}

func AvailabilityToResponse(decision slot.Decision) *dto.AvailabilityResponse {
	response := &dto.AvailabilityResponse{
		Available:     decision.Available,
		EstimatedCost: decision.Quote.TotalAmount,
		DurationHours: decision.Quote.DurationHours,
		HourlyRate:    decision.Quote.HourlyRate,
	}
	for _, w := range decision.Conflicts {
		response.Conflicts = append(response.Conflicts, dto.TimeRangeResponse{
			StartTime: slot.FormatClock(w.Start),
			EndTime:   slot.FormatClock(w.End),
		})
	}
	return response
}
