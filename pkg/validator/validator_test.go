package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type slotRequest struct {
	StationType string `json:"station_type" validate:"required,oneof=pc console"`
	ConsoleType string `json:"console_type" validate:"required_if=StationType console"`
	BookingDate string `json:"booking_date" validate:"required,yyyymmdd"`
	StartTime   string `json:"start_time" validate:"required,hhmm"`
	EndTime     string `json:"end_time" validate:"required,hhmm"`
}

func TestValidate_AcceptsWellFormedRequest(t *testing.T) {
	v := NewValidator()
	req := slotRequest{StationType: "pc", BookingDate: "2026-03-14", StartTime: "14:00", EndTime: "24:00"}

	assert.NoError(t, v.Validate(&req))
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()
	req := slotRequest{StationType: "console", BookingDate: "14/03/2026", StartTime: "2pm", EndTime: "25:00"}

	err := v.Validate(&req)
	assert.Error(t, err)

	msgs := v.FormatValidationErrors(err)
	assert.Equal(t, "console_type is required", msgs["console_type"])
	assert.Equal(t, "booking_date must be a date in YYYY-MM-DD format", msgs["booking_date"])
	assert.Equal(t, "start_time must be a 24h time in HH:MM format", msgs["start_time"])
	assert.Contains(t, msgs, "end_time")
}

func TestValidate_RejectsUnknownStationType(t *testing.T) {
	v := NewValidator()
	req := slotRequest{StationType: "vr", BookingDate: "2026-03-14", StartTime: "10:00", EndTime: "11:00"}

	msgs := v.FormatValidationErrors(v.Validate(&req))
	assert.Equal(t, "station_type must be one of [pc console]", msgs["station_type"])
}

func TestValidateClock_RejectsSingleDigitHour(t *testing.T) {
	v := NewValidator()
	req := slotRequest{StationType: "pc", BookingDate: "2026-03-14", StartTime: "9:00", EndTime: "10:00"}

	msgs := v.FormatValidationErrors(v.Validate(&req))
	assert.Contains(t, msgs, "start_time")
}
