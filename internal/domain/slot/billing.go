package slot

import (
	"gaming-cafe-booking/pkg/apperror"

	"github.com/shopspring/decimal"
)

var (
	ErrStationOutOfRange     = apperror.Validation("station number exceeds the cafe's capacity for this station type")
	ErrConsoleNotOffered     = apperror.Validation("console type is not offered by this cafe")
	ErrRateNotConfigured     = apperror.Validation("no hourly rate is configured for this station type")
	ErrOutsideOperatingHours = apperror.Validation("requested time is outside the cafe's operating hours")
	ErrInvalidOperatingHours = apperror.Validation("cafe operating hours are invalid")
)

var minutesPerHour = decimal.NewFromInt(60)

// ConsoleRate is the stock and price of one console family at a cafe.
type ConsoleRate struct {
	Quantity   int
	HourlyRate decimal.Decimal
}

// RateConfig is the read-only inventory and price view of one cafe.
// A nil PCHourlyRate falls back to HourlyRate.
type RateConfig struct {
	TotalPCStations int
	PCHourlyRate    *decimal.Decimal
	HourlyRate      decimal.Decimal
	Consoles        map[ConsoleType]ConsoleRate
	OpeningHours    Window
}

// NewOperatingHours builds the daily opening window. A closing time of
// "00:00" or "24:00" means midnight at the end of the day.
func NewOperatingHours(opening, closing string) (Window, error) {
	open, err := ParseClock(opening)
	if err != nil {
		return Window{}, err
	}
	closeAt, err := ParseClock(closing)
	if err != nil {
		return Window{}, err
	}
	if closeAt == 0 {
		closeAt = MinutesPerDay
	}
	if open >= closeAt {
		return Window{}, ErrInvalidOperatingHours
	}
	return Window{Start: open, End: closeAt}, nil
}

// Capacity returns how many units of the station's kind the cafe has.
func (rc RateConfig) Capacity(station StationRef) int {
	if station.Type() == StationTypePC {
		return rc.TotalPCStations
	}
	return rc.Consoles[station.Console()].Quantity
}

// CheckCapacity rejects station numbers beyond the configured quantity.
func (rc RateConfig) CheckCapacity(station StationRef) error {
	if station.Type() == StationTypeConsole && rc.Capacity(station) == 0 {
		return ErrConsoleNotOffered
	}
	if station.Number() > rc.Capacity(station) {
		return ErrStationOutOfRange
	}
	return nil
}

// Rate resolves the hourly rate for the station's kind.
func (rc RateConfig) Rate(station StationRef) (decimal.Decimal, error) {
	var rate decimal.Decimal
	switch station.Type() {
	case StationTypePC:
		rate = rc.HourlyRate
		if rc.PCHourlyRate != nil && rc.PCHourlyRate.IsPositive() {
			rate = *rc.PCHourlyRate
		}
	case StationTypeConsole:
		console, ok := rc.Consoles[station.Console()]
		if !ok || console.Quantity == 0 {
			return decimal.Zero, ErrConsoleNotOffered
		}
		rate = console.HourlyRate
	default:
		return decimal.Zero, ErrUnknownStationType
	}

	if !rate.IsPositive() {
		return decimal.Zero, ErrRateNotConfigured
	}
	return rate, nil
}

// Quote is the frozen charge for one booking.
type Quote struct {
	DurationHours decimal.Decimal
	HourlyRate    decimal.Decimal
	TotalAmount   decimal.Decimal
}

// ComputeQuote prices window at the station's rate. The total is computed
// from exact minutes and rounded half-up to two decimal places.
func ComputeQuote(rc RateConfig, station StationRef, window Window) (Quote, error) {
	if window.Minutes() <= 0 {
		return Quote{}, ErrEmptyWindow
	}
	rate, err := rc.Rate(station)
	if err != nil {
		return Quote{}, err
	}

	minutes := decimal.NewFromInt(int64(window.Minutes()))
	return Quote{
		DurationHours: minutes.Div(minutesPerHour).Round(2),
		HourlyRate:    rate,
		TotalAmount:   rate.Mul(minutes).Div(minutesPerHour).Round(2),
	}, nil
}
