package slot

import (
	"math/rand"
	"testing"

	"gaming-cafe-booking/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRates() RateConfig {
	pcRate := decimal.NewFromInt(100)
	return RateConfig{
		TotalPCStations: 20,
		PCHourlyRate:    &pcRate,
		HourlyRate:      decimal.NewFromInt(80),
		Consoles: map[ConsoleType]ConsoleRate{
			ConsolePS5:            {Quantity: 4, HourlyRate: decimal.NewFromInt(150)},
			ConsoleNintendoSwitch: {Quantity: 0, HourlyRate: decimal.NewFromInt(90)},
		},
		OpeningHours: Window{Start: 9 * 60, End: MinutesPerDay},
	}
}

func mustRequest(t *testing.T, stationType, consoleType string, number int, start, end string) Request {
	t.Helper()
	req, err := NewRequest(stationType, consoleType, number, "2026-03-14", start, end)
	require.NoError(t, err)
	return req
}

func mustWindow(t *testing.T, start, end string) Window {
	t.Helper()
	w, err := NewWindow(start, end)
	require.NoError(t, err)
	return w
}

func TestEvaluate_BackToBackAllowed(t *testing.T) {
	req := mustRequest(t, "pc", "", 3, "15:00", "16:00")
	active := []Window{mustWindow(t, "14:00", "15:00")}

	d, err := Evaluate(req, testRates(), active)
	require.NoError(t, err)
	assert.True(t, d.Available)
	assert.Empty(t, d.Conflicts)
}

func TestEvaluate_OverlapRejected(t *testing.T) {
	existing := mustWindow(t, "14:00", "17:00")
	req := mustRequest(t, "pc", "", 3, "16:00", "18:00")

	d, err := Evaluate(req, testRates(), []Window{existing})
	require.NoError(t, err)
	assert.False(t, d.Available)
	assert.Equal(t, []Window{existing}, d.Conflicts)
	assert.Equal(t, "200", d.Quote.TotalAmount.String(), "estimate is returned even when busy")
}

func TestEvaluate_RateResolutionByType(t *testing.T) {
	ps5 := mustRequest(t, "console", "ps5", 1, "10:00", "13:00")
	d, err := Evaluate(ps5, testRates(), nil)
	require.NoError(t, err)
	assert.True(t, d.Quote.TotalAmount.Equal(decimal.NewFromInt(450)))
	assert.True(t, d.Quote.HourlyRate.Equal(decimal.NewFromInt(150)))
	assert.True(t, d.Quote.DurationHours.Equal(decimal.NewFromInt(3)))

	pc := mustRequest(t, "pc", "", 1, "10:00", "12:00")
	d, err = Evaluate(pc, testRates(), nil)
	require.NoError(t, err)
	assert.True(t, d.Quote.TotalAmount.Equal(decimal.NewFromInt(200)))
}

func TestEvaluate_CapacityBoundary(t *testing.T) {
	last := mustRequest(t, "pc", "", 20, "10:00", "11:00")
	_, err := Evaluate(last, testRates(), nil)
	assert.NoError(t, err)

	beyond := mustRequest(t, "pc", "", 21, "10:00", "11:00")
	_, err = Evaluate(beyond, testRates(), nil)
	assert.ErrorIs(t, err, ErrStationOutOfRange)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestEvaluate_ConsoleNotOffered(t *testing.T) {
	rates := testRates()

	zeroStock := mustRequest(t, "console", "nintendo_switch", 1, "10:00", "11:00")
	_, err := Evaluate(zeroStock, rates, nil)
	assert.ErrorIs(t, err, ErrConsoleNotOffered)

	absent := mustRequest(t, "console", "xbox_one", 1, "10:00", "11:00")
	_, err = Evaluate(absent, rates, nil)
	assert.ErrorIs(t, err, ErrConsoleNotOffered)
}

func TestEvaluate_OperatingHours(t *testing.T) {
	rates := testRates()

	early := mustRequest(t, "pc", "", 1, "08:30", "10:00")
	_, err := Evaluate(early, rates, nil)
	assert.ErrorIs(t, err, ErrOutsideOperatingHours)

	untilClose := mustRequest(t, "pc", "", 1, "22:00", "24:00")
	_, err = Evaluate(untilClose, rates, nil)
	assert.NoError(t, err)
}

func TestEvaluate_CancelledBookingsAreNotPassedIn(t *testing.T) {
	// Cancellation is modelled by the caller dropping the window from the active set.
	req := mustRequest(t, "pc", "", 1, "14:00", "16:00")

	d, err := Evaluate(req, testRates(), []Window{mustWindow(t, "14:00", "16:00")})
	require.NoError(t, err)
	assert.False(t, d.Available)

	d, err = Evaluate(req, testRates(), nil)
	require.NoError(t, err)
	assert.True(t, d.Available)
}

func TestEvaluate_Deterministic(t *testing.T) {
	req := mustRequest(t, "console", "ps5", 2, "10:15", "11:55")

	first, err := Evaluate(req, testRates(), nil)
	require.NoError(t, err)
	second, err := Evaluate(req, testRates(), nil)
	require.NoError(t, err)

	assert.Equal(t, first.Quote, second.Quote)
	assert.Equal(t, "250", first.Quote.TotalAmount.String())
	assert.Equal(t, "1.67", first.Quote.DurationHours.String())
}

// Accepting every request that Evaluate reports as free must never produce
// two overlapping active windows.
func TestEvaluate_RandomSequencesNeverOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	rates := testRates()

	for round := 0; round < 200; round++ {
		var active []Window
		for i := 0; i < 40; i++ {
			start := rates.OpeningHours.Start + rng.Intn(rates.OpeningHours.Minutes()/15)*15
			end := start + (1+rng.Intn(12))*15
			if end > rates.OpeningHours.End {
				end = rates.OpeningHours.End
			}
			if start >= end {
				continue
			}
			req := Request{Station: PCStation{number: 1}, Date: "2026-03-14", Window: Window{Start: start, End: end}}

			d, err := Evaluate(req, rates, active)
			require.NoError(t, err)
			if d.Available {
				active = append(active, req.Window)
			}

			// Randomly cancel an active booking
			if len(active) > 0 && rng.Intn(5) == 0 {
				idx := rng.Intn(len(active))
				active = append(active[:idx], active[idx+1:]...)
			}
		}

		for i := range active {
			for j := i + 1; j < len(active); j++ {
				assert.Falsef(t, active[i].Overlaps(active[j]), "round %d: %s overlaps %s", round, active[i], active[j])
			}
		}
	}
}
