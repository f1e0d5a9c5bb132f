package slot

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStation(t *testing.T) {
	tests := []struct {
		name        string
		stationType string
		consoleType string
		number      int
		want        StationRef
		wantErr     error
	}{
		{name: "pc", stationType: "pc", number: 4, want: PCStation{number: 4}},
		{name: "console", stationType: "console", consoleType: "ps5", number: 2, want: ConsoleStation{console: ConsolePS5, number: 2}},
		{name: "console without type", stationType: "console", number: 1, wantErr: ErrConsoleTypeRequired},
		{name: "pc with console type", stationType: "pc", consoleType: "ps4", number: 1, wantErr: ErrConsoleTypeForPC},
		{name: "unknown console", stationType: "console", consoleType: "sega_saturn", number: 1, wantErr: ErrUnknownConsoleType},
		{name: "unknown station", stationType: "vr", number: 1, wantErr: ErrUnknownStationType},
		{name: "zero number", stationType: "pc", number: 0, wantErr: ErrInvalidStationNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStation(tt.stationType, tt.consoleType, tt.number)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseClock(t *testing.T) {
	minutes, err := ParseClock("14:30")
	require.NoError(t, err)
	assert.Equal(t, 870, minutes)

	minutes, err = ParseClock("24:00")
	require.NoError(t, err)
	assert.Equal(t, MinutesPerDay, minutes)

	for _, bad := range []string{"", "9:00", "24:30", "12-00", "25:00", "12:60"} {
		_, err := ParseClock(bad)
		assert.ErrorIs(t, err, ErrInvalidClock, bad)
	}
}

func TestNewWindow_RejectsEmptyAndInverted(t *testing.T) {
	_, err := NewWindow("10:00", "10:00")
	assert.ErrorIs(t, err, ErrEmptyWindow)

	_, err = NewWindow("11:00", "10:00")
	assert.ErrorIs(t, err, ErrEmptyWindow)
}

func TestWindowOverlaps(t *testing.T) {
	a := Window{Start: 840, End: 900}
	assert.False(t, a.Overlaps(Window{Start: 900, End: 960}))
	assert.False(t, a.Overlaps(Window{Start: 780, End: 840}))
	assert.True(t, a.Overlaps(Window{Start: 899, End: 960}))
	assert.True(t, a.Overlaps(Window{Start: 850, End: 860}))
	assert.True(t, a.Overlaps(a))
}

func TestNewOperatingHours(t *testing.T) {
	w, err := NewOperatingHours("10:00", "00:00")
	require.NoError(t, err)
	assert.Equal(t, Window{Start: 600, End: MinutesPerDay}, w)

	_, err = NewOperatingHours("22:00", "02:00")
	assert.ErrorIs(t, err, ErrInvalidOperatingHours)
}

func TestRate_PCFallsBackToGenericRate(t *testing.T) {
	rc := RateConfig{TotalPCStations: 5, HourlyRate: decimal.NewFromInt(70)}

	rate, err := rc.Rate(PCStation{number: 1})
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(70)))

	rc.HourlyRate = decimal.Zero
	_, err = rc.Rate(PCStation{number: 1})
	assert.ErrorIs(t, err, ErrRateNotConfigured)
}

func TestComputeQuote_RoundsHalfUp(t *testing.T) {
	rate := decimal.RequireFromString("33.33")
	rc := RateConfig{TotalPCStations: 1, PCHourlyRate: &rate}

	// 33.33 * 45 / 60 = 24.9975
	q, err := ComputeQuote(rc, PCStation{number: 1}, Window{Start: 600, End: 645})
	require.NoError(t, err)
	assert.Equal(t, "25", q.TotalAmount.String())
	assert.Equal(t, "0.75", q.DurationHours.String())
}
