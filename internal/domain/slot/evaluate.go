package slot

// Request is a fully parsed slot request.
type Request struct {
	Station StationRef
	Date    string
	Window  Window
}

// NewRequest parses the loose request fields into a Request.
func NewRequest(stationType, consoleType string, stationNumber int, date, start, end string) (Request, error) {
	station, err := ParseStation(stationType, consoleType, stationNumber)
	if err != nil {
		return Request{}, err
	}
	day, err := ParseDate(date)
	if err != nil {
		return Request{}, err
	}
	window, err := NewWindow(start, end)
	if err != nil {
		return Request{}, err
	}
	return Request{Station: station, Date: day, Window: window}, nil
}

// Decision is the outcome of evaluating a request against the current bookings.
type Decision struct {
	Available bool
	Conflicts []Window
	Quote     Quote
}

// Evaluate decides whether req is free given the active bookings already
// held on the same station and date, and prices it. It has no side effects;
// callers that persist the result must hold the slot's lock while doing so.
//
// Errors are validation errors: bad capacity, closed hours or an unpriced
// station. An occupied slot is not an error, it is Available == false.
func Evaluate(req Request, rc RateConfig, active []Window) (Decision, error) {
	if err := rc.CheckCapacity(req.Station); err != nil {
		return Decision{}, err
	}
	if !req.Window.Within(rc.OpeningHours) {
		return Decision{}, ErrOutsideOperatingHours
	}

	quote, err := ComputeQuote(rc, req.Station, req.Window)
	if err != nil {
		return Decision{}, err
	}

	var conflicts []Window
	for _, existing := range active {
		if req.Window.Overlaps(existing) {
			conflicts = append(conflicts, existing)
		}
	}

	return Decision{
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
		Quote:     quote,
	}, nil
}
