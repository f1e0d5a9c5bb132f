package slot

import (
	"fmt"

	"gaming-cafe-booking/pkg/apperror"
)

type StationType string

const (
	StationTypePC      StationType = "pc"
	StationTypeConsole StationType = "console"
)

type ConsoleType string

const (
	ConsolePS5            ConsoleType = "ps5"
	ConsolePS4            ConsoleType = "ps4"
	ConsoleXboxSeriesX    ConsoleType = "xbox_series_x"
	ConsoleXboxSeriesS    ConsoleType = "xbox_series_s"
	ConsoleXboxOne        ConsoleType = "xbox_one"
	ConsoleNintendoSwitch ConsoleType = "nintendo_switch"
)

// ConsoleTypes lists every console family a cafe can stock
var ConsoleTypes = []ConsoleType{
	ConsolePS5,
	ConsolePS4,
	ConsoleXboxSeriesX,
	ConsoleXboxSeriesS,
	ConsoleXboxOne,
	ConsoleNintendoSwitch,
}

func (c ConsoleType) Valid() bool {
	for _, known := range ConsoleTypes {
		if c == known {
			return true
		}
	}
	return false
}

var (
	ErrUnknownStationType   = apperror.Validation("station type must be pc or console")
	ErrConsoleTypeRequired  = apperror.Validation("console type is required for console stations")
	ErrConsoleTypeForPC     = apperror.Validation("console type must be empty for pc stations")
	ErrUnknownConsoleType   = apperror.Validation("unknown console type")
	ErrInvalidStationNumber = apperror.Validation("station number must be at least 1")
)

// StationRef identifies one bookable unit. It is either a PCStation or a
// ConsoleStation; no other implementations exist.
type StationRef interface {
	Type() StationType
	Console() ConsoleType
	Number() int
	String() string
	sealed()
}

type PCStation struct {
	number int
}

func (s PCStation) Type() StationType    { return StationTypePC }
func (s PCStation) Console() ConsoleType { return "" }
func (s PCStation) Number() int          { return s.number }
func (s PCStation) String() string       { return fmt.Sprintf("pc#%d", s.number) }
func (PCStation) sealed()                {}

type ConsoleStation struct {
	console ConsoleType
	number  int
}

func (s ConsoleStation) Type() StationType    { return StationTypeConsole }
func (s ConsoleStation) Console() ConsoleType { return s.console }
func (s ConsoleStation) Number() int          { return s.number }
func (s ConsoleStation) String() string       { return fmt.Sprintf("%s#%d", s.console, s.number) }
func (ConsoleStation) sealed()                {}

func NewPCStation(number int) (PCStation, error) {
	if number < 1 {
		return PCStation{}, ErrInvalidStationNumber
	}
	return PCStation{number: number}, nil
}

func NewConsoleStation(console ConsoleType, number int) (ConsoleStation, error) {
	if !console.Valid() {
		return ConsoleStation{}, ErrUnknownConsoleType
	}
	if number < 1 {
		return ConsoleStation{}, ErrInvalidStationNumber
	}
	return ConsoleStation{console: console, number: number}, nil
}

// ParseStation builds a StationRef from the loose request fields.
func ParseStation(stationType, consoleType string, number int) (StationRef, error) {
	switch StationType(stationType) {
	case StationTypePC:
		if consoleType != "" {
			return nil, ErrConsoleTypeForPC
		}
		return NewPCStation(number)
	case StationTypeConsole:
		if consoleType == "" {
			return nil, ErrConsoleTypeRequired
		}
		return NewConsoleStation(ConsoleType(consoleType), number)
	default:
		return nil, ErrUnknownStationType
	}
}
