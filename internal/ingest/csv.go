// Package ingest loads connection timetables from CSV files.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"

	"rail-planner/internal/rail"
	"rail-planner/internal/timeline"
)

var ErrMalformedRow = errors.New("malformed row")

// RowError reports a row that could not be turned into a connection.
type RowError struct {
	Line  int
	Route string
	Err   error
}

func (e *RowError) Error() string {
	if e.Route == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d (route %s): %v", e.Line, e.Route, e.Err)
}

func (e *RowError) Unwrap() []error {
	return []error{ErrMalformedRow, e.Err}
}

type record struct {
	RouteID       string `csv:"Route ID"`
	DepartureCity string `csv:"Departure City"`
	ArrivalCity   string `csv:"Arrival City"`
	DepartureTime string `csv:"Departure Time"`
	ArrivalTime   string `csv:"Arrival Time"`
	TrainType     string `csv:"Train Type"`
	Days          string `csv:"Days of Operation"`
	FirstClass    string `csv:"First Class ticket rate (in euro)"`
	SecondClass   string `csv:"Second Class ticket rate (in euro)"`
}

var errNoColumns = errors.New("no values under the expected column names")

func (r record) blank() bool {
	return r == record{}
}

// arrivalPattern matches "08:15" or "08:15 (+1d)".
var arrivalPattern = regexp.MustCompile(`^(\d{1,2}:\d{2})\s*(?:\(\+(\d+)d\))?$`)

// LoadFile reads the connections in the CSV file at path.
func LoadFile(path string) ([]*rail.Connection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open connections: %w", err)
	}
	defer f.Close()

	conns, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Info().Str("file", path).Int("connections", len(conns)).Msg("Loaded connections")
	return conns, nil
}

// Load reads connections from CSV with a header row. A row that fails to
// parse aborts the load with a *RowError. A row with no recognised values,
// e.g. under a header with the wrong column names, is malformed too.
func Load(r io.Reader) ([]*rail.Connection, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records []record
	if err := gocsv.UnmarshalCSV(reader, &records); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode connections: %w", err)
	}

	conns := make([]*rail.Connection, 0, len(records))
	for i, rec := range records {
		// Line 1 is the header.
		line := i + 2
		if rec.blank() {
			return nil, &RowError{Line: line, Err: errNoColumns}
		}
		c, err := rec.connection()
		if err != nil {
			return nil, &RowError{Line: line, Route: strings.TrimSpace(rec.RouteID), Err: err}
		}
		conns = append(conns, c)
	}
	return conns, nil
}

func (r record) connection() (*rail.Connection, error) {
	dep, err := timeline.ParseClock(r.DepartureTime)
	if err != nil {
		return nil, fmt.Errorf("departure: %w", err)
	}
	arr, offset, err := parseArrival(r.ArrivalTime)
	if err != nil {
		return nil, fmt.Errorf("arrival: %w", err)
	}
	first, err := parseFare(r.FirstClass)
	if err != nil {
		return nil, fmt.Errorf("first class fare: %w", err)
	}
	second, err := parseFare(r.SecondClass)
	if err != nil {
		return nil, fmt.Errorf("second class fare: %w", err)
	}

	return rail.NewConnection(rail.ConnectionSpec{
		RouteID:         strings.TrimSpace(r.RouteID),
		DepartureCity:   strings.TrimSpace(r.DepartureCity),
		ArrivalCity:     strings.TrimSpace(r.ArrivalCity),
		Departure:       dep,
		Arrival:         arr,
		DayOffset:       offset,
		Category:        strings.TrimSpace(r.TrainType),
		Days:            strings.TrimSpace(r.Days),
		FirstClassFare:  first,
		SecondClassFare: second,
	})
}

func parseArrival(raw string) (timeline.Clock, int, error) {
	m := arrivalPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, 0, fmt.Errorf("invalid arrival time %q", raw)
	}
	c, err := timeline.ParseClock(m[1])
	if err != nil {
		return 0, 0, err
	}
	offset := 0
	if m[2] != "" {
		if offset, err = strconv.Atoi(m[2]); err != nil {
			return 0, 0, fmt.Errorf("invalid day offset in %q", raw)
		}
	}
	return c, offset, nil
}

func parseFare(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid fare %q", raw)
	}
	return v, nil
}
