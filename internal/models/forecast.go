package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// dateLayout is the wire format for calendar dates.
const dateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day component.
// The JSON representation is "2006-01-02".
type Date struct {
	year  int
	month time.Month
	day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// AddDays returns the date n days after d. n may be negative.
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.year, d.month, d.day+n, 0, 0, 0, 0, time.UTC))
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.year != other.year {
		return d.year < other.year
	}
	if d.month != other.month {
		return d.month < other.month
	}
	return d.day < other.day
}

// String returns the date in "2006-01-02" form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

// MarshalJSON encodes the date as a "2006-01-02" JSON string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a "2006-01-02" JSON string.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	*d = DateOf(t)
	return nil
}

// ForecastRecord is one day's synthetic weather data point. Records are value
// objects: created per request, never mutated, discarded after serialization.
type ForecastRecord struct {
	Date         Date   `json:"date"`
	TemperatureC int    `json:"temperatureC"`
	Summary      string `json:"summary"`
}

// TemperatureF derives the Fahrenheit reading from TemperatureC. The Celsius
// value is the single source of truth; Fahrenheit is never stored.
func (r ForecastRecord) TemperatureF() int {
	return 32 + int(math.Floor(float64(r.TemperatureC)/0.5556))
}

// MarshalJSON adds the derived temperatureF field to the stored fields.
func (r ForecastRecord) MarshalJSON() ([]byte, error) {
	type record ForecastRecord
	return json.Marshal(struct {
		record
		TemperatureF int `json:"temperatureF"`
	}{
		record:       record(r),
		TemperatureF: r.TemperatureF(),
	})
}

// UnmarshalJSON decodes the stored fields, ignoring the derived temperatureF.
func (r *ForecastRecord) UnmarshalJSON(b []byte) error {
	type record ForecastRecord
	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	*r = ForecastRecord(rec)
	return nil
}

// TemperatureStatistics summarizes the temperatures of a non-empty forecast
// sequence. Invariant: Lowest <= Average <= Highest.
type TemperatureStatistics struct {
	Highest int     `json:"highestTemperature"`
	Lowest  int     `json:"lowestTemperature"`
	Average float64 `json:"averageTemperature"`
}
