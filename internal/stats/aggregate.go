// Package stats computes summary statistics over forecast sequences.
package stats

import (
	"errors"

	"github.com/kjstillabower/weather-forecast-service/internal/models"
)

// ErrNoRecords is returned when aggregation is requested on an empty sequence.
var ErrNoRecords = errors.New("cannot aggregate an empty forecast sequence")

// Aggregate computes the highest, lowest, and mean temperature over records.
// Pure function of its input; the returned statistics satisfy
// Lowest <= Average <= Highest.
func Aggregate(records []models.ForecastRecord) (models.TemperatureStatistics, error) {
	if len(records) == 0 {
		return models.TemperatureStatistics{}, ErrNoRecords
	}

	highest := records[0].TemperatureC
	lowest := records[0].TemperatureC
	sum := 0
	for _, r := range records {
		if r.TemperatureC > highest {
			highest = r.TemperatureC
		}
		if r.TemperatureC < lowest {
			lowest = r.TemperatureC
		}
		sum += r.TemperatureC
	}

	return models.TemperatureStatistics{
		Highest: highest,
		Lowest:  lowest,
		Average: float64(sum) / float64(len(records)),
	}, nil
}
