package forecast

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/kjstillabower/weather-forecast-service/internal/models"
)

// Summaries is the fixed vocabulary of condition descriptions, ordered coldest
// to hottest. Process-wide constant; never mutated.
var Summaries = [...]string{
	"Freezing",
	"Bracing",
	"Chilly",
	"Cool",
	"Mild",
	"Warm",
	"Balmy",
	"Hot",
	"Sweltering",
	"Scorching",
}

// Temperature bounds for generated records: [MinTemperatureC, MaxTemperatureC).
const (
	MinTemperatureC = -20
	MaxTemperatureC = 55
)

// ErrInvalidCount is returned when a negative record count is requested.
var ErrInvalidCount = errors.New("forecast count must not be negative")

// Source supplies uniform random draws in [0, n). Implementations must be safe
// for concurrent use; Generate draws from it without external locking.
type Source interface {
	IntN(n int) int
}

// defaultSource draws from the math/rand package-level generator, which is
// safe for concurrent use.
type defaultSource struct{}

func (defaultSource) IntN(n int) int { return rand.Intn(n) }

// Generator produces sequences of daily forecast records. Stateless apart from
// its random source; a single Generator may serve concurrent requests.
type Generator struct {
	src Source
	now func() time.Time
}

// NewGenerator returns a Generator backed by the process-wide random source.
func NewGenerator() *Generator {
	return NewGeneratorWithSource(defaultSource{}, nil)
}

// NewGeneratorWithSource returns a Generator drawing from src. clock may be
// nil, in which case the system clock is used. Tests substitute a
// deterministic source and a fixed clock.
func NewGeneratorWithSource(src Source, clock func() time.Time) *Generator {
	if clock == nil {
		clock = time.Now
	}
	return &Generator{src: src, now: clock}
}

// Generate returns exactly count records covering sequential future days
// starting at tomorrow, in ascending date order. Each record's temperature is
// drawn uniformly from [MinTemperatureC, MaxTemperatureC) and its summary
// uniformly from Summaries, independently per record.
//
// count == 0 yields an empty sequence; a negative count returns
// ErrInvalidCount.
func (g *Generator) Generate(count int) ([]models.ForecastRecord, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}
	today := models.DateOf(g.now())
	records := make([]models.ForecastRecord, 0, count)
	for offset := 1; offset <= count; offset++ {
		records = append(records, models.ForecastRecord{
			Date:         today.AddDays(offset),
			TemperatureC: MinTemperatureC + g.src.IntN(MaxTemperatureC-MinTemperatureC),
			Summary:      Summaries[g.src.IntN(len(Summaries))],
		})
	}
	return records, nil
}
