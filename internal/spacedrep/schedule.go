package spacedrep

import (
	"math"
	"time"

	"github.com/estuda/estuda/internal/apperr"
	"github.com/estuda/estuda/internal/clock"
)

const (
	// MinEase is the floor applied to every ease update.
	MinEase = 1.3

	// DefaultEase is the ease of a freshly created item.
	DefaultEase = 2.5

	// PassingQuality is the lowest quality that counts as a successful recall.
	PassingQuality = 3

	MaxQuality = 5

	// MaxInterval caps a single interval at roughly a century so due dates
	// stay within four-digit years.
	MaxInterval = 36500
)

// Outcome is the result of scheduling one review.
type Outcome struct {
	Repetitions int
	Interval    int // days
	Ease        float64
	DueDate     time.Time
}

// Schedule applies the SM-2 rules to one review graded with quality.
//
// A failed recall (quality < 3) restarts the repetition chain with a one day
// interval and leaves ease untouched. A successful recall advances the chain
// (1 day, 6 days, then interval*ease rounded) and adjusts ease, floored at
// MinEase. Intervals never exceed MaxInterval. The due date is the UTC day of today plus the new interval.
func Schedule(quality, repetitions int, ease float64, interval int, today time.Time) (Outcome, error) {
	switch {
	case quality < 0 || quality > MaxQuality:
		return Outcome{}, apperr.Invalid("quality", "must be between 0 and %d, got %d", MaxQuality, quality)
	case repetitions < 0:
		return Outcome{}, apperr.Invalid("repetitions", "must be >= 0, got %d", repetitions)
	case ease < MinEase || math.IsNaN(ease) || math.IsInf(ease, 0):
		return Outcome{}, apperr.Invalid("ease", "must be >= %.1f, got %v", MinEase, ease)
	case interval < 1:
		return Outcome{}, apperr.Invalid("interval", "must be >= 1, got %d", interval)
	}

	out := Outcome{Ease: ease}

	if quality < PassingQuality {
		out.Repetitions = 0
		out.Interval = 1
	} else {
		out.Repetitions = repetitions + 1
		switch out.Repetitions {
		case 1:
			out.Interval = 1
		case 2:
			out.Interval = 6
		default:
			next := math.Round(float64(interval) * ease)
			if next > MaxInterval {
				next = MaxInterval
			}
			out.Interval = int(next)
		}

		miss := float64(MaxQuality - quality)
		out.Ease = math.Max(MinEase, ease+(0.1-miss*(0.08+miss*0.02)))
	}

	out.DueDate = clock.Day(today).AddDate(0, 0, out.Interval)
	return out, nil
}

// SeedQuality maps a study session's accuracy to the quality grade used to
// seed its revision. Sessions without answered questions count as a plain
// pass.
func SeedQuality(attempted, correct int) int {
	if attempted <= 0 {
		return 4
	}
	acc := float64(correct) / float64(attempted)
	switch {
	case acc >= 0.9:
		return 5
	case acc >= 0.75:
		return 4
	case acc >= 0.6:
		return 3
	case acc >= 0.4:
		return 2
	case acc >= 0.2:
		return 1
	default:
		return 0
	}
}
