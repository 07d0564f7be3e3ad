package spacedrep

import (
	"math"
	"testing"
	"time"

	"github.com/estuda/estuda/internal/apperr"
)

var today = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func TestSchedule_FirstPerfectRecall(t *testing.T) {
	out, err := Schedule(5, 0, 2.5, 1, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Repetitions != 1 {
		t.Errorf("Repetitions = %d, want 1", out.Repetitions)
	}
	if out.Interval != 1 {
		t.Errorf("Interval = %d, want 1", out.Interval)
	}
	if math.Abs(out.Ease-2.6) > 1e-9 {
		t.Errorf("Ease = %v, want 2.6", out.Ease)
	}
	if want := today.AddDate(0, 0, 1); !out.DueDate.Equal(want) {
		t.Errorf("DueDate = %v, want %v", out.DueDate, want)
	}
}

func TestSchedule_FailedRecallKeepsEase(t *testing.T) {
	out, err := Schedule(2, 4, 2.1, 15, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Repetitions != 0 || out.Interval != 1 {
		t.Errorf("got reps=%d interval=%d, want 0 and 1", out.Repetitions, out.Interval)
	}
	if out.Ease != 2.1 {
		t.Errorf("Ease = %v, want 2.1 unchanged", out.Ease)
	}
}

func TestSchedule_IntervalChain(t *testing.T) {
	tests := []struct {
		name         string
		quality      int
		reps         int
		ease         float64
		interval     int
		wantReps     int
		wantInterval int
	}{
		{"second success", 4, 1, 2.5, 1, 2, 6},
		{"third success multiplies", 4, 2, 2.5, 6, 3, 15},
		{"rounds half up", 3, 5, 1.5, 5, 6, 8},
		{"quality 3 is a pass", 3, 0, 2.5, 1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Schedule(tt.quality, tt.reps, tt.ease, tt.interval, today)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Repetitions != tt.wantReps || out.Interval != tt.wantInterval {
				t.Errorf("got reps=%d interval=%d, want %d and %d",
					out.Repetitions, out.Interval, tt.wantReps, tt.wantInterval)
			}
		})
	}
}

func TestSchedule_EaseDeltaByQuality(t *testing.T) {
	tests := []struct {
		quality int
		delta   float64
	}{
		{5, 0.10},
		{4, 0.00},
		{3, -0.14},
	}
	for _, tt := range tests {
		out, err := Schedule(tt.quality, 3, 2.0, 10, today)
		if err != nil {
			t.Fatalf("q=%d: %v", tt.quality, err)
		}
		if math.Abs(out.Ease-(2.0+tt.delta)) > 1e-9 {
			t.Errorf("q=%d: Ease = %v, want %v", tt.quality, out.Ease, 2.0+tt.delta)
		}
	}
}

func TestSchedule_Properties(t *testing.T) {
	for q := 0; q <= MaxQuality; q++ {
		for reps := 0; reps <= 8; reps++ {
			for _, ease := range []float64{1.3, 1.31, 1.7, 2.5, 3.2} {
				for _, iv := range []int{1, 2, 6, 40, 365} {
					a, err := Schedule(q, reps, ease, iv, today)
					if err != nil {
						t.Fatalf("Schedule(%d,%d,%v,%d): %v", q, reps, ease, iv, err)
					}
					b, _ := Schedule(q, reps, ease, iv, today)
					if a != b {
						t.Fatalf("non-deterministic output for (%d,%d,%v,%d)", q, reps, ease, iv)
					}
					if a.Ease < MinEase {
						t.Fatalf("ease %v below floor for (%d,%d,%v,%d)", a.Ease, q, reps, ease, iv)
					}
					if a.Interval < 1 || a.Interval > MaxInterval {
						t.Fatalf("interval %d out of range", a.Interval)
					}
					if q < PassingQuality && (a.Repetitions != 0 || a.Interval != 1) {
						t.Fatalf("failed recall advanced chain: %+v", a)
					}
					if !a.DueDate.Equal(today.AddDate(0, 0, a.Interval)) {
						t.Fatalf("due date %v does not match interval %d", a.DueDate, a.Interval)
					}
				}
			}
		}
	}
}

func TestSchedule_IntervalCapped(t *testing.T) {
	out, err := Schedule(5, 12, 3.5, 20000, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Interval != MaxInterval {
		t.Errorf("Interval = %d, want %d", out.Interval, MaxInterval)
	}
	if want := today.AddDate(0, 0, MaxInterval); !out.DueDate.Equal(want) {
		t.Errorf("DueDate = %v, want %v", out.DueDate, want)
	}

	again, err := Schedule(5, out.Repetitions, out.Ease, out.Interval, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Interval != MaxInterval {
		t.Errorf("Interval after cap = %d, want %d", again.Interval, MaxInterval)
	}
}

func TestSchedule_DueDateUsesUTCDay(t *testing.T) {
	late := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	out, err := Schedule(5, 0, 2.5, 1, late)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC); !out.DueDate.Equal(want) {
		t.Errorf("DueDate = %v, want %v", out.DueDate, want)
	}
}

func TestSchedule_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		quality   int
		reps      int
		ease      float64
		interval  int
		wantField string
	}{
		{"quality too high", 6, 0, 2.5, 1, "quality"},
		{"quality negative", -1, 0, 2.5, 1, "quality"},
		{"negative reps", 4, -1, 2.5, 1, "repetitions"},
		{"ease below floor", 4, 0, 1.2, 1, "ease"},
		{"ease NaN", 4, 0, math.NaN(), 1, "ease"},
		{"ease infinite", 4, 3, math.Inf(1), 6, "ease"},
		{"zero interval", 4, 0, 2.5, 0, "interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Schedule(tt.quality, tt.reps, tt.ease, tt.interval, today)
			verr, ok := err.(*apperr.ValidationError)
			if !ok {
				t.Fatalf("expected *apperr.ValidationError, got %T (%v)", err, err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestSeedQuality(t *testing.T) {
	tests := []struct {
		attempted, correct, want int
	}{
		{0, 0, 4},
		{10, 10, 5},
		{10, 8, 4},
		{10, 6, 3},
		{10, 5, 2},
		{10, 2, 1},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := SeedQuality(tt.attempted, tt.correct); got != tt.want {
			t.Errorf("SeedQuality(%d, %d) = %d, want %d", tt.attempted, tt.correct, got, tt.want)
		}
	}
}
