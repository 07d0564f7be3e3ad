package problemgen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estuda/estuda/internal/llm"
	"github.com/estuda/estuda/internal/planner"
)

// topicOracle answers every prompt with a valid artifact except prompts about
// topics listed in fail, and tracks how many calls are in flight.
type topicOracle struct {
	fail  []string
	delay time.Duration

	inFlight atomic.Int32
	peak     atomic.Int32

	mu    sync.Mutex
	calls map[string]int
}

func (o *topicOracle) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	n := o.inFlight.Add(1)
	defer o.inFlight.Add(-1)
	for {
		p := o.peak.Load()
		if n <= p || o.peak.CompareAndSwap(p, n) {
			break
		}
	}

	prompt := req.Prompt
	o.mu.Lock()
	if o.calls == nil {
		o.calls = map[string]int{}
	}
	o.calls[topicLine(prompt)]++
	o.mu.Unlock()

	if err := llm.Sleep(ctx, o.delay); err != nil {
		return nil, err
	}
	for _, f := range o.fail {
		if strings.Contains(prompt, "Tema: "+f) {
			return nil, &llm.ErrProviderUnavailable{Err: errors.New("503")}
		}
	}
	return &llm.Response{Text: mcJSON(), Model: "stub", Stop: llm.StopEnd}, nil
}

func (o *topicOracle) ModelID() string { return "stub" }

func topicLine(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "Tema: ") {
			return strings.TrimPrefix(line, "Tema: ")
		}
	}
	return ""
}

func plan(t *testing.T, topics ...planner.Topic) []planner.WorkUnit {
	t.Helper()
	var total int
	for _, tp := range topics {
		total += int(tp.Weight)
	}
	units, err := planner.New(20).Plan(planner.Request{
		Topics:       topics,
		TargetCount:  total,
		SourceStyles: []string{"ENARE"},
		Difficulties: []string{"medium"},
		Formats:      []string{string(FormatMultipleChoice)},
	})
	require.NoError(t, err)
	return units
}

func TestOrchestrator_PartialFailure(t *testing.T) {
	oracle := &topicOracle{fail: []string{"Pediatria"}}
	units := plan(t,
		planner.Topic{Name: "Cardiologia", Weight: 3},
		planner.Topic{Name: "Pediatria", Weight: 2},
	)
	require.Len(t, units, 5)

	o := NewOrchestrator(New(oracle, testConfig(), nil), 5, nil)
	batch := o.Run(context.Background(), units)

	require.Len(t, batch.Generated, 3)
	require.Len(t, batch.Failures, 2)
	for i, g := range batch.Generated {
		assert.Equal(t, "Cardiologia", g.Unit.Topic())
		assert.Equal(t, i, g.Unit.Index, "generated artifacts keep unit order")
		assert.Equal(t, "stub", g.Model)
	}
	for _, f := range batch.Failures {
		assert.Equal(t, "Pediatria", f.Unit.Topic())
		assert.Len(t, f.Attempts, 3)
	}

	oracle.mu.Lock()
	defer oracle.mu.Unlock()
	assert.Equal(t, 3, oracle.calls["Cardiologia"])
	assert.Equal(t, 6, oracle.calls["Pediatria"], "each failing unit is tried exactly 3 times")
}

func TestOrchestrator_BoundsInFlight(t *testing.T) {
	oracle := &topicOracle{delay: 15 * time.Millisecond}
	units := plan(t, planner.Topic{Name: "Cardiologia", Weight: 12})

	o := NewOrchestrator(New(oracle, testConfig(), nil), 3, nil)
	batch := o.Run(context.Background(), units)

	assert.Len(t, batch.Generated, 12)
	assert.Empty(t, batch.Failures)
	assert.LessOrEqual(t, oracle.peak.Load(), int32(3))
	assert.Greater(t, oracle.peak.Load(), int32(1), "units should run concurrently")
}

func TestOrchestrator_AllFail(t *testing.T) {
	oracle := &topicOracle{fail: []string{"Cardiologia"}}
	units := plan(t, planner.Topic{Name: "Cardiologia", Weight: 2})

	batch := NewOrchestrator(New(oracle, testConfig(), nil), 0, nil).Run(context.Background(), units)
	assert.Empty(t, batch.Generated)
	assert.Len(t, batch.Failures, 2)
}

func TestOrchestrator_NoUnits(t *testing.T) {
	batch := NewOrchestrator(New(llm.NewMockProvider(), testConfig(), nil), 5, nil).Run(context.Background(), nil)
	assert.Empty(t, batch.Generated)
	assert.Empty(t, batch.Failures)
}

func TestDecode_UnknownFormat(t *testing.T) {
	_, err := decode(json.RawMessage(`{"statement":"x","answer":"y","explanation":"z"}`), unitOf("essay"), nil)
	assert.Error(t, err)
}
