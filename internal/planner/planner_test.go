package planner

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estuda/estuda/internal/apperr"
)

func baseRequest(target int, topics ...Topic) Request {
	return Request{
		Topics:       topics,
		TargetCount:  target,
		SourceStyles: []string{"ENARE", "USP", "UNIFESP"},
		Difficulties: []string{"easy", "medium", "hard"},
		Formats:      []string{"multiple_choice", "true_false"},
	}
}

func TestPlan_ProportionalSplit(t *testing.T) {
	units, err := New(20).Plan(baseRequest(4,
		Topic{Name: "A", Weight: 3},
		Topic{Name: "B", Weight: 1},
	))
	require.NoError(t, err)
	require.Len(t, units, 4)

	counts := Counts(units)
	assert.Equal(t, 3, counts["A"])
	assert.Equal(t, 1, counts["B"])
}

func TestPlan_ExactCount(t *testing.T) {
	p := New(20)
	for target := 0; target <= 20; target++ {
		for n := 1; n <= 10; n++ {
			uniform := make([]Topic, n)
			skewed := make([]Topic, n)
			ragged := make([]Topic, n)
			for i := range n {
				name := fmt.Sprintf("T%d", i)
				uniform[i] = Topic{Name: name, Weight: 1}
				skewed[i] = Topic{Name: name, Weight: 1}
				ragged[i] = Topic{Name: name, Weight: float64(i%3) + 0.5}
			}
			skewed[0].Weight = 1000

			for label, topics := range map[string][]Topic{"uniform": uniform, "skewed": skewed, "ragged": ragged} {
				units, err := p.Plan(baseRequest(target, topics...))
				require.NoError(t, err)
				assert.Len(t, units, target, "%s target=%d topics=%d", label, target, n)
			}
		}
	}
}

func TestPlan_ExactCountNested(t *testing.T) {
	topics := []Topic{
		{Name: "Clinica", Weight: 5, Children: []Topic{
			{Name: "Cardiologia", Weight: 2, Children: []Topic{
				{Name: "Arritmias", Weight: 1},
				{Name: "ICC", Weight: 1},
				{Name: "Valvopatias", Weight: 1},
			}},
			{Name: "Nefrologia", Weight: 1},
		}},
		{Name: "Cirurgia", Weight: 2, Children: []Topic{
			{Name: "Trauma", Weight: 1},
			{Name: "Hernias", Weight: 0},
		}},
		{Name: "Pediatria", Weight: 1},
	}

	p := New(20)
	for target := 0; target <= 20; target++ {
		units, err := p.Plan(baseRequest(target, topics...))
		require.NoError(t, err)
		require.Len(t, units, target)
		for i, u := range units {
			assert.Equal(t, i, u.Index)
			assert.NotEqual(t, "Cirurgia > Hernias", u.TopicPath())
		}
	}
}

func TestPlan_ZeroWeightGetsNothing(t *testing.T) {
	units, err := New(20).Plan(baseRequest(4,
		Topic{Name: "A", Weight: 1},
		Topic{Name: "B", Weight: 1},
		Topic{Name: "C", Weight: 1},
		Topic{Name: "D", Weight: 0},
	))
	require.NoError(t, err)
	require.Len(t, units, 4)
	assert.Zero(t, Counts(units)["D"])
}

func TestPlan_FewerUnitsThanTopics(t *testing.T) {
	units, err := New(20).Plan(baseRequest(2,
		Topic{Name: "A", Weight: 1},
		Topic{Name: "B", Weight: 1},
		Topic{Name: "C", Weight: 1},
		Topic{Name: "D", Weight: 1},
		Topic{Name: "E", Weight: 1},
	))
	require.NoError(t, err)
	assert.Len(t, units, 2)
}

func TestPlan_EmptyCases(t *testing.T) {
	p := New(20)

	units, err := p.Plan(baseRequest(0, Topic{Name: "A", Weight: 1}))
	require.NoError(t, err)
	assert.Empty(t, units)

	units, err = p.Plan(Request{TargetCount: 5})
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestPlan_RoundRobinWithinBucket(t *testing.T) {
	req := baseRequest(5, Topic{Name: "A", Weight: 1})
	req.FormatMode = FormatAlternating

	units, err := New(20).Plan(req)
	require.NoError(t, err)
	require.Len(t, units, 5)

	wantStyles := []string{"ENARE", "USP", "UNIFESP", "ENARE", "USP"}
	wantDiff := []string{"easy", "medium", "hard", "easy", "medium"}
	wantFormat := []string{"multiple_choice", "true_false", "multiple_choice", "true_false", "multiple_choice"}
	for i, u := range units {
		assert.Equal(t, i, u.BucketIndex)
		assert.Equal(t, wantStyles[i], u.SourceStyle)
		assert.Equal(t, wantDiff[i], u.Difficulty)
		assert.Equal(t, wantFormat[i], u.Format)
		assert.Empty(t, u.Subtopic())
	}
}

func TestPlan_SingleFormat(t *testing.T) {
	req := baseRequest(4, Topic{Name: "A", Weight: 1}, Topic{Name: "B", Weight: 1})
	req.FormatMode = FormatSingle

	units, err := New(20).Plan(req)
	require.NoError(t, err)
	for _, u := range units {
		assert.Equal(t, "multiple_choice", u.Format)
	}
}

func TestPlan_BucketIndexRestartsPerLeaf(t *testing.T) {
	units, err := New(20).Plan(baseRequest(4,
		Topic{Name: "A", Weight: 1, Children: []Topic{
			{Name: "A1", Weight: 1},
			{Name: "A2", Weight: 1},
		}},
	))
	require.NoError(t, err)
	require.Len(t, units, 4)

	assert.Equal(t, []string{"A", "A1"}, units[0].Path)
	assert.Equal(t, "A1", units[0].Subtopic())
	assert.Equal(t, 0, units[0].BucketIndex)
	assert.Equal(t, 1, units[1].BucketIndex)
	assert.Equal(t, []string{"A", "A2"}, units[2].Path)
	assert.Equal(t, 0, units[2].BucketIndex)
	assert.Equal(t, "ENARE", units[2].SourceStyle)
}

func TestPlan_Reproducible(t *testing.T) {
	req := baseRequest(17,
		Topic{Name: "A", Weight: 2.5, Children: []Topic{{Name: "A1", Weight: 1}, {Name: "A2", Weight: 3}}},
		Topic{Name: "B", Weight: 1.25},
		Topic{Name: "C", Weight: 4},
	)
	req.FormatMode = FormatAlternating

	p := New(20)
	first, err := p.Plan(req)
	require.NoError(t, err)
	for range 5 {
		again, err := p.Plan(req)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestPlan_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"target too large", baseRequest(21, Topic{Name: "A", Weight: 1}), "target_count"},
		{"negative target", baseRequest(-1, Topic{Name: "A", Weight: 1}), "target_count"},
		{"negative weight", baseRequest(3, Topic{Name: "A", Weight: -1}), "topics"},
		{"infinite weight", baseRequest(4, Topic{Name: "A", Weight: math.Inf(1)}, Topic{Name: "B", Weight: 1}), "topics"},
		{"NaN weight", baseRequest(4, Topic{Name: "A", Weight: 1}, Topic{Name: "B", Weight: math.NaN()}), "topics"},
		{"infinite child weight", baseRequest(2, Topic{Name: "A", Weight: 1, Children: []Topic{
			{Name: "B", Weight: math.Inf(1)},
		}}), "topics.A"},
		{"blank name", baseRequest(3, Topic{Name: " ", Weight: 1}), "topics"},
		{"all zero weights", baseRequest(3, Topic{Name: "A"}, Topic{Name: "B"}), "topics"},
		{"too deep", baseRequest(3, Topic{Name: "A", Weight: 1, Children: []Topic{
			{Name: "B", Weight: 1, Children: []Topic{
				{Name: "C", Weight: 1, Children: []Topic{{Name: "D", Weight: 1}}},
			}},
		}}), "topics.A.B.C"},
		{"no formats", func() Request {
			r := baseRequest(3, Topic{Name: "A", Weight: 1})
			r.Formats = nil
			return r
		}(), "formats"},
		{"bad mode", func() Request {
			r := baseRequest(3, Topic{Name: "A", Weight: 1})
			r.FormatMode = "random"
			return r
		}(), "format_mode"},
	}

	p := New(20)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Plan(tt.req)
			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestPlan_HugeWeightsStayProportional(t *testing.T) {
	units, err := New(20).Plan(baseRequest(4,
		Topic{Name: "A", Weight: 1e308},
		Topic{Name: "B", Weight: 1e308},
		Topic{Name: "C", Weight: 1},
	))
	require.NoError(t, err)
	require.Len(t, units, 4)
	assert.Equal(t, map[string]int{"A": 2, "B": 2}, Counts(units))
}

func TestApportion(t *testing.T) {
	tests := []struct {
		weights []float64
		total   int
		want    []int
	}{
		{[]float64{3, 1}, 4, []int{3, 1}},
		{[]float64{1, 1, 1}, 10, []int{3, 3, 4}},
		{[]float64{1, 1, 1, 0}, 4, []int{1, 1, 2, 0}},
		{[]float64{1, 1, 0}, 3, []int{2, 1, 0}},
		{[]float64{0, 0}, 5, []int{0, 0}},
		{[]float64{1, 1}, 0, []int{0, 0}},
		{nil, 5, []int{}},
		{[]float64{1e308, 1e308, 1}, 4, []int{2, 2, 0}},
		{[]float64{math.MaxFloat64, 1}, 3, []int{3, 0}},
	}
	for _, tt := range tests {
		got := Apportion(tt.weights, tt.total)
		assert.Equal(t, tt.want, got, "Apportion(%v, %d)", tt.weights, tt.total)
	}
}
