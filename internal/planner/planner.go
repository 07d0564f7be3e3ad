package planner

import (
	"math"
	"strings"
)

// PathSeparator joins topic names in WorkUnit.TopicPath.
const PathSeparator = " > "

// WorkUnit is one concrete generation job.
type WorkUnit struct {
	Index       int      `json:"index"`        // position in the whole plan
	BucketIndex int      `json:"bucket_index"` // position within its leaf topic
	Path        []string `json:"path"`         // root first
	SourceStyle string   `json:"source_style"`
	Difficulty  string   `json:"difficulty"`
	Format      string   `json:"format"`
}

// Topic returns the top-level topic name.
func (u WorkUnit) Topic() string {
	if len(u.Path) == 0 {
		return ""
	}
	return u.Path[0]
}

// Subtopic returns the second-level name, or "" when the unit has none.
func (u WorkUnit) Subtopic() string {
	if len(u.Path) < 2 {
		return ""
	}
	return u.Path[1]
}

// TopicPath returns the path joined with PathSeparator.
func (u WorkUnit) TopicPath() string {
	return strings.Join(u.Path, PathSeparator)
}

// Planner validates requests and expands them into work units.
type Planner struct {
	MaxTarget int
}

// New returns a planner bounded by maxTarget, or DefaultMaxTarget when
// maxTarget is not positive.
func New(maxTarget int) *Planner {
	if maxTarget <= 0 {
		maxTarget = DefaultMaxTarget
	}
	return &Planner{MaxTarget: maxTarget}
}

// Plan returns exactly req.TargetCount units, or none when the request has
// no topics. Identical requests yield identical plans.
func (p *Planner) Plan(req Request) ([]WorkUnit, error) {
	if err := req.Validate(p.MaxTarget); err != nil {
		return nil, err
	}
	if req.TargetCount == 0 || len(req.Topics) == 0 {
		return nil, nil
	}

	units := make([]WorkUnit, 0, req.TargetCount)
	var expand func(topics []Topic, count int, path []string)
	expand = func(topics []Topic, count int, path []string) {
		for i, n := range Apportion(weights(topics), count) {
			if n == 0 {
				continue
			}
			t := topics[i]
			sub := append(path[:len(path):len(path)], t.Name)
			if len(t.Children) > 0 {
				expand(t.Children, n, sub)
				continue
			}
			for b := range n {
				units = append(units, req.unit(len(units), b, sub))
			}
		}
	}
	expand(req.Topics, req.TargetCount, nil)
	return units, nil
}

func (r *Request) unit(index, bucket int, path []string) WorkUnit {
	format := r.Formats[0]
	if r.mode() == FormatAlternating {
		format = r.Formats[bucket%len(r.Formats)]
	}
	return WorkUnit{
		Index:       index,
		BucketIndex: bucket,
		Path:        path,
		SourceStyle: r.SourceStyles[bucket%len(r.SourceStyles)],
		Difficulty:  r.Difficulties[bucket%len(r.Difficulties)],
		Format:      format,
	}
}

func weights(topics []Topic) []float64 {
	out := make([]float64, len(topics))
	for i, t := range topics {
		out[i] = t.Weight
	}
	return out
}

// Apportion splits total across weights. Every bucket but the last one with
// a positive weight gets round(w/sum*total), clamped to what is left; that
// last bucket absorbs the remainder. The result always sums to total when
// some weight is positive and finite, and other buckets always get 0.
// Weights are scaled by the largest one first so the sum cannot overflow.
func Apportion(weights []float64, total int) []int {
	out := make([]int, len(weights))
	last := -1
	var top float64
	for i, w := range weights {
		if usable(w) {
			top = max(top, w)
			last = i
		}
	}
	if last < 0 || total <= 0 {
		return out
	}

	var sum float64
	for _, w := range weights {
		if usable(w) {
			sum += w / top
		}
	}

	remaining := total
	for i := 0; i < last; i++ {
		if !usable(weights[i]) {
			continue
		}
		n := int(math.Round(weights[i] / top / sum * float64(total)))
		n = min(n, remaining)
		out[i] = n
		remaining -= n
	}
	out[last] = remaining
	return out
}

func usable(w float64) bool {
	return w > 0 && !math.IsInf(w, 1)
}

// Counts tallies units per topic path.
func Counts(units []WorkUnit) map[string]int {
	out := make(map[string]int)
	for _, u := range units {
		out[u.TopicPath()]++
	}
	return out
}
