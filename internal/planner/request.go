// Package planner turns a weighted topic selection into a fixed number of
// fully attributed generation work units.
package planner

import (
	"math"
	"strings"

	"github.com/estuda/estuda/internal/apperr"
)

// MaxDepth is the deepest topic hierarchy a request may declare.
const MaxDepth = 3

// DefaultMaxTarget bounds TargetCount when the planner is built without one.
const DefaultMaxTarget = 20

// FormatMode controls how output formats are assigned to units.
type FormatMode string

const (
	// FormatSingle assigns the first format to every unit.
	FormatSingle FormatMode = "single"
	// FormatAlternating rotates through the formats like the other attributes.
	FormatAlternating FormatMode = "alternating"
)

// Topic is one weighted node of a request. Children refine it.
type Topic struct {
	Name     string  `json:"name" yaml:"name"`
	Weight   float64 `json:"weight" yaml:"weight"`
	Children []Topic `json:"children,omitempty" yaml:"children,omitempty"`
}

// Request is a weighted plan for TargetCount units.
type Request struct {
	Topics       []Topic    `json:"topics" yaml:"topics"`
	TargetCount  int        `json:"target_count" yaml:"target_count"`
	SourceStyles []string   `json:"source_styles" yaml:"source_styles"`
	Difficulties []string   `json:"difficulties" yaml:"difficulties"`
	Formats      []string   `json:"formats" yaml:"formats"`
	FormatMode   FormatMode `json:"format_mode,omitempty" yaml:"format_mode,omitempty"`
}

// Validate checks the request against maxTarget.
func (r *Request) Validate(maxTarget int) error {
	if r.TargetCount < 0 || r.TargetCount > maxTarget {
		return apperr.Invalid("target_count", "must be between 0 and %d, got %d", maxTarget, r.TargetCount)
	}
	switch r.FormatMode {
	case "", FormatSingle, FormatAlternating:
	default:
		return apperr.Invalid("format_mode", "must be %q or %q, got %q", FormatSingle, FormatAlternating, r.FormatMode)
	}
	if err := validateTopics("topics", r.Topics, 1, r.TargetCount > 0); err != nil {
		return err
	}
	if r.TargetCount == 0 || len(r.Topics) == 0 {
		return nil
	}

	attrs := []struct {
		field  string
		values []string
	}{
		{"source_styles", r.SourceStyles},
		{"difficulties", r.Difficulties},
		{"formats", r.Formats},
	}
	for _, a := range attrs {
		if len(a.values) == 0 {
			return apperr.Invalid(a.field, "at least one value is required")
		}
		for _, v := range a.values {
			if strings.TrimSpace(v) == "" {
				return apperr.Invalid(a.field, "values must not be blank")
			}
		}
	}
	return nil
}

// validateTopics checks one sibling group. A group that must receive units
// needs a positive weight somewhere or there is nothing to divide by.
func validateTopics(field string, topics []Topic, depth int, allocating bool) error {
	if len(topics) == 0 {
		return nil
	}
	if depth > MaxDepth {
		return apperr.Invalid(field, "topic hierarchy is deeper than %d levels", MaxDepth)
	}

	var positive bool
	for _, t := range topics {
		if strings.TrimSpace(t.Name) == "" {
			return apperr.Invalid(field, "topic name is required")
		}
		if math.IsNaN(t.Weight) || math.IsInf(t.Weight, 0) {
			return apperr.Invalid(field, "weight of %q must be a finite number", t.Name)
		}
		if t.Weight < 0 {
			return apperr.Invalid(field, "weight of %q must not be negative", t.Name)
		}
		positive = positive || t.Weight > 0
		if err := validateTopics(field+"."+t.Name, t.Children, depth+1, allocating && t.Weight > 0); err != nil {
			return err
		}
	}
	if allocating && !positive {
		return apperr.Invalid(field, "at least one weight must be positive")
	}
	return nil
}

func (r *Request) mode() FormatMode {
	if r.FormatMode == "" {
		return FormatSingle
	}
	return r.FormatMode
}
