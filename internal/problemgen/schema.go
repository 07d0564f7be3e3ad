package problemgen

import "github.com/estuda/estuda/internal/llm"

var (
	statementProp = map[string]any{
		"type":        "string",
		"minLength":   1,
		"description": "The question text",
	}
	explanationProp = map[string]any{
		"type":        "string",
		"minLength":   1,
		"description": "Why the key is correct",
	}
)

// MultipleChoiceSchema is the minimum shape of a multiple choice artifact.
var MultipleChoiceSchema = &llm.Schema{
	Name:        "multiple-choice-question",
	Description: "An exam-style question with lettered options and one correct letter",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"statement": statementProp,
			"options": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": minOptions,
				"maxItems": maxOptions,
			},
			"answer": map[string]any{
				"type":        "string",
				"pattern":     "^[A-Ea-e]$",
				"description": "Letter of the correct option",
			},
			"explanation": explanationProp,
		},
		"required": []any{"statement", "options", "answer", "explanation"},
	},
}

// TrueFalseSchema is the minimum shape of a true/false artifact.
var TrueFalseSchema = &llm.Schema{
	Name:        "true-false-question",
	Description: "A single assertion judged true or false",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"statement": statementProp,
			"answer": map[string]any{
				"type": "string",
				"enum": []any{"true", "false"},
			},
			"explanation": explanationProp,
		},
		"required": []any{"statement", "answer", "explanation"},
	},
}

// DiscursiveSchema is the minimum shape of a discursive artifact.
var DiscursiveSchema = &llm.Schema{
	Name:        "discursive-question",
	Description: "An open question with the expected answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"statement": statementProp,
			"answer": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "The expected answer",
			},
			"explanation": explanationProp,
		},
		"required": []any{"statement", "answer", "explanation"},
	},
}

// SchemaFor returns the shape schema of f, or nil for an unknown format.
func SchemaFor(f Format) *llm.Schema {
	switch f {
	case FormatMultipleChoice:
		return MultipleChoiceSchema
	case FormatTrueFalse:
		return TrueFalseSchema
	case FormatDiscursive:
		return DiscursiveSchema
	}
	return nil
}
