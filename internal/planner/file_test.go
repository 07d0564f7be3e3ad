package planner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estuda/estuda/internal/apperr"
)

func TestParseRequest_YAML(t *testing.T) {
	req, err := ParseRequest([]byte(`
target_count: 10
topics:
  - name: Clínica Médica
    weight: 3
    children:
      - name: Cardiologia
        weight: 2
      - name: Pneumologia
        weight: 1
  - name: Pediatria
    weight: 1
source_styles: [ENARE, USP]
difficulties: [medium]
formats: [multiple_choice, true_false]
format_mode: alternating
`))
	require.NoError(t, err)

	assert.Equal(t, 10, req.TargetCount)
	require.Len(t, req.Topics, 2)
	assert.Equal(t, "Clínica Médica", req.Topics[0].Name)
	assert.Len(t, req.Topics[0].Children, 2)
	assert.Equal(t, []string{"ENARE", "USP"}, req.SourceStyles)
	assert.Equal(t, FormatAlternating, req.FormatMode)

	units, err := New(0).Plan(req)
	require.NoError(t, err)
	assert.Len(t, units, 10)
}

func TestParseRequest_JSON(t *testing.T) {
	req, err := ParseRequest([]byte(`{"target_count": 2, "topics": [{"name": "A", "weight": 1}],
		"source_styles": ["ENARE"], "difficulties": ["easy"], "formats": ["discursive"]}`))
	require.NoError(t, err)
	assert.Equal(t, 2, req.TargetCount)
	assert.Equal(t, "A", req.Topics[0].Name)
}

func TestParseRequest_NonFiniteWeightRejectedByPlan(t *testing.T) {
	for _, w := range []string{".inf", "-.inf", ".nan"} {
		req, err := ParseRequest([]byte(`
target_count: 4
topics:
  - {name: A, weight: ` + w + `}
  - {name: B, weight: 1}
source_styles: [ENARE]
difficulties: [easy]
formats: [multiple_choice]
`))
		require.NoError(t, err, w)

		units, err := New(0).Plan(req)
		assert.True(t, apperr.IsValidation(err), "%s: %v", w, err)
		assert.Empty(t, units, w)
	}
}

func TestParseRequest_Errors(t *testing.T) {
	_, err := ParseRequest(nil)
	assert.Error(t, err)

	_, err = ParseRequest([]byte("target_count: 2\nbogus: true\n"))
	assert.Error(t, err)

	_, err = ParseRequest([]byte("target_count: [1, 2]\n"))
	assert.Error(t, err)
}

func TestReadRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.yaml")
	require.NoError(t, os.WriteFile(path, []byte("target_count: 4\n"), 0o644))

	req, err := ReadRequest(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, req.TargetCount)

	req, err = ReadRequest("-", strings.NewReader("target_count: 7\n"))
	require.NoError(t, err)
	assert.Equal(t, 7, req.TargetCount)

	_, err = ReadRequest(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}
