package grader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate_AllVerdicts(t *testing.T) {
	cases := map[string]string{
		"approved":  `Status changed for submission "task1". Работа проверена: ревьюеру всё понравилось. Ура!`,
		"reviewing": `Status changed for submission "task1". Работа взята на проверку ревьюером.`,
		"rejected":  `Status changed for submission "task1". Работа проверена: у ревьюера есть замечания.`,
	}
	for status, want := range cases {
		t.Run(status, func(t *testing.T) {
			got, err := Translate(map[string]any{"name": "task1", "status": status})
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestTranslate_UnknownStatus(t *testing.T) {
	_, err := Translate(map[string]any{"name": "t", "status": "unknown"})

	var ue *UnknownStatusError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "unknown", ue.Status)
}

func TestTranslate_SchemaErrors(t *testing.T) {
	cases := []struct {
		name   string
		record any
	}{
		{"not a mapping", []any{"x"}},
		{"missing name", map[string]any{"status": "approved"}},
		{"missing status", map[string]any{"name": "t"}},
		{"name wrong type", map[string]any{"name": 5.0, "status": "approved"}},
		{"status wrong type", map[string]any{"name": "t", "status": 1.0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Translate(tc.record)
			var se *SchemaError
			assert.True(t, errors.As(err, &se), "want SchemaError, got %v", err)
		})
	}
}

func TestKnownStatus(t *testing.T) {
	assert.True(t, KnownStatus("approved"))
	assert.True(t, KnownStatus("reviewing"))
	assert.True(t, KnownStatus("rejected"))
	assert.False(t, KnownStatus("graded"))
}
