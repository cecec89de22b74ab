package grader

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestValidate_OK(t *testing.T) {
	raw := decode(t, `{"homeworks": [{"name": "task1", "status": "approved"}], "current_date": 1700000000}`)

	resp, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), resp.CurrentDate)
	require.Len(t, resp.Homeworks, 1)

	// Records pass through untouched; they are checked by Translate.
	rec, ok := resp.Homeworks[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "task1", rec["name"])
}

func TestValidate_EmptyHomeworks(t *testing.T) {
	resp, err := Validate(decode(t, `{"homeworks": [], "current_date": 1700000100}`))
	require.NoError(t, err)
	assert.Empty(t, resp.Homeworks)
	assert.Equal(t, int64(1700000100), resp.CurrentDate)
}

func TestValidate_SchemaErrors(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		detail string
	}{
		{"not a mapping", `[1, 2, 3]`, "not a mapping"},
		{"scalar", `42`, "not a mapping"},
		{"missing homeworks", `{"current_date": 1}`, "missing field homeworks"},
		{"missing current_date", `{"homeworks": []}`, "missing field current_date"},
		{"homeworks not a list", `{"homeworks": {"a": 1}, "current_date": 1}`, "homeworks not a list"},
		{"current_date wrong type", `{"homeworks": [], "current_date": "soon"}`, "current_date invalid type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Validate(decode(t, tc.raw))
			var se *SchemaError
			require.True(t, errors.As(err, &se), "want SchemaError, got %v", err)
			assert.Equal(t, tc.detail, se.Detail)
		})
	}
}
