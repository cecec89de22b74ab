package grader

// Response is the validated top-level view of one API answer.
//
// Homeworks keeps the raw decoded elements untouched; individual records are
// validated lazily by Translate so one malformed record does not reject an
// otherwise usable response.
type Response struct {
	Homeworks   []any
	CurrentDate int64
}

// Validate checks the decoded API payload against the documented schema and
// extracts the homework list. It has no side effects.
func Validate(raw any) (*Response, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &SchemaError{Detail: "not a mapping"}
	}

	hw, ok := m["homeworks"]
	if !ok {
		return nil, &SchemaError{Detail: "missing field homeworks"}
	}
	cd, ok := m["current_date"]
	if !ok {
		return nil, &SchemaError{Detail: "missing field current_date"}
	}

	list, ok := hw.([]any)
	if !ok {
		return nil, &SchemaError{Detail: "homeworks not a list"}
	}

	// encoding/json decodes any JSON number as float64.
	ts, ok := cd.(float64)
	if !ok {
		return nil, &SchemaError{Detail: "current_date invalid type"}
	}

	return &Response{Homeworks: list, CurrentDate: int64(ts)}, nil
}
