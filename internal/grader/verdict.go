package grader

import "fmt"

// verdicts maps homework status codes to the fixed reviewer verdict text.
// The set is part of the API contract; Translate rejects anything else.
var verdicts = map[string]string{
	"approved":  "Работа проверена: ревьюеру всё понравилось. Ура!",
	"reviewing": "Работа взята на проверку ревьюером.",
	"rejected":  "Работа проверена: у ревьюера есть замечания.",
}

// KnownStatus reports whether status belongs to the verdict set.
func KnownStatus(status string) bool {
	_, ok := verdicts[status]
	return ok
}

// Translate derives the notification message for a single homework record.
func Translate(record any) (string, error) {
	m, ok := record.(map[string]any)
	if !ok {
		return "", &SchemaError{Detail: "homework record not a mapping"}
	}

	rawName, ok := m["name"]
	if !ok {
		return "", &SchemaError{Detail: "missing field name"}
	}
	name, ok := rawName.(string)
	if !ok {
		return "", &SchemaError{Detail: "name invalid type"}
	}

	rawStatus, ok := m["status"]
	if !ok {
		return "", &SchemaError{Detail: "missing field status"}
	}
	status, ok := rawStatus.(string)
	if !ok {
		return "", &SchemaError{Detail: "status invalid type"}
	}

	verdict, ok := verdicts[status]
	if !ok {
		return "", &UnknownStatusError{Status: status}
	}
	return fmt.Sprintf("Status changed for submission %q. %s", name, verdict), nil
}
