package sqlgen

import "strings"

// Condition represents a single WHERE condition.
type Condition struct {
	Field    string
	Operator string
	Value    interface{}
	// Connector joins this condition to the previous one ("AND" or
	// "OR"). Ignored on the first condition.
	Connector string
}

// OrderBy represents an ORDER BY clause.
type OrderBy struct {
	Field     string
	Direction string // "ASC" or "DESC"
}

// allowedOperators is the fixed operator whitelist. Anything else is
// rejected as a ValidationError before SQL is generated.
var allowedOperators = map[string]bool{
	"=":        true,
	"!=":       true,
	"<>":       true,
	"<":        true,
	">":        true,
	"<=":       true,
	">=":       true,
	"LIKE":     true,
	"NOT LIKE": true,
	"IN":       true,
	"NOT IN":   true,
	"IS":       true,
	"IS NOT":   true,
}

// ValidateOperator checks an operator against the whitelist. The
// returned operator is upper-cased and trimmed.
func ValidateOperator(operator string) (string, error) {
	op := strings.ToUpper(strings.TrimSpace(operator))
	if !allowedOperators[op] {
		return "", &ValidationError{Field: operator, Reason: "operator not allowed"}
	}
	return op, nil
}
