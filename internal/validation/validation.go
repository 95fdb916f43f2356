// Package validation runs ordered field-level rules over submitted form data.
// Every rule is evaluated, never short-circuited, so a form can display all
// violations at once.
package validation

import (
	"github.com/go-playground/validator/v10"
)

// Check names a supported rule kind.
type Check string

const (
	Required    Check = "required"
	Email       Check = "email"
	EqualsField Check = "eqfield"
)

// Rule binds one check to one field with the message shown on violation.
type Rule struct {
	Field   string
	Check   Check
	Other   string // comparison field for EqualsField
	Message string
}

// FieldError is one violated rule.
type FieldError struct {
	Field   string
	Message string
}

// Result is the ordered list of violations; empty means pass.
type Result []FieldError

// OK reports whether validation passed.
func (r Result) OK() bool {
	return len(r) == 0
}

// Pipeline evaluates rule sets against submitted fields.
type Pipeline struct {
	validate *validator.Validate
}

// New creates a pipeline.
func New() *Pipeline {
	return &Pipeline{validate: validator.New()}
}

// Run evaluates every rule against fields and collects the violations in
// rule declaration order.
func (p *Pipeline) Run(fields map[string]string, rules []Rule) Result {
	var result Result
	for _, rule := range rules {
		value := fields[rule.Field]
		var err error
		switch rule.Check {
		case EqualsField:
			err = p.validate.VarWithValue(value, fields[rule.Other], string(EqualsField))
		default:
			err = p.validate.Var(value, string(rule.Check))
		}
		if err != nil {
			result = append(result, FieldError{Field: rule.Field, Message: rule.Message})
		}
	}
	return result
}
