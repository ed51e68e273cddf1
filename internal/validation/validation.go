// Package validation evaluates per-field form rules. Rules are supplied by
// the caller and hold no state; Form adds the mutable data/errors pair a
// sign-in or sign-up view keeps between keystrokes.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// CustomFunc returns a message when value is invalid, or "" when it passes.
type CustomFunc func(value string) string

// Rule is the constraint set for a single field. Zero values are unset.
type Rule struct {
	Required  bool
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	Custom    CustomFunc
}

// Rules maps field name to its rule.
type Rules map[string]Rule

// Errors maps field name to a human-readable message. A missing key means
// the field is valid.
type Errors map[string]string

// Result is the outcome of ValidateForm.
type Result struct {
	IsValid bool
	Errors  Errors
}

// Error wraps a non-empty Errors set for callers that want an error value.
type Error struct {
	Fields []string
	Err    error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrInvalidForm is wrapped by every *Error.
var ErrInvalidForm = errors.New("invalid form")

// Err returns nil when errs is empty, otherwise an *Error listing the failed
// fields in name order.
func (errs Errors) Err() error {
	if len(errs) == 0 {
		return nil
	}
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, errs[f])
	}
	return &Error{
		Fields: fields,
		Err:    fmt.Errorf("%w: %s", ErrInvalidForm, strings.Join(msgs, "; ")),
	}
}

// Label upper-cases the first character of a field name.
func Label(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return strings.ToUpper(string(r)) + name[size:]
}

// ValidateField evaluates rule against value. The first failing check wins:
// required, then min length, max length, pattern and finally the custom
// predicate. An empty value that is not required always passes.
func ValidateField(name, value string, rule Rule) string {
	trimmed := strings.TrimSpace(value)
	if rule.Required && trimmed == "" {
		return Label(name) + " is required"
	}
	if trimmed == "" {
		return ""
	}
	if rule.MinLength > 0 && utf8.RuneCountInString(trimmed) < rule.MinLength {
		return fmt.Sprintf("%s must be at least %d characters", Label(name), rule.MinLength)
	}
	if rule.MaxLength > 0 && utf8.RuneCountInString(value) > rule.MaxLength {
		return fmt.Sprintf("%s must be no more than %d characters", Label(name), rule.MaxLength)
	}
	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		return Label(name) + " is invalid"
	}
	if rule.Custom != nil {
		return rule.Custom(value)
	}
	return ""
}

// ValidateForm evaluates every rule against data, never stopping at the
// first failing field. Fields missing from data validate as "".
func ValidateForm(data map[string]string, rules Rules) Result {
	res := Result{IsValid: true, Errors: Errors{}}
	for name, rule := range rules {
		if msg := ValidateField(name, data[name], rule); msg != "" {
			res.Errors[name] = msg
			res.IsValid = false
		}
	}
	return res
}
