package validation

import "maps"

// Form holds the current field values and errors of one form.
type Form struct {
	initial map[string]string
	data    map[string]string
	errors  Errors
	rules   Rules
}

// NewForm snapshots initial so Reset can restore it.
func NewForm(initial map[string]string, rules Rules) *Form {
	return &Form{
		initial: maps.Clone(initial),
		data:    maps.Clone(initial),
		errors:  Errors{},
		rules:   rules,
	}
}

// Data returns a copy of the current values.
func (f *Form) Data() map[string]string {
	return maps.Clone(f.data)
}

// Value returns the current value of name.
func (f *Form) Value(name string) string {
	return f.data[name]
}

// Errors returns a copy of the current errors.
func (f *Form) Errors() Errors {
	return maps.Clone(f.errors)
}

// SetRules replaces the rule set, e.g. after a field another rule depends on
// has changed.
func (f *Form) SetRules(rules Rules) {
	f.rules = rules
}

// SetFieldValue stores value and clears any error on that field.
func (f *Form) SetFieldValue(name, value string) {
	if f.data == nil {
		f.data = map[string]string{}
	}
	f.data[name] = value
	delete(f.errors, name)
}

// SetFieldError records msg against name, e.g. a server-side rejection.
func (f *Form) SetFieldError(name, msg string) {
	if f.errors == nil {
		f.errors = Errors{}
	}
	f.errors[name] = msg
}

// ClearAllErrors drops every recorded error.
func (f *Form) ClearAllErrors() {
	f.errors = Errors{}
}

// Reset restores the initial values and clears the errors.
func (f *Form) Reset() {
	f.data = maps.Clone(f.initial)
	f.errors = Errors{}
}

// Validate runs ValidateForm over the current data and stores its errors.
func (f *Form) Validate() bool {
	res := ValidateForm(f.data, f.rules)
	f.errors = res.Errors
	return res.IsValid
}
