package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// EmailPattern is the loose address check used by the sign-in and sign-up
// views.
var EmailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

var validate = validator.New()

// Tag builds a custom predicate from a go-playground/validator tag such as
// "email" or "url". msg is returned when the tag rejects the value.
func Tag(tag, msg string) CustomFunc {
	return func(value string) string {
		if err := validate.Var(value, tag); err != nil {
			return msg
		}
		return ""
	}
}

// Equals fails with msg unless value equals want.
func Equals(want, msg string) CustomFunc {
	return func(value string) string {
		if value != want {
			return msg
		}
		return ""
	}
}

// SignInRules covers the login form.
func SignInRules() Rules {
	return Rules{
		"email":    {Required: true, Pattern: EmailPattern},
		"password": {Required: true},
	}
}

// SignUpRules covers the registration form. The confirmPassword field is
// compared against password, so the rules are rebuilt per submission.
func SignUpRules(password string) Rules {
	return Rules{
		"email":           {Required: true, Pattern: EmailPattern},
		"password":        {Required: true, MinLength: 6, MaxLength: 72},
		"confirmPassword": {Required: true, Custom: Equals(password, "Passwords do not match")},
		"first_name":      {Required: true, MaxLength: 50},
		"last_name":       {Required: true, MaxLength: 50},
	}
}

// UserRules covers the admin create/edit user form.
func UserRules() Rules {
	return Rules{
		"email":      {Required: true, Custom: Tag("email", "Email is invalid")},
		"first_name": {Required: true, MaxLength: 50},
		"last_name":  {Required: true, MaxLength: 50},
		"avatar":     {Custom: Tag("url", "Avatar must be a valid URL")},
	}
}
