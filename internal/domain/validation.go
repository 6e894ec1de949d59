package domain

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	clockPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

	commonPasswords = map[string]struct{}{
		"password": {}, "123456": {}, "qwerty": {}, "abc123": {}, "password123": {},
	}
)

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

type LoginInput struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
}

type RegistrationInput struct {
	FirstName       string `json:"firstName" validate:"required,min=2,personname"`
	LastName        string `json:"lastName" validate:"required,min=2,personname"`
	Username        string `json:"username" validate:"required,min=3,max=20,username"`
	Email           string `json:"email" validate:"required,simple_email"`
	Password        string `json:"password" validate:"required,min=8,strong_password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (in RegistrationInput) Trimmed() RegistrationInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	return in
}

// ProfileInput is a partial profile update; nil fields are untouched.
type ProfileInput struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=2,personname"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,min=2,personname"`
	Email     *string `json:"email,omitempty" validate:"omitempty,simple_email"`
}

func (in ProfileInput) Empty() bool {
	return in.FirstName == nil && in.LastName == nil && in.Email == nil
}

// Validator wraps go-playground/validator with the event hub's custom tags.
// Date checks are relative to the injected clock, in the event time zone.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
	loc *time.Location
}

func NewValidator(now func() time.Time, loc *time.Location) *Validator {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	val := &Validator{v: validator.New(validator.WithRequiredStructEnabled()), now: now, loc: loc}

	val.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = val.v.RegisterValidation("personname", validatePersonName)
	_ = val.v.RegisterValidation("username", validateUsername)
	_ = val.v.RegisterValidation("simple_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = val.v.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
		return PasswordProblem(fl.Field().String()) == ""
	})
	_ = val.v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	_ = val.v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	_ = val.v.RegisterValidation("not_past_date", val.validateNotPastDate)

	return val
}

// Struct validates s and returns a validation *Error keyed by JSON field names.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return ErrInternal(err)
	}
	fields := make(map[string]string, len(ves))
	for _, fe := range ves {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = fieldMessage(fe)
		}
	}
	return ErrValidation("validation failed", fields)
}

func (val *Validator) Login(in LoginInput) error { return val.Struct(in) }

func (val *Validator) Registration(in RegistrationInput) error { return val.Struct(in) }

func (val *Validator) Profile(in ProfileInput) error { return val.Struct(in) }

func (val *Validator) Event(in EventInput) error { return val.Struct(in) }

// EventChange validates a merged update. An unchanged date is not held
// against today, so past events can still be edited.
func (val *Validator) EventChange(in EventInput, dateChanged bool) error {
	if !dateChanged {
		in.Date = val.now().In(val.loc).Format(DateLayout)
	}
	return val.Struct(in)
}

func (val *Validator) validateNotPastDate(fl validator.FieldLevel) bool {
	d, err := time.ParseInLocation(DateLayout, fl.Field().String(), val.loc)
	if err != nil {
		return false
	}
	now := val.now().In(val.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, val.loc)
	return !d.Before(today)
}

func validatePersonName(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || unicode.IsSpace(r)) {
			return false
		}
	}
	return s != ""
}

func validateUsername(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			return false
		}
	}
	return s != ""
}

// PasswordProblem returns the first unmet strength rule, or "" for a strong password.
func PasswordProblem(pw string) string {
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	switch {
	case len(pw) < 8:
		return "must be at least 8 characters"
	case !upper:
		return "must contain an uppercase letter"
	case !lower:
		return "must contain a lowercase letter"
	case !digit:
		return "must contain a number"
	case !special:
		return "must contain a special character"
	}
	if _, common := commonPasswords[strings.ToLower(pw)]; common {
		return "is too common"
	}
	return ""
}

func fieldMessage(fe validator.FieldError) string {
	numeric := false
	switch fe.Kind() {
	case reflect.Int, reflect.Int64, reflect.Float64, reflect.Float32:
		numeric = true
	}

	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if numeric {
			return fmt.Sprintf("must be at least %s", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if numeric {
			return fmt.Sprintf("must be at most %s", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "personname":
		return "can only contain letters and spaces"
	case "username":
		return "can only contain letters, numbers, and underscores"
	case "simple_email":
		return "must be a valid email address"
	case "strong_password":
		return PasswordProblem(fmt.Sprint(fe.Value()))
	case "eqfield":
		return "passwords do not match"
	case "hhmm":
		return "must be a valid time (HH:MM)"
	case "not_past_date":
		return "must be a valid date, not in the past"
	case "category":
		return "must be one of: " + joinCategories()
	default:
		return "is invalid"
	}
}

func joinCategories() string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// SanitizeText escapes HTML metacharacters, including '/', before text is stored.
func SanitizeText(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "/", "&#x2F;")
}
