package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

// Now is the clock behind the notfuture rule.
var Now = time.Now

var (
	engine     *validator.Validate
	engineOnce sync.Once
)

func instance() *validator.Validate {
	engineOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		// notfuture: an integer year no later than the current calendar year.
		_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
			return fl.Field().Int() <= int64(Now().Year())
		})
		engine = v
	})
	return engine
}

// Violation is one broken constraint on one input location.
type Violation struct {
	Field   string
	Message string
	Type    string
}

// Errors collects every violation found in one request input.
type Errors struct {
	Violations []Violation
}

func (e *Errors) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field != "" {
			parts = append(parts, v.Field+": "+v.Message)
			continue
		}
		parts = append(parts, v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fail wraps a single violation.
func Fail(field, message, typ string) *Errors {
	return &Errors{Violations: []Violation{{Field: field, Message: message, Type: typ}}}
}

// Merge joins violation sets, skipping nils. Returns nil when nothing failed.
func Merge(errs ...*Errors) *Errors {
	var out Errors
	for _, e := range errs {
		if e != nil {
			out.Violations = append(out.Violations, e.Violations...)
		}
	}
	if len(out.Violations) == 0 {
		return nil
	}
	return &out
}

// Struct checks s against its validate tags. loc prefixes every field path
// ("query", "path"); pass "" for request bodies. The result is nil or *Errors.
func Struct(loc string, s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	out := &Errors{Violations: make([]Violation, 0, len(ves))}
	for _, fe := range ves {
		out.Violations = append(out.Violations, violation(fieldPath(loc, fe), fe))
	}
	return out
}

// Normalize puts user text into Unicode NFC so equal titles compare equal.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

func fieldPath(loc string, fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	if loc == "" {
		return ns
	}
	return loc + "." + ns
}

func violation(field string, fe validator.FieldError) Violation {
	p := fe.Param()
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return Violation{field, "Field required", "missing"}
	case "min":
		if isString {
			return Violation{field, fmt.Sprintf("String should have at least %s %s", p, plural(p, "character")), "string_too_short"}
		}
		return Violation{field, "Input should be greater than or equal to " + p, "greater_than_equal"}
	case "max":
		if isString {
			return Violation{field, fmt.Sprintf("String should have at most %s %s", p, plural(p, "character")), "string_too_long"}
		}
		return Violation{field, "Input should be less than or equal to " + p, "less_than_equal"}
	case "gt":
		return Violation{field, "Input should be greater than " + p, "greater_than"}
	case "gte":
		return Violation{field, "Input should be greater than or equal to " + p, "greater_than_equal"}
	case "lt":
		return Violation{field, "Input should be less than " + p, "less_than"}
	case "lte":
		return Violation{field, "Input should be less than or equal to " + p, "less_than_equal"}
	case "notfuture":
		return Violation{field, fmt.Sprintf("Input should be less than or equal to %d", Now().Year()), "less_than_equal"}
	default:
		return Violation{field, fe.Error(), fe.Tag()}
	}
}

func plural(n, word string) string {
	if n == "1" {
		return word
	}
	return word + "s"
}
