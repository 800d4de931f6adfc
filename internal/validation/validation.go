// Package validation checks flat form input against declarative schemas and
// reports failures per field.
package validation

import (
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
)

// Values is satisfied by url.Values and by echo's form accessors.
type Values interface {
	Get(key string) string
}

// Map adapts a plain map to Values.
type Map map[string]string

func (m Map) Get(key string) string { return m[key] }

// Rule returns a message when value violates it and "" otherwise.
type Rule func(value string) string

type Field struct {
	Name  string
	Rules []Rule
}

func F(name string, rules ...Rule) Field {
	return Field{Name: name, Rules: rules}
}

type Schema struct {
	fields []Field
}

func Object(fields ...Field) *Schema {
	return &Schema{fields: fields}
}

// Fields returns the field names in declaration order.
func (s *Schema) Fields() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Validate returns the first failing message of every invalid field, or nil.
func (s *Schema) Validate(in Values) domain.FieldErrors {
	var errs domain.FieldErrors
	for _, f := range s.fields {
		v := in.Get(f.Name)
		for _, rule := range f.Rules {
			if msg := rule(v); msg != "" {
				if errs == nil {
					errs = make(domain.FieldErrors)
				}
				errs[f.Name] = msg
				break
			}
		}
	}
	return errs
}

func MinLength(n int, msg string) Rule {
	return func(v string) string {
		if utf8.RuneCountInString(v) < n {
			return msg
		}
		return ""
	}
}

func Required(msg string) Rule {
	return MinLength(1, msg)
}

func Length(n int, msg string) Rule {
	return func(v string) string {
		if utf8.RuneCountInString(v) != n {
			return msg
		}
		return ""
	}
}

func Matches(re *regexp.Regexp, msg string) Rule {
	return func(v string) string {
		if !re.MatchString(v) {
			return msg
		}
		return ""
	}
}

// PositiveInt accepts base-10 integers greater than zero. An unselected
// select submits "" or "0" and fails with the same message.
func PositiveInt(msg string) Rule {
	return func(v string) string {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return msg
		}
		return ""
	}
}

// OrEmpty lets the empty string through and applies rules to anything else.
func OrEmpty(rules ...Rule) Rule {
	return func(v string) string {
		if v == "" {
			return ""
		}
		for _, r := range rules {
			if msg := r(v); msg != "" {
				return msg
			}
		}
		return ""
	}
}

// Int converts a value already checked by PositiveInt.
func Int(in Values, name string) int {
	n, _ := strconv.Atoi(in.Get(name))
	return n
}
