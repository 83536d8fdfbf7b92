// Package validation evaluates ordered rule sets over request fields and
// aggregates every failure into a field -> messages map.
package validation

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// Errors maps a field name to the messages of every rule that field failed.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e[field], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Validator collects failures across all fields; no rule short-circuits another.
type Validator struct {
	errors Errors
}

func New() *Validator {
	return &Validator{errors: Errors{}}
}

// Errors returns nil when every rule passed
func (v *Validator) Errors() Errors {
	if len(v.errors) == 0 {
		return nil
	}
	return v.errors
}

func (v *Validator) String(field, value string) *StringRules {
	return &StringRules{v: v, field: field, value: value, active: true}
}

func (v *Validator) Time(field string, value *time.Time) *TimeRules {
	return &TimeRules{v: v, field: field, value: value, active: value != nil}
}

type StringRules struct {
	v      *Validator
	field  string
	value  string
	active bool
}

// When disables the remaining rules of the chain unless cond holds
func (r *StringRules) When(cond bool) *StringRules {
	r.active = r.active && cond
	return r
}

func (r *StringRules) Must(ok func(string) bool, message string) *StringRules {
	if r.active && !ok(r.value) {
		r.v.errors.Add(r.field, message)
	}
	return r
}

func (r *StringRules) NotEmpty(message string) *StringRules {
	return r.Must(func(s string) bool { return strings.TrimSpace(s) != "" }, message)
}

func (r *StringRules) MaxLength(n int, message string) *StringRules {
	return r.Must(func(s string) bool { return utf8.RuneCountInString(s) <= n }, message)
}

// MinLength ignores empty values, which NotEmpty reports
func (r *StringRules) MinLength(n int, message string) *StringRules {
	return r.Must(func(s string) bool { return s == "" || utf8.RuneCountInString(s) >= n }, message)
}

func (r *StringRules) Matches(re *regexp.Regexp, message string) *StringRules {
	return r.Must(func(s string) bool { return s == "" || re.MatchString(s) }, message)
}

func (r *StringRules) Email(message string) *StringRules {
	return r.Must(func(s string) bool { return s == "" || IsEmail(s) }, message)
}

func (r *StringRules) HTTPURL(message string) *StringRules {
	return r.Must(IsHTTPURL, message)
}

type TimeRules struct {
	v      *Validator
	field  string
	value  *time.Time
	active bool
}

func (r *TimeRules) NotAfter(limit time.Time, message string) *TimeRules {
	if r.active && r.value.After(limit) {
		r.v.errors.Add(r.field, message)
	}
	return r
}

// IsHTTPURL reports whether value parses as an absolute http or https URL with a host
func IsHTTPURL(value string) bool {
	u, err := url.Parse(value)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// IsEmail accepts a single '@' with text on both sides
func IsEmail(value string) bool {
	at := strings.Index(value, "@")
	return at > 0 && at == strings.LastIndex(value, "@") && at < len(value)-1
}
