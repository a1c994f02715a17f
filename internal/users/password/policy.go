// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package password implements the password complexity policy.

Every rule is evaluated independently and all violations are reported
together, so a user sees the full list of problems in a single round trip.

Rules:

  - Complexity: at least one ASCII uppercase letter, one ASCII lowercase
    letter and one special character, no space, ASCII only.
  - Length: a separate, composable bound counted in Unicode code points.

The package is pure. It holds no state and performs no I/O.
*/
package password

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
)

// SpecialCharacters is the accepted set for the special-character rule.
const SpecialCharacters = `!@#$%^&*()_+-=[]{}|;:,.<>?`

// Field is the payload field violations are reported against.
const Field = "password"

// # Violations

// Violation identifies a single failed rule.
type Violation struct {
	// Code is a stable machine identifier such as "missing_uppercase".
	Code string
	// Message is the human-readable description.
	Message string
}

// Complexity violations. Length violations are built by [Length] since their
// message carries the configured bound.
var (
	MissingUppercase = Violation{Code: "missing_uppercase", Message: "Password must contain at least one uppercase letter"}
	MissingLowercase = Violation{Code: "missing_lowercase", Message: "Password must contain at least one lowercase letter"}
	MissingSpecial   = Violation{Code: "missing_special", Message: "Password must contain at least one special character (" + SpecialCharacters + ")"}
	ContainsSpace    = Violation{Code: "contains_space", Message: "Password must not contain spaces"}
	NonASCII         = Violation{Code: "non_ascii", Message: "Password must contain only ASCII characters"}
)

// Length violation codes.
const (
	CodeTooShort = "too_short"
	CodeTooLong  = "too_long"
)

// FieldError projects the violation into the platform error taxonomy.
func (violation Violation) FieldError() apperr.FieldError {
	return apperr.FieldError{Field: Field, Code: violation.Code, Message: violation.Message}
}

// # Rules

// Rule checks one aspect of a candidate password.
type Rule func(candidate string) []Violation

// Complexity returns the five character-class rules as a single [Rule].
func Complexity() Rule {
	return func(candidate string) []Violation {
		var (
			hasUpper, hasLower, hasSpecial bool
			hasSpace, hasNonASCII          bool
		)

		for _, character := range candidate {
			switch {
			case character > 127:
				hasNonASCII = true
			case character >= 'A' && character <= 'Z':
				hasUpper = true
			case character >= 'a' && character <= 'z':
				hasLower = true
			case character == ' ':
				hasSpace = true
			case strings.ContainsRune(SpecialCharacters, character):
				hasSpecial = true
			}
		}

		var violations []Violation
		if !hasUpper {
			violations = append(violations, MissingUppercase)
		}
		if !hasLower {
			violations = append(violations, MissingLowercase)
		}
		if !hasSpecial {
			violations = append(violations, MissingSpecial)
		}
		if hasSpace {
			violations = append(violations, ContainsSpace)
		}
		if hasNonASCII {
			violations = append(violations, NonASCII)
		}
		return violations
	}
}

// Length bounds the candidate to [min, max] code points. A max of zero
// leaves the upper bound open.
func Length(min, max int) Rule {
	return func(candidate string) []Violation {
		count := utf8.RuneCountInString(candidate)
		switch {
		case count < min:
			return []Violation{{
				Code:    CodeTooShort,
				Message: fmt.Sprintf("Password must be at least %d characters long", min),
			}}
		case max > 0 && count > max:
			return []Violation{{
				Code:    CodeTooLong,
				Message: fmt.Sprintf("Password must be at most %d characters long", max),
			}}
		}
		return nil
	}
}

// # Policy

// Policy is an ordered composition of rules.
type Policy struct {
	rules []Rule
}

// NewPolicy composes rules. Violations are reported in rule order.
func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: rules}
}

// DefaultPolicy is complexity plus an 8 to 20 character length bound.
func DefaultPolicy() *Policy {
	return NewPolicy(Complexity(), Length(8, 20))
}

// Validate runs every rule and returns all violations, or nil when the
// candidate is acceptable.
func (policy *Policy) Validate(candidate string) []Violation {
	var violations []Violation
	for _, rule := range policy.rules {
		violations = append(violations, rule(candidate)...)
	}
	return violations
}

// Validate checks candidate against the complexity rules only.
func Validate(candidate string) []Violation {
	return Complexity()(candidate)
}

// FieldErrors converts violations for inclusion in a validation error.
func FieldErrors(violations []Violation) []apperr.FieldError {
	details := make([]apperr.FieldError, 0, len(violations))
	for _, violation := range violations {
		details = append(details, violation.FieldError())
	}
	return details
}
