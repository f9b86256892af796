package runtime

import (
	"strings"
	"unicode"

	"github.com/aretw0/intake/pkg/domain"
)

// Reason explains why an answer was rejected.
type Reason string

const (
	ReasonEmpty      Reason = "empty"
	ReasonNoDigits   Reason = "no_digits"
	ReasonNotAChoice Reason = "not_a_choice"
)

// Verdict is the outcome of validating one answer.
type Verdict struct {
	Accepted bool
	// Value is the normalized answer to store when Accepted.
	Value  string
	Reason Reason
}

func accept(v string) Verdict { return Verdict{Accepted: true, Value: v} }
func reject(r Reason) Verdict { return Verdict{Reason: r} }

// Validate checks a raw answer against the field's acceptance rule.
// It is pure: no side effects, no external calls.
func Validate(field domain.Field, raw string) Verdict {
	value := strings.TrimSpace(raw)

	switch field.Rule {
	case domain.RuleDimension:
		if value == "" {
			return reject(ReasonEmpty)
		}
		if !strings.ContainsFunc(value, unicode.IsDigit) {
			return reject(ReasonNoDigits)
		}
		return accept(value)

	case domain.RuleChoice:
		for _, choice := range field.Choices {
			if value == choice {
				return accept(value)
			}
		}
		return reject(ReasonNotAChoice)

	case domain.RuleFree:
		return accept(value)

	default: // domain.RuleText
		if value == "" {
			return reject(ReasonEmpty)
		}
		return accept(value)
	}
}
