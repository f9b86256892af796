package domain

import (
	"fmt"
	"strings"
)

// Rule names the acceptance rule applied to a field's answer.
type Rule string

const (
	// RuleDimension accepts any non-empty text containing at least one digit.
	RuleDimension Rule = "dimension"
	// RuleChoice accepts only an exact match of one of the field's choices.
	RuleChoice Rule = "choice"
	// RuleText accepts any non-empty text.
	RuleText Rule = "text"
	// RuleFree accepts anything, including the empty string.
	RuleFree Rule = "free"
)

// Field is a single question of the form.
type Field struct {
	// Name is the stable key used for answers and ledger columns.
	Name string `json:"name" yaml:"name"`
	// Label is the short caption used in summaries and notifications.
	Label string `json:"label" yaml:"label"`
	// Prompt is the question sent to the user.
	Prompt string `json:"prompt" yaml:"prompt"`
	// Rule selects the validator.
	Rule Rule `json:"rule" yaml:"rule"`
	// Choices is the fixed option set for RuleChoice fields. For other rules
	// it is advisory (rendered as quick replies only).
	Choices []string `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// Caption returns Label, falling back to Name.
func (f Field) Caption() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Form is the ordered, immutable list of questions.
type Form struct {
	Fields []Field
	index  map[string]int
}

// NewForm validates the field list and builds a Form.
func NewForm(fields ...Field) (*Form, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields", ErrInvalidForm)
	}

	f := &Form{
		Fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: field #%d has no name", ErrInvalidForm, i+1)
		}
		if _, dup := f.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidForm, name)
		}
		if strings.TrimSpace(field.Prompt) == "" {
			return nil, fmt.Errorf("%w: field %q has no prompt", ErrInvalidForm, name)
		}
		switch field.Rule {
		case RuleChoice:
			if len(field.Choices) == 0 {
				return nil, fmt.Errorf("%w: choice field %q has no choices", ErrInvalidForm, name)
			}
		case RuleDimension, RuleText, RuleFree:
		case "":
			field.Rule = RuleText
		default:
			return nil, fmt.Errorf("%w: field %q has unknown rule %q", ErrInvalidForm, name, field.Rule)
		}

		field.Name = name
		field.Choices = append([]string(nil), field.Choices...)
		f.Fields[i] = field
		f.index[name] = i
	}
	return f, nil
}

// MustForm is like NewForm but panics on error. Intended for static forms.
func MustForm(fields ...Field) *Form {
	f, err := NewForm(fields...)
	if err != nil {
		panic(err)
	}
	return f
}

// Len returns the number of fields.
func (f *Form) Len() int {
	return len(f.Fields)
}

// At returns the field at position i.
func (f *Form) At(i int) (Field, bool) {
	if i < 0 || i >= len(f.Fields) {
		return Field{}, false
	}
	return f.Fields[i], true
}

// IndexOf returns the position of the named field, or -1.
func (f *Form) IndexOf(name string) int {
	if i, ok := f.index[name]; ok {
		return i
	}
	return -1
}

// Names returns the field names in order.
func (f *Form) Names() []string {
	names := make([]string, len(f.Fields))
	for i, field := range f.Fields {
		names[i] = field.Name
	}
	return names
}

// Ordered returns the answers as a slice following the form order.
// Unanswered fields are omitted.
func (f *Form) Ordered(answers Answers) []Answer {
	out := make([]Answer, 0, len(f.Fields))
	for _, field := range f.Fields {
		if v, ok := answers[field.Name]; ok {
			out = append(out, Answer{Field: field.Name, Label: field.Caption(), Value: v})
		}
	}
	return out
}

// DefaultForm returns the built-in kitchen intake questionnaire.
func DefaultForm() *Form {
	return MustForm(
		Field{
			Name:   "size",
			Label:  "Size",
			Prompt: "Enter your kitchen dimensions (e.g. 2.5m x 2.0m):",
			Rule:   RuleDimension,
		},
		Field{
			Name:    "style",
			Label:   "Style",
			Prompt:  "Choose a kitchen style:",
			Rule:    RuleChoice,
			Choices: []string{"Modern", "Classic", "Minimalist"},
		},
		Field{
			Name:    "material",
			Label:   "Material",
			Prompt:  "Choose a facade material:",
			Rule:    RuleChoice,
			Choices: []string{"MDF", "Chipboard", "Solid wood", "Not sure"},
		},
		Field{
			Name:    "notes",
			Label:   "Wishes",
			Prompt:  "Any ideas, wishes or references? Send \"none\" if not.",
			Rule:    RuleFree,
			Choices: []string{"none"},
		},
	)
}
