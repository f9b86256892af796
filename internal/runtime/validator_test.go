package runtime

import (
	"testing"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	size := domain.Field{Name: "size", Rule: domain.RuleDimension}
	style := domain.Field{Name: "style", Rule: domain.RuleChoice, Choices: []string{"Modern", "Classic", "Minimalist"}}
	notes := domain.Field{Name: "notes", Rule: domain.RuleFree}
	name := domain.Field{Name: "name", Rule: domain.RuleText}

	tests := []struct {
		name  string
		field domain.Field
		input string
		want  Verdict
	}{
		{"dimension with digits", size, "2.5m x 2m", Verdict{Accepted: true, Value: "2.5m x 2m"}},
		{"dimension is trimmed", size, "  3x2 \n", Verdict{Accepted: true, Value: "3x2"}},
		{"dimension unicode multiply", size, "2.5m × 2.0m", Verdict{Accepted: true, Value: "2.5m × 2.0m"}},
		{"dimension empty", size, "   ", Verdict{Reason: ReasonEmpty}},
		{"dimension without digits", size, "big", Verdict{Reason: ReasonNoDigits}},
		{"choice exact", style, "Modern", Verdict{Accepted: true, Value: "Modern"}},
		{"choice trimmed", style, " Classic ", Verdict{Accepted: true, Value: "Classic"}},
		{"choice is case sensitive", style, "modern", Verdict{Reason: ReasonNotAChoice}},
		{"choice unknown", style, "Rustic", Verdict{Reason: ReasonNotAChoice}},
		{"choice empty", style, "", Verdict{Reason: ReasonNotAChoice}},
		{"free none sentinel", notes, "none", Verdict{Accepted: true, Value: "none"}},
		{"free empty", notes, "", Verdict{Accepted: true, Value: ""}},
		{"text ok", name, "Ann", Verdict{Accepted: true, Value: "Ann"}},
		{"text empty", name, " ", Verdict{Reason: ReasonEmpty}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.field, tt.input))
		})
	}
}
