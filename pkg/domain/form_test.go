package domain_test

import (
	"testing"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewForm_Validation(t *testing.T) {
	tests := []struct {
		name   string
		fields []domain.Field
	}{
		{"No Fields", nil},
		{"Missing Name", []domain.Field{{Prompt: "?"}}},
		{"Missing Prompt", []domain.Field{{Name: "size"}}},
		{"Duplicate Name", []domain.Field{{Name: "a", Prompt: "?"}, {Name: "a", Prompt: "?"}}},
		{"Choice Without Choices", []domain.Field{{Name: "style", Prompt: "?", Rule: domain.RuleChoice}}},
		{"Unknown Rule", []domain.Field{{Name: "x", Prompt: "?", Rule: "regex"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewForm(tt.fields...)
			assert.ErrorIs(t, err, domain.ErrInvalidForm)
		})
	}
}

func TestNewForm_DefaultsRuleToText(t *testing.T) {
	form, err := domain.NewForm(domain.Field{Name: " city ", Prompt: "Where?"})
	require.NoError(t, err)

	f, ok := form.At(0)
	require.True(t, ok)
	assert.Equal(t, "city", f.Name)
	assert.Equal(t, domain.RuleText, f.Rule)
	assert.Equal(t, "city", f.Caption())
}

func TestForm_Ordered(t *testing.T) {
	form := domain.DefaultForm()
	answers := domain.Answers{
		"notes": "none",
		"size":  "3m x 2m",
		"style": "Modern",
	}

	ordered := form.Ordered(answers)
	require.Len(t, ordered, 3)
	assert.Equal(t, "size", ordered[0].Field)
	assert.Equal(t, "style", ordered[1].Field)
	assert.Equal(t, "notes", ordered[2].Field)
	assert.Equal(t, []string{"size", "style", "material", "notes"}, form.Names())
	assert.Equal(t, 2, form.IndexOf("material"))
	assert.Equal(t, -1, form.IndexOf("shape"))
}

func TestSession_State(t *testing.T) {
	form := domain.DefaultForm()
	var nilSession *domain.Session
	assert.Equal(t, "idle", nilSession.State(form))

	s := &domain.Session{Phase: domain.PhaseCollecting, Step: 1}
	assert.Equal(t, "collecting:style", s.State(form))

	s.Phase = domain.PhaseConfirming
	assert.Equal(t, "confirming", s.State(form))
}

func TestSession_SnapshotIsIndependent(t *testing.T) {
	s := &domain.Session{Key: "42", Answers: domain.Answers{"size": "2m"}}
	cp := s.Snapshot()
	cp.Answers["size"] = "3m"
	assert.Equal(t, "2m", s.Answers["size"])
}
