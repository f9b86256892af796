package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/intake/internal/presentation/graph"
	"github.com/aretw0/intake/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(domain.DefaultForm(), nil)

	for _, want := range []string{
		"graph TD",
		`idle(("idle"))`,
		`collecting_size[/"Size"/]`,
		`collecting_style[/"Style <br/> 3 options"/]`,
		`confirming{"confirming"}`,
		`idle -- "start" --> collecting_size`,
		"collecting_size --> collecting_style",
		`collecting_style -. "back" .-> collecting_size`,
		`collecting_size -. "back" .-> idle`,
		"collecting_notes --> confirming",
		`confirming -- "edit" --> collecting_size`,
		`confirming -. "back" .-> collecting_notes`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out := graph.GenerateMermaid(domain.DefaultForm(), &graph.GraphOverlay{
		VisitedStates: []string{"idle", "collecting:size", "collecting:size"},
		CurrentState:  "collecting:style",
	})

	assert.Equal(t, 1, strings.Count(out, "class collecting_size visited;"))
	assert.Contains(t, out, "class idle visited;")
	assert.Contains(t, out, "class collecting_style current;")
}
