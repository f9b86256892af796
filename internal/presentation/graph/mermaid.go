package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/intake/pkg/domain"
)

// GraphOverlay contains session data to visualize on the graph.
// States use the domain.Session.State naming ("idle", "collecting:size",
// "confirming").
type GraphOverlay struct {
	VisitedStates []string
	CurrentState  string
}

// GenerateMermaid produces a Mermaid flowchart of the dialogue for form.
// It applies semantic styling:
// - Idle: ((Circle))
// - Question: [/Parallelogram/]
// - Confirming: {Rhombus}
// Back edges are dotted. Overlay styles (Visited/Current) are applied if provided.
func GenerateMermaid(form *domain.Form, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	idle := sanitizeMermaidID(string(domain.PhaseIdle))
	confirming := sanitizeMermaidID(string(domain.PhaseConfirming))

	sb.WriteString(fmt.Sprintf("    %s((\"idle\"))\n", idle))
	for _, f := range form.Fields {
		label := strings.ReplaceAll(f.Caption(), "\"", "'")
		if f.Rule == domain.RuleChoice {
			label = fmt.Sprintf("%s <br/> %d options", label, len(f.Choices))
		}
		sb.WriteString(fmt.Sprintf("    %s[/\"%s\"/]\n", fieldID(f), label))
	}
	sb.WriteString(fmt.Sprintf("    %s{\"confirming\"}\n", confirming))

	first := fieldID(form.Fields[0])
	last := fieldID(form.Fields[len(form.Fields)-1])

	sb.WriteString(fmt.Sprintf("    %s -- \"start\" --> %s\n", idle, first))
	sb.WriteString(fmt.Sprintf("    %s -- \"catalog\" --> %s\n", idle, idle))
	for i := 1; i < len(form.Fields); i++ {
		prev, cur := fieldID(form.Fields[i-1]), fieldID(form.Fields[i])
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", prev, cur))
		sb.WriteString(fmt.Sprintf("    %s -. \"back\" .-> %s\n", cur, prev))
	}
	sb.WriteString(fmt.Sprintf("    %s -. \"back\" .-> %s\n", first, idle))
	sb.WriteString(fmt.Sprintf("    %s --> %s\n", last, confirming))
	sb.WriteString(fmt.Sprintf("    %s -- \"confirm\" --> %s\n", confirming, idle))
	sb.WriteString(fmt.Sprintf("    %s -- \"cancel\" --> %s\n", confirming, idle))
	sb.WriteString(fmt.Sprintf("    %s -- \"edit\" --> %s\n", confirming, first))
	sb.WriteString(fmt.Sprintf("    %s -. \"back\" .-> %s\n", confirming, last))

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, state := range overlay.VisitedStates {
			safeID := sanitizeMermaidID(state)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentState != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentState)))
		}
	}

	return sb.String()
}

func fieldID(f domain.Field) string {
	return sanitizeMermaidID(string(domain.PhaseCollecting) + ":" + f.Name)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
