package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/intake/pkg/domain"
)

func TestFormatKeyboard(t *testing.T) {
	assert.Empty(t, FormatKeyboard(nil, false))

	out := FormatKeyboard([]string{"Modern", "Classic"}, false)
	assert.Equal(t, "  [1] Modern\n  [2] Classic\n", out)
}

func TestFormMarkdown(t *testing.T) {
	md := FormMarkdown(domain.DefaultForm())

	assert.Contains(t, md, "| 2 | `style` | Style | choice | Modern, Classic, Minimalist |")
	assert.Contains(t, md, "1. Enter your kitchen dimensions")
}

func TestRenderers(t *testing.T) {
	out, err := PlainRenderer("hello\n\n")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)

	out, err = NewRenderer()("**Size**: 2m")
	require.NoError(t, err)
	assert.Contains(t, out, "Size")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Equal(t, 7, strings.Count(buf.String(), "\n"))
}
