package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/intake/internal/config"
	"github.com/aretw0/intake/internal/runtime"
	"github.com/aretw0/intake/pkg/domain"
)

const kitchen = `
fields:
  - name: size
    label: Size
    prompt: What are the dimensions of your kitchen?
    rule: dimension
  - name: shape
    label: Shape
    prompt: Which layout?
    rule: choice
    choices: [Straight, L-shaped, U-shaped]
commands:
  start_form: ["Start", "go"]
texts:
  thanks: Merci!
`

func TestParseForm(t *testing.T) {
	def, err := config.ParseForm([]byte(kitchen))
	require.NoError(t, err)

	assert.Equal(t, []string{"size", "shape"}, def.Form.Names())
	assert.Equal(t, domain.RuleChoice, def.Form.Fields[1].Rule)
	assert.Equal(t, []string{"Start", "go"}, def.Commands.StartForm)
	assert.Equal(t, runtime.DefaultCommands().Back, def.Commands.Back)
	assert.Equal(t, "Merci!", def.Texts.Thanks)
	assert.Equal(t, runtime.DefaultTexts().Welcome, def.Texts.Welcome)
}

func TestParseForm_Invalid(t *testing.T) {
	tests := map[string]string{
		"not yaml":       "fields: [",
		"no fields":      "fields: []",
		"choice no opts": "fields:\n  - name: x\n    prompt: x?\n    rule: choice\n",
		"duplicate":      "fields:\n  - {name: a, prompt: a, rule: text}\n  - {name: a, prompt: b, rule: text}\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.ParseForm([]byte(doc))
			assert.ErrorIs(t, err, domain.ErrInvalidForm)
		})
	}
}

func TestLoadForm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.yaml")
	require.NoError(t, os.WriteFile(path, []byte(kitchen), 0o600))

	def, err := config.LoadForm(path)
	require.NoError(t, err)
	assert.Len(t, def.Form.Fields, 2)

	_, err = config.LoadForm(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExampleKitchenForm(t *testing.T) {
	def, err := config.LoadForm(filepath.Join("..", "..", "examples", "forms", "kitchen.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"size", "shape", "style", "material", "notes"}, def.Form.Names())
}
