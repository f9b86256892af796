package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/intake/internal/runtime"
	"github.com/aretw0/intake/pkg/domain"
)

// FormFile is the YAML layout of a form definition.
//
//	fields:
//	  - name: size
//	    label: Size
//	    prompt: What are the dimensions?
//	    rule: dimension
//	commands:
//	  start_form: ["🧩 Design my kitchen", "start"]
//	texts:
//	  thanks: Thanks!
type FormFile struct {
	Fields   []domain.Field   `yaml:"fields"`
	Commands runtime.Commands `yaml:"commands"`
	Texts    runtime.Texts    `yaml:"texts"`
}

// Definition is a loaded and validated form definition.
type Definition struct {
	Form     *domain.Form
	Commands runtime.Commands
	Texts    runtime.Texts
}

// LoadForm reads a form definition from path.
func LoadForm(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read form file: %w", err)
	}
	def, err := ParseForm(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// ParseForm decodes and validates a YAML form definition. Unset commands
// and texts keep their defaults.
func ParseForm(data []byte) (*Definition, error) {
	var file FormFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidForm, err)
	}

	form, err := domain.NewForm(file.Fields...)
	if err != nil {
		return nil, err
	}
	return &Definition{
		Form:     form,
		Commands: file.Commands.Merge(runtime.DefaultCommands()),
		Texts:    file.Texts.Merge(runtime.DefaultTexts()),
	}, nil
}
