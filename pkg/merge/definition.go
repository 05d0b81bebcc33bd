package merge

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Definition is the YAML description of a merge run: which snapshot files to
// combine, the source tag for each, and where the merged snapshot goes.
type Definition struct {
	OutputPath string `yaml:"OutputPath" validate:"required"`

	Sources []SourceDefinition `yaml:"Sources" validate:"required,min=1,dive"`
}

type SourceDefinition struct {
	Path string `yaml:"Path" validate:"required"`
	Tag  string `yaml:"Tag" validate:"required"`
}

func LoadDefinition(path string) (*Definition, error) {
	definitionYaml, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var definition Definition
	if err := yaml.NewDecoder(bytes.NewReader(definitionYaml)).Decode(&definition); err != nil {
		return nil, fmt.Errorf("failed to parse merge definition %s: %w", path, err)
	}

	if err := validator.New().Struct(&definition); err != nil {
		return nil, fmt.Errorf("invalid merge definition %s: %w", path, err)
	}

	return &definition, nil
}
