package metadata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/vset/pkg/vset"
)

// Entry is one side-file record. All fields are optional; absent fields
// fall through to the next precedence layer.
type Entry struct {
	Definition     string `yaml:"definition"`
	FullDefinition string `yaml:"full_definition"`
	PURL           string `yaml:"purl"`
}

// SideFile maps ValueSet accessions (or filename stems) to metadata entries.
//
// Example document:
//
//	appris:
//	  definition: APPRIS principal isoform annotation
//	  full_definition: >
//	    Annotation of principal and alternative splice isoforms.
//	  purl: https://w3id.org/vocab/valuesets/appris
type SideFile map[string]Entry

// LoadSideFile reads and parses a YAML metadata side-file.
// The path must exist; probing for the default file is the caller's job.
func LoadSideFile(path string) (SideFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file %s: %w", path, err)
	}

	var sf SideFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("invalid metadata file %s (%v): %w", path, err, vset.ErrInvalidConfig)
	}
	return sf, nil
}
