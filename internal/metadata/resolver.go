package metadata

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/vvka-141/vset/pkg/vset"
)

// Resolver produces one fully-populated ValueSet metadata record per source
// file. A Resolver is pure: the same inputs always resolve identically.
type Resolver struct {
	sideFile SideFile
	baseURL  string
}

// NewResolver creates a Resolver. sideFile may be nil when no metadata file
// is in play.
//
// Panics if baseURL is empty (programmer error - the CLI layer always
// resolves a base URL before constructing pipeline components).
func NewResolver(sideFile SideFile, baseURL string) *Resolver {
	if baseURL == "" {
		panic("baseURL cannot be empty")
	}
	return &Resolver{
		sideFile: sideFile,
		baseURL:  baseURL,
	}
}

// Resolve determines the ValueSet metadata for one CSV file.
// Every field of the returned record is populated; the pURL falls back to
// {base_url}/valuesets/{accession} when neither overrides nor the side-file
// supply one.
func (r *Resolver) Resolve(csvPath string, overrides vset.MetadataOverrides) (vset.ValueSet, error) {
	stem := fileStem(csvPath)

	accession := overrides.Accession
	if accession == "" {
		accession = stem
	}
	if accession == "" {
		return vset.ValueSet{}, &vset.ConfigurationError{
			File:    csvPath,
			Message: "cannot derive a valueset accession from the filename",
			Hint:    "pass --accession or rename the file to <accession>.csv",
		}
	}
	if !validAccession(accession) {
		return vset.ValueSet{}, &vset.ConfigurationError{
			File:    csvPath,
			Message: fmt.Sprintf("accession %q contains whitespace or path separators", accession),
			Hint:    "pass --accession or add an entry to the metadata file",
		}
	}

	// A side-file entry may be keyed by the final accession or by the
	// filename stem; the accession key wins when both exist.
	entry, ok := r.sideFile[accession]
	if !ok && stem != "" {
		entry = r.sideFile[stem]
	}

	set := vset.ValueSet{
		Accession:      accession,
		PURL:           firstNonEmpty(overrides.PURL, entry.PURL, vset.ValueSetPURL(r.baseURL, accession)),
		Definition:     firstNonEmpty(overrides.Definition, entry.Definition),
		FullDefinition: firstNonEmpty(overrides.FullDefinition, entry.FullDefinition),
	}
	return set, nil
}

// fileStem returns the base filename without its extension.
func fileStem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSpace(strings.TrimSuffix(base, ext))
}

// validAccession rejects strings that cannot serve as namespace keys:
// whitespace breaks pURLs and path separators suggest a mis-split path.
func validAccession(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || r == '/' || r == '\\' {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
