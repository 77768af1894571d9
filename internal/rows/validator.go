package rows

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/vvka-141/vset/pkg/vset"
)

// Validator turns validated records into terms for one ValueSet.
// A Validator is pure: no I/O, no state beyond its construction context.
type Validator struct {
	valueset string
	baseURL  string
}

// NewValidator creates a Validator for one resolved ValueSet.
//
// Panics if valueset or baseURL is empty (programmer error - the resolver
// always runs first and supplies both).
func NewValidator(valueset, baseURL string) *Validator {
	if valueset == "" {
		panic("valueset cannot be empty")
	}
	if baseURL == "" {
		panic("baseURL cannot be empty")
	}
	return &Validator{
		valueset: valueset,
		baseURL:  baseURL,
	}
}

// ValidateAll validates every record of the file in order.
// All failing rows are reported, joined into one error, so a file with
// several bad rows surfaces every diagnostic at once. The returned terms
// are complete only when the error is nil.
func (v *Validator) ValidateAll(f *File) ([]vset.Term, error) {
	var (
		terms []vset.Term
		errs  []error
		seen  = make(map[string]int)
	)

	for _, rec := range f.Records() {
		term, err := v.ValidateRow(f, rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if first, dup := seen[term.Accession]; dup {
			errs = append(errs, &vset.SchemaError{
				File:    f.Path,
				Row:     rec.Line,
				Column:  "accession",
				Message: fmt.Sprintf("duplicate accession %q (first used on row %d)", term.Accession, first),
			})
			continue
		}
		seen[term.Accession] = rec.Line
		terms = append(terms, term)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return terms, nil
}

// ValidateRow validates one record into a term.
func (v *Validator) ValidateRow(f *File, rec Record) (vset.Term, error) {
	for _, col := range RequiredColumns {
		if f.Value(rec, col) == "" {
			return vset.Term{}, &vset.SchemaError{
				File:    f.Path,
				Row:     rec.Line,
				Column:  col,
				Message: "missing required value",
			}
		}
	}

	accession := f.Value(rec, "accession")

	identical, err := v.stringArray(f, rec, ColIdenticalTerms)
	if err != nil {
		return vset.Term{}, err
	}
	similar, err := v.stringArray(f, rec, ColSimilarTerms)
	if err != nil {
		return vset.Term{}, err
	}
	deprecatedTo, err := v.stringArray(f, rec, ColDeprecatedTo)
	if err != nil {
		return vset.Term{}, err
	}
	additional, err := v.object(f, rec, ColAdditional)
	if err != nil {
		return vset.Term{}, err
	}
	deprecated, err := v.boolean(f, rec, ColDeprecated)
	if err != nil {
		return vset.Term{}, err
	}

	// A malformed pURL is not an error: the cell is ignored and the
	// identifier derived instead.
	purl := f.Value(rec, ColPURL)
	if !wellFormedURL(purl) {
		purl = vset.TermPURL(v.baseURL, accession)
	}

	return vset.Term{
		Accession:      accession,
		ValueSet:       v.valueset,
		PURL:           purl,
		Label:          f.Value(rec, "label"),
		Value:          f.Value(rec, "value"),
		Definition:     f.Value(rec, "definition"),
		FullDefinition: f.Value(rec, "full_definition"),
		IdenticalTerms: identical,
		SimilarTerms:   similar,
		Deprecated:     deprecated,
		DeprecatedTo:   deprecatedTo,
		Additional:     additional,
	}, nil
}

// stringArray parses a cell holding a JSON array of strings.
// Blank cells yield an empty slice.
func (v *Validator) stringArray(f *File, rec Record, column string) ([]string, error) {
	raw := f.Value(rec, column)
	if raw == "" {
		return []string{}, nil
	}

	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &vset.SchemaError{
			File:    f.Path,
			Row:     rec.Line,
			Column:  column,
			Message: fmt.Sprintf("invalid JSON array of strings: %v", err),
		}
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// object parses a cell holding a JSON object.
// Blank cells yield an empty map.
func (v *Validator) object(f *File, rec Record, column string) (map[string]any, error) {
	raw := f.Value(rec, column)
	if raw == "" {
		return map[string]any{}, nil
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &vset.SchemaError{
			File:    f.Path,
			Row:     rec.Line,
			Column:  column,
			Message: fmt.Sprintf("invalid JSON object: %v", err),
		}
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// boolean parses the deprecated cell: true/false/1/0, case-insensitive,
// blank meaning false. Anything else is a SchemaError.
func (v *Validator) boolean(f *File, rec Record, column string) (bool, error) {
	raw := f.Value(rec, column)
	switch strings.ToLower(raw) {
	case "", "false", "0":
		return false, nil
	case "true", "1":
		return true, nil
	default:
		return false, &vset.SchemaError{
			File:    f.Path,
			Row:     rec.Line,
			Column:  column,
			Message: fmt.Sprintf("invalid boolean %q: must be true, false, 1, 0 or blank", raw),
		}
	}
}

// wellFormedURL reports whether s is an absolute URL with scheme and host.
func wellFormedURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}
