package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Form is a Unicode normalization form.
type Form string

const (
	NFC  Form = "NFC"  // Canonical composition (default canonical form).
	NFD  Form = "NFD"  // Canonical decomposition (what HFS+ stores).
	NFKC Form = "NFKC" // Compatibility composition.
	NFKD Form = "NFKD" // Compatibility decomposition.
)

// normForms maps each supported Form to its x/text implementation.
var normForms = map[Form]norm.Form{
	NFC:  norm.NFC,
	NFD:  norm.NFD,
	NFKC: norm.NFKC,
	NFKD: norm.NFKD,
}

// ParseForm accepts a form name in any letter case ("nfc", "NFD").
func ParseForm(s string) (Form, error) {
	f := Form(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := normForms[f]; !ok {
		return "", fmt.Errorf("invalid normalization form %q (use NFC, NFD, NFKC or NFKD)", s)
	}
	return f, nil
}

// Valid reports whether f is one of the supported forms.
func (f Form) Valid() bool {
	_, ok := normForms[f]
	return ok
}

// Normalize returns s in form f. Invalid forms return s unchanged.
func (f Form) Normalize(s string) string {
	nf, ok := normForms[f]
	if !ok {
		return s
	}
	return nf.String(s)
}

// NormalizeBase normalizes only the final segment of path and rejoins it
// with the parent exactly as given.
func (f Form) NormalizeBase(path string) string {
	dir, base := filepath.Split(path)
	return dir + f.Normalize(base)
}

// FormSet is the per-run normalization policy: one canonical target form and
// a priority-ordered list of alternate forms to look for. When a name has
// variants under several alternates, the earlier alternate is examined (and
// for a rename, used as the source) first.
type FormSet struct {
	Canonical  Form
	Alternates []Form
}

// DefaultFormSet returns NFC as the canonical form with NFD then NFKD as
// alternates.
func DefaultFormSet() FormSet {
	return FormSet{Canonical: NFC, Alternates: []Form{NFD, NFKD}}
}

// ParseForms parses a comma-separated, priority-ordered list of forms.
// Empty items are skipped.
func ParseForms(list string) ([]Form, error) {
	var forms []Form
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseForm(part)
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, nil
}

// ParseFormSet builds a validated FormSet from a canonical form name and a
// comma-separated list of alternates.
func ParseFormSet(canonical, alternates string) (FormSet, error) {
	c, err := ParseForm(canonical)
	if err != nil {
		return FormSet{}, err
	}
	alts, err := ParseForms(alternates)
	if err != nil {
		return FormSet{}, err
	}
	set := FormSet{Canonical: c, Alternates: alts}
	return set, set.Validate()
}

// Validate checks that every form is supported, that at least one alternate
// is configured, and that the canonical form is not also listed as an
// alternate (nor any alternate twice).
func (s FormSet) Validate() error {
	if !s.Canonical.Valid() {
		return fmt.Errorf("invalid canonical form %q", s.Canonical)
	}
	if len(s.Alternates) == 0 {
		return errors.New("at least one alternate normalization form is required")
	}
	seen := map[Form]bool{s.Canonical: true}
	for _, f := range s.Alternates {
		if !f.Valid() {
			return fmt.Errorf("invalid alternate form %q", f)
		}
		if f == s.Canonical {
			return fmt.Errorf("alternate form %s is the canonical form", f)
		}
		if seen[f] {
			return fmt.Errorf("alternate form %s listed twice", f)
		}
		seen[f] = true
	}
	return nil
}

// IsCanonical reports whether name is unchanged by canonical normalization.
func (s FormSet) IsCanonical(name string) bool {
	return s.Canonical.Normalize(name) == name
}

// CanonicalPath returns path with its final segment in the canonical form.
func (s FormSet) CanonicalPath(path string) string {
	return s.Canonical.NormalizeBase(path)
}

// AlternatePath returns path with its final segment in form f.
func (s FormSet) AlternatePath(path string, f Form) string {
	return f.NormalizeBase(path)
}

// FormOf returns the first form (canonical first, then alternates in
// priority order) under which name is already normalized, or "" when name
// is in none of them (a mixed-form name).
func (s FormSet) FormOf(name string) Form {
	if s.IsCanonical(name) {
		return s.Canonical
	}
	for _, f := range s.Alternates {
		if f.Normalize(name) == name {
			return f
		}
	}
	return ""
}

func (s FormSet) String() string {
	alts := make([]string, len(s.Alternates))
	for i, f := range s.Alternates {
		alts[i] = string(f)
	}
	return fmt.Sprintf("%s <- [%s]", s.Canonical, strings.Join(alts, ", "))
}
