package routing

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/lfmotta/cargobot/core"
	"github.com/lfmotta/cargobot/logging"
)

var ufTokens = map[string]bool{
	"ac": true, "al": true, "ap": true, "am": true, "ba": true, "ce": true,
	"df": true, "es": true, "go": true, "ma": true, "mt": true, "ms": true,
	"mg": true, "pa": true, "pb": true, "pr": true, "pe": true, "pi": true,
	"rj": true, "rn": true, "rs": true, "ro": true, "rr": true, "sc": true,
	"sp": true, "se": true, "to": true,
}

var (
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	whitespace  = regexp.MustCompile(`\s+`)
	nonDigits   = regexp.MustCompile(`\D`)
	cepPattern  = regexp.MustCompile(`\b\d{5}-?\d{3}\b`)

	stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// ExtractPostalCode pulls the first CEP-shaped token out of free text.
// Returns the empty string when the text carries none.
func ExtractPostalCode(text string) string {
	return cepPattern.FindString(text)
}

// Normalize lowercases text and strips diacritics and punctuation so city
// names compare reliably ("São Paulo / SP" == "sao paulo sp").
func Normalize(text string) string {
	out, _, err := transform.String(stripAccents, text)
	if err != nil {
		out = text
	}
	out = strings.ToLower(out)
	out = punctuation.ReplaceAllString(out, " ")
	out = whitespace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// stripUF drops state abbreviation tokens from normalized text.
func stripUF(normText string) string {
	tokens := strings.Fields(normText)
	kept := tokens[:0]
	for _, t := range tokens {
		if !ufTokens[t] {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}

func cityKey(text string) string {
	return stripUF(Normalize(text))
}

// ResolverOptions configure a Resolver.
type ResolverOptions struct {
	Logger logging.Logger
}

// Resolver matches customers to branches. It implements core.BranchResolver.
type Resolver struct {
	branches []core.Branch
	logger   logging.Logger
}

// NewResolver creates a Resolver over a static branch list.
func NewResolver(branches []core.Branch, optFns ...func(o *ResolverOptions)) *Resolver {
	opts := ResolverOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Resolver{branches: branches, logger: core.EnsureLogger(opts.Logger)}
}

// NewResolverFromFile loads the branch list from a JSON file.
func NewResolverFromFile(path string, optFns ...func(o *ResolverOptions)) (*Resolver, error) {
	branches, err := LoadBranches(path)
	if err != nil {
		return nil, err
	}
	return NewResolver(branches, optFns...), nil
}

// LoadBranches reads a JSON array of branches from disk.
func LoadBranches(path string) ([]core.Branch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read branches file: %w", err)
	}
	var branches []core.Branch
	if err := json.Unmarshal(raw, &branches); err != nil {
		return nil, fmt.Errorf("parse branches file %s: %w", path, err)
	}
	return branches, nil
}

// Branches returns the configured branch list.
func (r *Resolver) Branches() []core.Branch {
	return r.branches
}

// ByName matches a branch by its configured name, ignoring case and
// accents. Profiles store the branch name, so this is the reverse lookup
// for customers already routed once.
func (r *Resolver) ByName(name string) *core.Branch {
	key := Normalize(name)
	if key == "" {
		return nil
	}
	for i := range r.branches {
		if Normalize(r.branches[i].Name) == key {
			return &r.branches[i]
		}
	}
	return nil
}

// ByPostalCode matches the first three digits of a postal code against each
// branch's prefix list. Returns nil when no branch covers the prefix.
func (r *Resolver) ByPostalCode(code string) *core.Branch {
	digits := nonDigits.ReplaceAllString(code, "")
	if len(digits) < 3 {
		return nil
	}
	prefix := digits[:3]
	for i := range r.branches {
		for _, p := range r.branches[i].CEPPrefixes {
			if p == prefix {
				return &r.branches[i]
			}
		}
	}
	return nil
}

// ByCityText matches free-form text against branch cities. Exact matches on
// the branch seat or a served city win; otherwise a served city contained in
// the phrase matches.
func (r *Resolver) ByCityText(text string) *core.Branch {
	key := cityKey(text)
	if key == "" {
		return nil
	}

	for i := range r.branches {
		b := &r.branches[i]
		if cityKey(b.City) == key {
			return b
		}
		for _, c := range b.Cities {
			if cityKey(c) == key {
				return b
			}
		}
	}

	for i := range r.branches {
		b := &r.branches[i]
		for _, c := range append([]string{b.City}, b.Cities...) {
			ck := cityKey(c)
			if ck != "" && strings.Contains(key, ck) {
				return b
			}
		}
	}
	return nil
}

// Resolve picks the best branch for a customer. A valid postal code takes
// priority over city text.
func (r *Resolver) Resolve(cityText, postalCode string) *core.Branch {
	if postalCode != "" {
		if b := r.ByPostalCode(postalCode); b != nil {
			return b
		}
	}
	if cityText != "" {
		return r.ByCityText(cityText)
	}
	return nil
}
