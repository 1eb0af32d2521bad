package proptype

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Unknown is returned for empty input and is always rejected by extraction.
const Unknown = "unknown"

//go:embed vocabulary.yaml
var vocabularyYAML []byte

type heuristic struct {
	All       []string `yaml:"all"`
	Canonical string   `yaml:"canonical"`
}

type vocabularyDoc struct {
	Canonical  []string          `yaml:"canonical"`
	Aliases    map[string]string `yaml:"aliases"`
	Qualifiers []string          `yaml:"qualifiers"`
	Tokens     map[string]string `yaml:"tokens"`
	Heuristics []heuristic       `yaml:"heuristics"`
}

// Vocabulary is the static canonicalization table for prop types.
type Vocabulary struct {
	canonical  map[string]struct{}
	aliases    map[string]string
	qualifiers []string
	tokens     map[string]string
	heuristics []heuristic
}

var defaultVocabulary = MustParseVocabulary(vocabularyYAML)

// Default returns the embedded vocabulary.
func Default() *Vocabulary {
	return defaultVocabulary
}

func MustParseVocabulary(raw []byte) *Vocabulary {
	v, err := ParseVocabulary(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseVocabulary decodes a vocabulary document and checks that every alias,
// token and heuristic points at a canonical term.
func ParseVocabulary(raw []byte) (*Vocabulary, error) {
	var doc vocabularyDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode prop type vocabulary: %w", err)
	}

	v := &Vocabulary{
		canonical:  make(map[string]struct{}, len(doc.Canonical)),
		aliases:    make(map[string]string, len(doc.Aliases)),
		qualifiers: doc.Qualifiers,
		tokens:     make(map[string]string, len(doc.Tokens)),
		heuristics: doc.Heuristics,
	}
	for _, term := range doc.Canonical {
		if Slug(term) != term {
			return nil, fmt.Errorf("canonical term %q is not a slug", term)
		}
		v.canonical[term] = struct{}{}
	}
	for k, target := range doc.Aliases {
		if !v.IsCanonical(target) {
			return nil, fmt.Errorf("alias %q targets non-canonical %q", k, target)
		}
		v.aliases[Slug(k)] = target
	}
	for k, target := range doc.Tokens {
		if !v.IsCanonical(target) {
			return nil, fmt.Errorf("token %q targets non-canonical %q", k, target)
		}
		v.tokens[k] = target
	}
	for i, h := range doc.Heuristics {
		if len(h.All) == 0 || !v.IsCanonical(h.Canonical) {
			return nil, fmt.Errorf("heuristic %d is invalid", i)
		}
	}
	return v, nil
}

func (v *Vocabulary) IsCanonical(term string) bool {
	_, ok := v.canonical[term]
	return ok
}

// Terms lists the canonical vocabulary in sorted order.
func (v *Vocabulary) Terms() []string {
	out := make([]string, 0, len(v.canonical))
	for term := range v.canonical {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}

// Resolve maps a raw market label to a canonical term. dynamic holds
// store-backed aliases keyed by slug; pass the output of CloseAliases so that
// Resolve stays idempotent. The result is never empty.
func (v *Vocabulary) Resolve(raw string, dynamic map[string]string) string {
	key := Slug(raw)
	if key == "" {
		return Unknown
	}
	if v.IsCanonical(key) {
		return key
	}
	if target, ok := dynamic[key]; ok && target != "" {
		return target
	}
	if target, ok := v.lookupWhole(key); ok {
		return target
	}
	for _, tok := range strings.Split(key, "_") {
		if target, ok := v.tokens[tok]; ok {
			return target
		}
	}
	for _, h := range v.heuristics {
		if containsAll(key, h.All) {
			return h.Canonical
		}
	}
	return key
}

func (v *Vocabulary) lookupWhole(key string) (string, bool) {
	if target, ok := v.aliases[key]; ok {
		return target, true
	}
	for _, q := range v.qualifiers {
		trimmed, found := strings.CutPrefix(key, q)
		if !found || trimmed == "" {
			continue
		}
		if v.IsCanonical(trimmed) {
			return trimmed, true
		}
		if target, ok := v.aliases[trimmed]; ok {
			return target, true
		}
	}
	return "", false
}

// CloseAliases normalizes store-backed aliases: keys and targets are slugged,
// chains are followed to their end and the end is resolved through the static
// tables. Static canonical keys are dropped and every remaining non-canonical
// target maps to itself, which never shadows a static alias.
func (v *Vocabulary) CloseAliases(raw map[string]string) map[string]string {
	slugged := make(map[string]string, len(raw))
	for k, target := range raw {
		k, target = Slug(k), Slug(target)
		if k == "" || target == "" || v.IsCanonical(k) {
			continue
		}
		slugged[k] = target
	}

	out := make(map[string]string, len(slugged))
	for k := range slugged {
		out[k] = v.Resolve(followAlias(k, slugged, v), nil)
	}
	for _, target := range out {
		if !v.IsCanonical(target) {
			out[target] = target
		}
	}
	return out
}

func followAlias(start string, aliases map[string]string, v *Vocabulary) string {
	current := start
	seen := map[string]struct{}{current: {}}
	for {
		next, ok := aliases[current]
		if !ok || v.IsCanonical(next) {
			if ok {
				return next
			}
			return current
		}
		if _, loop := seen[next]; loop {
			return next
		}
		seen[next] = struct{}{}
		current = next
	}
}

// NormalizeKey converts a prop type to lower_snake without vocabulary lookup.
func NormalizeKey(raw string) string {
	return Slug(raw)
}

// Slug lowercases, splits camelCase, and folds every run of non-alphanumerics
// into a single underscore.
func Slug(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw) + 4)
	prev := rune(0)
	pendingSep := false
	for _, r := range raw {
		switch {
		case unicode.IsUpper(r):
			if unicode.IsLower(prev) {
				pendingSep = true
			}
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
		prev = r
	}
	return b.String()
}

func containsAll(key string, parts []string) bool {
	for _, p := range parts {
		if !strings.Contains(key, p) {
			return false
		}
	}
	return true
}
