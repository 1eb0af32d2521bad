package player

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nameSuffixes = map[string]struct{}{
	"jr":  {},
	"sr":  {},
	"ii":  {},
	"iii": {},
	"iv":  {},
	"v":   {},
}

// NormalizeName builds the lookup key for a player name: lowercase, accents
// folded, punctuation removed, whitespace collapsed, trailing suffix dropped.
func NormalizeName(raw string) string {
	tokens := nameTokens(raw)
	if len(tokens) > 1 {
		if _, ok := nameSuffixes[tokens[len(tokens)-1]]; ok {
			tokens = tokens[:len(tokens)-1]
		}
	}
	return strings.Join(tokens, " ")
}

// NameVariations returns every key under which a player should be indexed.
// The first element is always NormalizeName(raw).
func NameVariations(raw string) []string {
	v := IndexVariations(raw)
	return append(v.Full, v.Partial...)
}

// Variations splits index keys into full-name keys and single-token keys.
// Single-token keys (first or last name alone) may be shared by several players.
type Variations struct {
	Full    []string
	Partial []string
}

func IndexVariations(raw string) Variations {
	key := NormalizeName(raw)
	if key == "" {
		return Variations{}
	}

	seen := make(map[string]struct{}, 6)
	add := func(dst *[]string, v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		*dst = append(*dst, v)
	}

	var out Variations
	add(&out.Full, key)
	add(&out.Full, AggressiveKey(key))
	// keep the suffixed spelling reachable too
	add(&out.Full, strings.Join(nameTokens(raw), " "))

	tokens := strings.Fields(key)
	if len(tokens) < 2 {
		return out
	}
	if _, ok := nameSuffixes[tokens[0]]; ok {
		add(&out.Full, strings.Join(tokens[1:], " "))
	}

	first := tokens[0]
	last := tokens[len(tokens)-1]
	if len(first) > 2 {
		add(&out.Partial, first)
	}
	if len(last) > 2 && last != first {
		add(&out.Partial, last)
	}
	return out
}

// AggressiveKey drops every non-alphanumeric rune, spaces included.
func AggressiveKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FallbackID is the synthesized id for a name that matched no registry
// entry, e.g. "PATRICK_MAHOMES_JR-UNK-KC".
func FallbackID(name, team string) string {
	base := strings.ToUpper(strings.Join(nameTokens(name), "_"))
	if base == "" {
		base = "UNKNOWN"
	}
	team = strings.ToUpper(strings.TrimSpace(team))
	if team == "" {
		team = "UNK"
	}
	return base + "-UNK-" + team
}

// StripPunctuation lowercases and removes punctuation while keeping single spaces.
func StripPunctuation(raw string) string {
	return strings.Join(nameTokens(raw), " ")
}

func nameTokens(raw string) []string {
	folded, _, err := transform.String(accentFolder(), raw)
	if err != nil {
		folded = raw
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-', r == '/', r == '_':
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

func accentFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
