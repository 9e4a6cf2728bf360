package usecases

import (
	"project_aceRelay/internal/entities"
	"strings"
	"unicode"
)

// affirmations signal the customer is ready to buy.
var affirmations = []string{
	"yes", "yeah", "yep", "yup", "ok", "okay", "sure", "deal", "absolutely", "definitely", "of course",
	"lets do it", "ill take it", "i will take it", "sign me up", "im in", "count me in",
	"sounds good", "ill buy", "ill buy it", "i want it", "send the link", "send me the link",
}

// fillers may surround an affirmation without changing its meaning.
var fillers = map[string]bool{
	"please": true, "thanks": true, "thank": true, "you": true, "so": true, "then": true,
	"now": true, "great": true, "cool": true, "perfect": true, "alright": true, "awesome": true,
	"oh": true, "well": true, "hey": true, "go": true, "ahead": true, "and": true, "lol": true,
}

// negations veto the closing sentence even next to a "yes".
var negations = map[string]bool{
	"no": true, "not": true, "nope": true, "nah": true, "never": true, "dont": true,
	"cant": true, "cannot": true, "wont": true, "doesnt": true, "isnt": true,
}

// normalize lowercases text, drops apostrophes and turns punctuation into single spaces,
// so "Can't afford!" and "cant afford" compare equal.
func normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("'", "", "’", "").Replace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}

// containsPhrase matches whole words only: "work" does not match "network".
func containsPhrase(normalizedText, phrase string) bool {
	p := normalize(phrase)
	if p == "" || normalizedText == "" {
		return false
	}
	return strings.Contains(" "+normalizedText+" ", " "+p+" ")
}

// MatchObjections returns the entries whose keywords appear in text, in catalog order.
// Ties are left to the model; this only labels traffic.
func MatchObjections(catalog entities.Catalog, text string) []entities.ObjectionEntry {
	norm := normalize(text)
	var matched []entities.ObjectionEntry
	for _, e := range catalog {
		for _, kw := range e.TriggerKeywords {
			if containsPhrase(norm, kw) {
				matched = append(matched, e)
				break
			}
		}
	}
	return matched
}

// IsAffirmation reports whether text does nothing but agree to the offer: every word belongs
// to an affirmation phrase or is filler, and no negation or objection keyword appears.
// Anything else, questions included, is left to the model.
func IsAffirmation(catalog entities.Catalog, text string) bool {
	words := strings.Fields(normalize(text))
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if negations[w] {
			return false
		}
	}
	if len(MatchObjections(catalog, text)) > 0 {
		return false
	}

	agreed := false
	for i := 0; i < len(words); {
		if n := affirmationAt(words[i:]); n > 0 {
			agreed = true
			i += n
			continue
		}
		if !fillers[words[i]] {
			return false
		}
		i++
	}
	return agreed
}

// affirmationAt returns the length in words of the longest affirmation that prefixes words.
func affirmationAt(words []string) int {
	best := 0
	for _, a := range affirmations {
		phrase := strings.Fields(a)
		if len(phrase) <= best || len(phrase) > len(words) {
			continue
		}
		match := true
		for j, w := range phrase {
			if words[j] != w {
				match = false
				break
			}
		}
		if match {
			best = len(phrase)
		}
	}
	return best
}
