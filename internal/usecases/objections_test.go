package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchObjections(t *testing.T) {
	catalog := testCatalog()

	cases := []struct {
		text string
		want []string
	}{
		{"it's too expensive", []string{"price_expensive"}},
		{"I CAN'T AFFORD this!", []string{"price_expensive"}},
		{"Is this a scam? The price is high", []string{"price_expensive", "skeptical"}},
		{"maybe next week", []string{"later"}},
		{"my network is slow", nil},
		{"hello there", nil},
		{"", nil},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			var got []string
			for _, e := range MatchObjections(catalog, tc.text) {
				got = append(got, e.ID)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIsAffirmation(t *testing.T) {
	catalog := testCatalog()

	agree := []string{
		"yes I'll take it",
		"YES!",
		"Ok, sign me up",
		"I’ll take it",
		"yes please",
		"great, send me the link thanks",
		"of course",
		"deal",
	}
	for _, text := range agree {
		assert.True(t, IsAffirmation(catalog, text), text)
	}

	other := []string{
		"yes but it's too expensive",
		"are you sure? yes or no",
		"tell me more",
		"yesterday I saw your ad",
		"no deal",
		"absolutely not",
		"of course not, I don't want it",
		"ok what is the book about?",
		"yes or no: is there a hardcover?",
		"nope, not interested. ok bye",
		"I'm in a hurry",
		"",
	}
	for _, text := range other {
		assert.False(t, IsAffirmation(catalog, text), text)
	}
}
