// Package intent tags user messages with the closest intent from a
// pattern dataset.
package intent

import (
	"math/rand/v2"
	"strings"
	"unicode"

	"github.com/coregx/ahocorasick"
	"github.com/orsinium-labs/stopwords"
)

// Unknown is returned when no pattern or keyword matches.
const Unknown = "unknown"

const fallbackResponse = "I'm here to listen. Could you tell me a little more about how you're feeling?"

type vote struct {
	intent int
	weight int
}

// Classifier scores text against every intent's patterns and keywords in a
// single automaton pass. It is immutable after construction.
type Classifier struct {
	ac        *ahocorasick.Automaton
	votes     [][]vote // pattern id -> intents it counts towards
	tags      []string
	responses map[string][]string
	pick      func(n int) int
}

func New(ds *Dataset) (*Classifier, error) {
	sw := stopwords.MustGet("en")

	c := &Classifier{
		responses: make(map[string][]string, len(ds.Intents)),
		pick:      rand.IntN,
	}
	index := make(map[string]int)
	var terms []string

	add := func(term string, intent, weight int) {
		id, ok := index[term]
		if !ok {
			id = len(terms)
			index[term] = id
			terms = append(terms, term)
			c.votes = append(c.votes, nil)
		}
		for i, v := range c.votes[id] {
			if v.intent == intent {
				c.votes[id][i].weight = max(v.weight, weight)
				return
			}
		}
		c.votes[id] = append(c.votes[id], vote{intent: intent, weight: weight})
	}

	for i, in := range ds.Intents {
		tag := strings.TrimSpace(in.Tag)
		c.tags = append(c.tags, tag)
		c.responses[tag] = in.Responses

		for _, p := range in.Patterns {
			words := strings.Fields(normalize(p))
			if len(words) == 0 {
				continue
			}
			// whole phrases outweigh their words
			add(pad(strings.Join(words, " ")), i, 2*len(words))
			if len(words) == 1 {
				continue
			}
			for _, w := range words {
				if len(w) >= 3 && !sw.Contains(w) {
					add(pad(w), i, 1)
				}
			}
		}
	}

	ac, err := ahocorasick.NewBuilder().
		AddStrings(terms).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, err
	}
	c.ac = ac
	return c, nil
}

// Classify returns the best scoring tag, Unknown when nothing matches.
// Ties go to the intent listed first in the dataset.
func (c *Classifier) Classify(text string) string {
	norm := normalize(text)
	if norm == "" {
		return Unknown
	}

	scores := make([]int, len(c.tags))
	seen := make(map[int]struct{})
	for _, m := range c.ac.FindAllOverlapping([]byte(pad(norm))) {
		if _, dup := seen[m.PatternID]; dup {
			continue
		}
		seen[m.PatternID] = struct{}{}
		for _, v := range c.votes[m.PatternID] {
			scores[v.intent] += v.weight
		}
	}

	best, bestScore := -1, 0
	for i, s := range scores {
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return Unknown
	}
	return c.tags[best]
}

// Respond picks one of the tag's canned responses.
func (c *Classifier) Respond(tag string) string {
	rs := c.responses[tag]
	if len(rs) == 0 {
		return fallbackResponse
	}
	return rs[c.pick(len(rs))]
}

func (c *Classifier) Tags() []string {
	return append([]string(nil), c.tags...)
}

// normalize lowercases s and collapses everything except letters and digits
// into single spaces. Apostrophes are dropped so "don't" matches "dont".
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range s {
		r = unicode.ToLower(r)
		switch {
		case r == '\'' || r == '’':
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			space = false
		default:
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// pad anchors a term on word boundaries.
func pad(s string) string { return " " + s + " " }
