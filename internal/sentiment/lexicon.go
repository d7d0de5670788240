package sentiment

import (
	"math"
	"strings"
	"unicode"
)

// Lexicon is a rule-based polarity scorer for short financial headlines.
// Each matched word contributes its valence; negations within a short
// window flip the sign; the total is squashed into [-1, 1].
type Lexicon struct {
	valence   map[string]float64
	negations map[string]bool
	boosters  map[string]float64
}

// normalization constant for the compound score, keeps typical headline
// sums well inside (-1, 1)
const compoundAlpha = 15.0

// NewLexicon builds the default financial-news lexicon.
func NewLexicon() *Lexicon {
	return &Lexicon{
		valence:   defaultValence(),
		negations: defaultNegations(),
		boosters:  defaultBoosters(),
	}
}

// Compound scores one headline in [-1, 1]. Unknown words contribute
// nothing, so a headline with no lexicon hits is exactly neutral.
func (l *Lexicon) Compound(text string) float64 {
	words := tokenize(text)
	var sum float64
	for i, w := range words {
		v, ok := l.valence[w]
		if !ok {
			continue
		}
		if b := l.boostFor(words, i); b != 0 {
			if v > 0 {
				v += b
			} else {
				v -= b
			}
		}
		if l.negatedBefore(words, i) {
			v = -v
		}
		sum += v
	}
	if sum == 0 {
		return 0
	}
	return sum / math.Sqrt(sum*sum+compoundAlpha)
}

// negatedBefore reports whether a negation appears within the three words
// preceding position i.
func (l *Lexicon) negatedBefore(words []string, i int) bool {
	for j := i - 1; j >= 0 && j >= i-3; j-- {
		if l.negations[words[j]] {
			return true
		}
	}
	return false
}

// boostFor returns the intensity adjustment from the word directly before
// position i, e.g. "sharply higher" scores above plain "higher".
func (l *Lexicon) boostFor(words []string, i int) float64 {
	if i == 0 {
		return 0
	}
	return l.boosters[words[i-1]]
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func defaultValence() map[string]float64 {
	return map[string]float64{
		// positive
		"gain": 1.2, "gains": 1.2, "rally": 1.5, "rallies": 1.5,
		"surge": 1.7, "surges": 1.7, "soar": 1.8, "soars": 1.8,
		"jump": 1.3, "jumps": 1.3, "rise": 1.0, "rises": 1.0,
		"climb": 1.1, "climbs": 1.1, "up": 0.8, "higher": 0.9,
		"record": 1.0, "beat": 1.4, "beats": 1.4, "strong": 1.2,
		"growth": 1.1, "profit": 1.2, "profits": 1.2, "upgrade": 1.4,
		"upgraded": 1.4, "bullish": 1.6, "outperform": 1.3, "win": 1.1,
		"wins": 1.1, "boom": 1.5, "positive": 1.0, "optimistic": 1.2,
		"success": 1.2, "breakthrough": 1.5, "recovery": 1.0,
		"rebound": 1.1, "rebounds": 1.1, "buy": 0.9, "expand": 0.9,
		"expands": 0.9, "exceed": 1.2, "exceeds": 1.2, "improved": 1.0,
		"improves": 1.0, "best": 1.2, "top": 0.8, "dividend": 0.6,
		// negative
		"loss": -1.2, "losses": -1.2, "fall": -1.0, "falls": -1.0,
		"drop": -1.1, "drops": -1.1, "plunge": -1.8, "plunges": -1.8,
		"crash": -2.0, "crashes": -2.0, "sink": -1.4, "sinks": -1.4,
		"slump": -1.5, "slumps": -1.5, "tumble": -1.5, "tumbles": -1.5,
		"down": -0.8, "lower": -0.9, "decline": -1.0, "declines": -1.0,
		"weak": -1.1, "miss": -1.3, "misses": -1.3, "downgrade": -1.4,
		"downgraded": -1.4, "bearish": -1.6, "underperform": -1.3,
		"fears": -1.2, "fear": -1.2, "worry": -1.1, "worries": -1.1,
		"risk": -0.8, "risks": -0.8, "lawsuit": -1.3, "fraud": -1.9,
		"investigation": -1.2, "recall": -1.2, "bankruptcy": -2.0,
		"default": -1.6, "layoffs": -1.4, "cut": -0.9, "cuts": -0.9,
		"warns": -1.3, "warning": -1.3, "negative": -1.0, "sell": -0.9,
		"selloff": -1.5, "worst": -1.4, "crisis": -1.6, "debt": -0.7,
		"probe": -1.1, "halts": -1.2, "halt": -1.2, "slides": -1.1,
	}
}

func defaultNegations() map[string]bool {
	return map[string]bool{
		"not": true, "no": true, "never": true, "without": true,
		"barely": true, "hardly": true, "despite": true, "wont": true,
		"isnt": true, "doesnt": true, "fails": true, "failed": true,
	}
}

func defaultBoosters() map[string]float64 {
	return map[string]float64{
		"sharply": 0.4, "strongly": 0.4, "significantly": 0.3,
		"slightly": -0.3, "marginally": -0.3, "hugely": 0.5,
		"massively": 0.5, "modestly": -0.2, "dramatically": 0.4,
	}
}
