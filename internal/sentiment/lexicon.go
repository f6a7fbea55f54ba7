package sentiment

import (
	"math"

	"github.com/gcbaptista/review-radar/internal/tokenizer"
	"github.com/gcbaptista/review-radar/model"
)

const (
	// normalizationAlpha approximates the maximum expected raw valence sum.
	normalizationAlpha = 15.0
	// negationScalar dampens and flips a term preceded by a negator.
	negationScalar = -0.74
	negationWindow = 3

	// PositiveThreshold and NegativeThreshold split compound scores into labels.
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

var defaultValences = map[string]float64{
	"amazing": 2.8, "awesome": 3.1, "best": 3.2, "better": 1.9, "comfortable": 1.5,
	"easy": 1.9, "excellent": 2.7, "fantastic": 2.6, "fine": 0.8, "glad": 2.0,
	"good": 1.9, "great": 3.1, "happy": 2.7, "like": 1.5, "love": 3.2,
	"loved": 2.9, "loves": 2.7, "nice": 1.8, "ok": 0.9, "okay": 0.9,
	"perfect": 2.7, "perfectly": 3.2, "pleased": 1.9, "recommend": 1.5, "sturdy": 1.0,
	"wonderful": 2.7, "works": 0.8,
	"awful": -2.0, "bad": -2.5, "broke": -1.4, "broken": -1.6, "cheap": -0.5,
	"defective": -1.9, "disappointed": -1.9, "disappointing": -2.2, "hate": -2.7,
	"horrible": -2.5, "junk": -1.8, "poor": -2.1, "poorly": -2.1, "return": -0.3,
	"returned": -0.5, "terrible": -2.1, "useless": -1.8, "waste": -1.8, "worse": -2.1,
	"worst": -3.1, "wrong": -2.1,
}

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "nothing": {}, "neither": {}, "nor": {},
	"dont": {}, "doesnt": {}, "didnt": {}, "isnt": {}, "wasnt": {}, "cant": {}, "wont": {},
	"t": {}, // "don't" tokenizes to "don" + "t"
}

// Lexicon is a dictionary-based Annotator producing a compound score in
// [-1, 1]: the sum of term valences (negated terms flipped and dampened),
// normalized by x / sqrt(x^2 + alpha).
type Lexicon struct {
	valences map[string]float64
}

// NewLexicon returns a Lexicon with the built-in English review vocabulary.
func NewLexicon() *Lexicon {
	return &Lexicon{valences: defaultValences}
}

// NewLexiconFrom returns a Lexicon over a caller-supplied vocabulary.
// Keys must already be normalized tokens.
func NewLexiconFrom(valences map[string]float64) *Lexicon {
	return &Lexicon{valences: valences}
}

// Score implements Annotator. It never fails.
func (l *Lexicon) Score(text string) (float64, model.SentimentLabel, error) {
	tokens := tokenizer.Tokenize(text)

	var sum float64
	for i, token := range tokens {
		v, ok := l.valences[token]
		if !ok {
			continue
		}
		if negated(tokens, i) {
			v *= negationScalar
		}
		sum += v
	}

	compound := 0.0
	if sum != 0 {
		compound = sum / math.Sqrt(sum*sum+normalizationAlpha)
	}
	return compound, Label(compound), nil
}

// Label maps a compound score to its categorical label.
func Label(compound float64) model.SentimentLabel {
	switch {
	case compound >= PositiveThreshold:
		return model.SentimentPositive
	case compound <= NegativeThreshold:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

func negated(tokens []string, i int) bool {
	start := i - negationWindow
	if start < 0 {
		start = 0
	}
	for _, prev := range tokens[start:i] {
		if _, ok := negators[prev]; ok {
			return true
		}
	}
	return false
}
