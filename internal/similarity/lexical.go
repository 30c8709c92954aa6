package similarity

import (
	"context"
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	sequenceWeight = 0.7
	keywordWeight  = 0.3
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Words returns the lower-cased word tokens of s in order.
func Words(s string) []string {
	return wordRe.FindAllString(strings.ToLower(s), -1)
}

// Tokens returns the set of lower-cased word tokens of s.
func Tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range Words(s) {
		set[w] = struct{}{}
	}
	return set
}

// Jaccard is |a∩b| / |a∪b|, and 0 when either set is empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// SequenceRatio is the matching-blocks ratio 2*M/T over the characters of the
// lower-cased inputs. Two empty strings have ratio 1.
func SequenceRatio(a, b string) float64 {
	m := difflib.NewMatcher(runes(strings.ToLower(a)), runes(strings.ToLower(b)))
	return m.Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Lexical blends the sequence ratio and the token Jaccard of two texts.
func Lexical(query, candidate string) float64 {
	return sequenceWeight*SequenceRatio(query, candidate) +
		keywordWeight*Jaccard(Tokens(query), Tokens(candidate))
}

// LexicalEngine scores a query against candidate texts without any model.
type LexicalEngine struct {
	Candidates []string
}

func NewLexicalEngine(candidates []string) *LexicalEngine {
	return &LexicalEngine{Candidates: candidates}
}

func (e *LexicalEngine) Scores(ctx context.Context, query string) ([]float64, error) {
	scores := make([]float64, len(e.Candidates))
	for i, c := range e.Candidates {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		scores[i] = Lexical(query, c)
	}
	return scores, nil
}
