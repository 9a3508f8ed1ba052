package vectorize

import (
	"math"
	"sort"
	"strings"
)

// Defaults chosen for a small bounded corpus (around 200 messages):
// extremely rare or extremely common terms add noise rather than
// separating topics.
const (
	DefaultMaxFeatures = 1000
	DefaultMinDF       = 2
	DefaultMaxDF       = 0.8
)

// Config controls vocabulary construction.
type Config struct {
	// MaxFeatures caps the vocabulary size.
	MaxFeatures int
	// MinDF drops terms appearing in fewer than MinDF documents.
	MinDF int
	// MaxDF drops terms appearing in more than this fraction of documents.
	MaxDF float64
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		MaxFeatures: DefaultMaxFeatures,
		MinDF:       DefaultMinDF,
		MaxDF:       DefaultMaxDF,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxFeatures <= 0 {
		c.MaxFeatures = DefaultMaxFeatures
	}
	if c.MinDF <= 0 {
		c.MinDF = DefaultMinDF
	}
	if c.MaxDF <= 0 || c.MaxDF > 1 {
		c.MaxDF = DefaultMaxDF
	}
	return c
}

// Vectorizer builds TF-IDF vectors over a normalized corpus.
type Vectorizer struct {
	cfg Config
}

// New returns a Vectorizer, filling unset config fields with defaults.
func New(cfg Config) *Vectorizer {
	return &Vectorizer{cfg: cfg.withDefaults()}
}

// FitTransform builds the vocabulary from the corpus and returns one vector
// per document plus the vocabulary terms in index order.
//
// Each document is a normalized token string (see textnorm). An all-empty
// corpus yields an empty vocabulary and zero vectors; callers must be
// prepared for that degenerate case.
func (vz *Vectorizer) FitTransform(corpus []string) ([]Vector, []string) {
	n := len(corpus)
	vectors := make([]Vector, n)
	for i := range vectors {
		vectors[i] = Vector{}
	}
	if n == 0 {
		return vectors, nil
	}

	// Term counts per document over unigrams and bigrams.
	docTerms := make([]map[string]int, n)
	df := make(map[string]int)
	total := make(map[string]int)
	for i, doc := range corpus {
		counts := countTerms(doc)
		docTerms[i] = counts
		for term, c := range counts {
			df[term]++
			total[term] += c
		}
	}

	vocab := vz.selectVocabulary(df, total, n)
	if len(vocab) == 0 {
		return vectors, nil
	}

	index := make(map[string]int, len(vocab))
	for i, term := range vocab {
		index[term] = i
	}

	// Smoothed inverse document frequency, as if one extra document
	// contained every term.
	idf := make([]float64, len(vocab))
	for i, term := range vocab {
		idf[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}

	for i, counts := range docTerms {
		vec := vectors[i]
		for term, tf := range counts {
			if j, ok := index[term]; ok {
				vec[j] = float64(tf) * idf[j]
			}
		}
		vec.Normalize()
	}

	return vectors, vocab
}

// selectVocabulary applies the document-frequency filters and the size cap.
// Candidates are ranked by descending corpus-wide count, ties by ascending
// term order; the surviving set is indexed lexicographically.
func (vz *Vectorizer) selectVocabulary(df, total map[string]int, n int) []string {
	candidates := make([]string, 0, len(df))
	for term, d := range df {
		if d < vz.cfg.MinDF {
			continue
		}
		if float64(d)/float64(n) > vz.cfg.MaxDF {
			continue
		}
		candidates = append(candidates, term)
	}

	sort.Slice(candidates, func(a, b int) bool {
		ta, tb := candidates[a], candidates[b]
		if total[ta] != total[tb] {
			return total[ta] > total[tb]
		}
		return ta < tb
	})
	if len(candidates) > vz.cfg.MaxFeatures {
		candidates = candidates[:vz.cfg.MaxFeatures]
	}

	sort.Strings(candidates)
	return candidates
}

// countTerms tallies unigrams and adjacent-pair bigrams in a token string.
func countTerms(doc string) map[string]int {
	tokens := strings.Fields(doc)
	counts := make(map[string]int, len(tokens)*2)
	for i, tok := range tokens {
		counts[tok]++
		if i+1 < len(tokens) {
			counts[tok+" "+tokens[i+1]]++
		}
	}
	return counts
}
