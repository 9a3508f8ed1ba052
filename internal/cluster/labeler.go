package cluster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/teemow/inboxgroups/internal/textnorm"
	"github.com/teemow/inboxgroups/internal/vectorize"
)

// DefaultTopTerms is the number of centroid terms used for labeling.
const DefaultTopTerms = 3

// Labeler derives human-readable labels and descriptions for clusters from
// their centroid weights and member sender addresses.
type Labeler struct {
	// TopTerms is the maximum number of centroid terms in a label.
	TopTerms int
}

// NewLabeler returns a Labeler with the default term count.
func NewLabeler() *Labeler {
	return &Labeler{TopTerms: DefaultTopTerms}
}

// Label produces a label and description for one cluster. clusterIndex is
// the zero-based cluster index, used only for the fallback label; senders
// are the raw sender header values of the cluster's members.
//
// Label and description are never empty: a centroid with no non-zero
// weights falls back to "Cluster N".
func (l *Labeler) Label(centroid vectorize.Vector, vocab []string, clusterIndex int, senders []string) (string, string) {
	top := l.TopTerms
	if top <= 0 {
		top = DefaultTopTerms
	}

	terms := topCentroidTerms(centroid, vocab, top)
	domain := dominantDomain(senders)
	count := len(senders)

	if len(terms) == 0 {
		label := fmt.Sprintf("Cluster %d", clusterIndex+1)
		desc := fmt.Sprintf("Mixed emails, mostly from %s (%d emails)", domain, count)
		return label, desc
	}

	label := titleCase(strings.Join(terms, " "))
	desc := fmt.Sprintf("Emails about %s, mostly from %s (%d emails)",
		strings.Join(terms, ", "), domain, count)
	return label, desc
}

// topCentroidTerms returns up to max vocabulary terms with the highest
// centroid weight. Ties resolve to the lower vocabulary index, which is
// lexicographic order by construction.
func topCentroidTerms(centroid vectorize.Vector, vocab []string, max int) []string {
	type weighted struct {
		index  int
		weight float64
	}
	entries := make([]weighted, 0, len(centroid))
	for i, w := range centroid {
		if w > 0 && i < len(vocab) {
			entries = append(entries, weighted{index: i, weight: w})
		}
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].weight != entries[b].weight {
			return entries[a].weight > entries[b].weight
		}
		return entries[a].index < entries[b].index
	})

	if len(entries) > max {
		entries = entries[:max]
	}
	terms := make([]string, len(entries))
	for i, e := range entries {
		terms[i] = vocab[e.index]
	}
	return terms
}

// dominantDomain returns the most frequent sender domain, ties resolved
// alphabetically. Empty input yields "unknown".
func dominantDomain(senders []string) string {
	counts := make(map[string]int, len(senders))
	for _, s := range senders {
		counts[textnorm.SenderDomain(s)]++
	}

	best := "unknown"
	bestCount := 0
	for domain, c := range counts {
		if c > bestCount || (c == bestCount && domain < best) {
			best = domain
			bestCount = c
		}
	}
	return best
}

// titleCase uppercases the first rune of every word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
