package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teemow/inboxgroups/internal/vectorize"
)

func TestLabelTopTerms(t *testing.T) {
	vocab := []string{"agenda", "meeting", "schedule", "soccer"}
	centroid := vectorize.Vector{1: 0.9, 2: 0.7, 0: 0.2}
	senders := []string{
		"Alice <alice@corp.example.com>",
		"Bob <bob@corp.example.com>",
		"Carol <carol@other.example.org>",
	}

	l := NewLabeler()
	label, desc := l.Label(centroid, vocab, 0, senders)

	assert.Equal(t, "Meeting Schedule Agenda", label)
	assert.Contains(t, desc, "meeting, schedule, agenda")
	assert.Contains(t, desc, "corp.example.com")
	assert.Contains(t, desc, "3 emails")
}

func TestLabelFallbackOnZeroCentroid(t *testing.T) {
	l := NewLabeler()

	label, desc := l.Label(vectorize.Vector{}, nil, 4, []string{"x <x@a.example>"})

	assert.Equal(t, "Cluster 5", label)
	assert.NotEmpty(t, desc)
}

func TestLabelNeverEmpty(t *testing.T) {
	l := NewLabeler()

	cases := []struct {
		centroid vectorize.Vector
		vocab    []string
		senders  []string
	}{
		{vectorize.Vector{}, nil, nil},
		{vectorize.Vector{0: 0.5}, []string{"invoice"}, nil},
		{vectorize.Vector{7: 0.5}, []string{"only"}, []string{"no address"}},
	}

	for i, c := range cases {
		label, desc := l.Label(c.centroid, c.vocab, i, c.senders)
		assert.NotEmpty(t, label, "case %d", i)
		assert.NotEmpty(t, desc, "case %d", i)
	}
}

func TestLabelBigramTerms(t *testing.T) {
	vocab := []string{"budget review", "quarterly"}
	centroid := vectorize.Vector{0: 0.8, 1: 0.3}

	l := NewLabeler()
	label, _ := l.Label(centroid, vocab, 0, []string{"a <a@b.example>"})

	assert.Equal(t, "Budget Review Quarterly", label)
}
