package textnorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	n := New()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    "   \n\t  ",
			expected: "",
		},
		{
			name:     "strips html tags",
			input:    "<html><body><p>Quarterly budget review</p></body></html>",
			expected: "quarterly budget review",
		},
		{
			name:     "decodes entities",
			input:    "Profit &amp; loss statement",
			expected: "profit loss statement",
		},
		{
			name:     "removes urls and addresses",
			input:    "Visit https://example.com/offer or write bob@example.com today",
			expected: "visit offer write today",
		},
		{
			name:     "removes phone numbers",
			input:    "Call 555-123-4567 about the invoice",
			expected: "call invoice",
		},
		{
			name:     "drops stopwords and short tokens",
			input:    "The meeting is at the office, thanks",
			expected: "meeting office",
		},
		{
			name:     "drops numeric tokens",
			input:    "Order 12345 shipped in 3 boxes",
			expected: "order shipped boxes",
		},
		{
			name:     "collapses whitespace and lowercases",
			input:    "Project   STATUS\n\nUpdate",
			expected: "project status update",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Normalize(tt.input))
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	n := New()
	input := "<p>Weekly team sync on project roadmap &amp; planning</p>"

	first := n.Normalize(input)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, n.Normalize(input))
	}
}

func TestNormalizeTruncatesLongInput(t *testing.T) {
	n := NewWithLimit(100)

	// A long run of a single token; truncation must not panic and the
	// output must reflect only the bounded prefix.
	input := strings.Repeat("meeting ", 10000)
	out := n.Normalize(input)

	assert.NotEmpty(t, out)
	assert.LessOrEqual(t, len(out), 120)
}

func TestTruncateKeepsTextAfterInvalidByte(t *testing.T) {
	n := NewWithLimit(40)

	// An invalid byte early in an over-limit input must not discard the
	// rest of the prefix.
	input := "hello \xff meeting schedule " + strings.Repeat("x", 100)
	out := n.Normalize(input)

	assert.Contains(t, out, "meeting")
	assert.Contains(t, out, "schedule")
}

func TestTruncateRuneBoundary(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"short input untouched", "héllo", 100, "héllo"},
		{"clean ascii cut", "abcdef", 4, "abcd"},
		{"split two-byte rune dropped", "abé", 3, "ab"},
		{"complete rune at boundary kept", "abé", 4, "abé"},
		{"invalid byte at boundary kept", "ab\xffcd", 3, "ab\xff"},
		{"invalid byte before boundary kept", "a\xffbcd", 3, "a\xffb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncate(tt.input, tt.max))
		})
	}
}

func TestSenderDomain(t *testing.T) {
	tests := []struct {
		sender   string
		expected string
	}{
		{"Jane Doe <jane@example.com>", "example.com"},
		{"bob@widgets.io", "widgets.io"},
		{"Support <help@mail.shop.example.org>", "shop.example.org"},
		{"no address here", "unknown"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SenderDomain(tt.sender), "sender %q", tt.sender)
	}
}
