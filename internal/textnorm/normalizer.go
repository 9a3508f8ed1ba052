package textnorm

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxInput is the maximum number of bytes considered per message.
// Longer input is truncated before tokenizing.
const DefaultMaxInput = 10000

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	urlPattern    = regexp.MustCompile(`https?://[^\s<>"]+`)
	emailPattern  = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
	phonePattern  = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	punctPattern  = regexp.MustCompile(`[^a-z0-9\s\-]`)
	numberPattern = regexp.MustCompile(`\b\d+\b`)
	spacePattern  = regexp.MustCompile(`\s+`)

	addrPattern   = regexp.MustCompile(`<([^>]+)>`)
	domainPattern = regexp.MustCompile(`@([^@\s>]+)`)
	mailSubdomain = regexp.MustCompile(`^(mail|smtp|pop|imap)\.`)
)

// Normalizer converts raw message text into a canonical token string.
// The zero value is not usable; construct one with New.
type Normalizer struct {
	maxInput int
}

// New returns a Normalizer with the default input length bound.
func New() *Normalizer {
	return &Normalizer{maxInput: DefaultMaxInput}
}

// NewWithLimit returns a Normalizer that truncates input to maxInput bytes.
// Non-positive limits fall back to the default.
func NewWithLimit(maxInput int) *Normalizer {
	if maxInput <= 0 {
		maxInput = DefaultMaxInput
	}
	return &Normalizer{maxInput: maxInput}
}

// Normalize cleans raw text and returns a space-joined token string.
// Empty input yields the empty string; Normalize never fails.
func (n *Normalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	text := truncate(raw, n.maxInput)

	// Markup first: strip tags, then decode entities so "&amp;" and
	// friends become plain characters before punctuation removal.
	text = tagPattern.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)

	text = urlPattern.ReplaceAllString(text, " ")
	text = emailPattern.ReplaceAllString(text, " ")
	text = phonePattern.ReplaceAllString(text, " ")

	text = strings.ToLower(text)
	text = punctPattern.ReplaceAllString(text, " ")
	text = numberPattern.ReplaceAllString(text, " ")
	text = spacePattern.ReplaceAllString(text, " ")

	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, tok := range fields {
		tok = strings.Trim(tok, "-")
		if utf8.RuneCountInString(tok) < 3 {
			continue
		}
		if IsStopword(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}

	return strings.Join(tokens, " ")
}

// SenderDomain extracts the lowercased domain from a sender header value
// such as "Jane Doe <jane@example.com>". Common mail-server subdomains
// (mail., smtp., ...) are stripped. Returns "unknown" when no domain can
// be found.
func SenderDomain(sender string) string {
	addr := sender
	if m := addrPattern.FindStringSubmatch(sender); m != nil {
		addr = m[1]
	}
	m := domainPattern.FindStringSubmatch(addr)
	if m == nil {
		return "unknown"
	}
	domain := strings.ToLower(strings.TrimSpace(m[1]))
	domain = mailSubdomain.ReplaceAllString(domain, "")
	if domain == "" {
		return "unknown"
	}
	return domain
}

// truncate cuts s to at most max bytes without splitting a rune at the
// boundary. Invalid bytes elsewhere in the input pass through untouched.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	i := max - 1
	for i > 0 && i > max-utf8.UTFMax && !utf8.RuneStart(s[i]) {
		i--
	}
	if _, size := utf8.DecodeRuneInString(s[i:]); size > 1 && i+size > max {
		return s[:i]
	}
	return s[:max]
}
