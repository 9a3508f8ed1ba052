package textnorm

// baseStopwords is the common English stopword set.
var baseStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "am", "an",
	"and", "any", "are", "aren't", "as", "at", "be", "because", "been",
	"before", "being", "below", "between", "both", "but", "by", "can't",
	"cannot", "could", "couldn't", "did", "didn't", "do", "does", "doesn't",
	"doing", "don't", "down", "during", "each", "few", "for", "from",
	"further", "had", "hadn't", "has", "hasn't", "have", "haven't", "having",
	"he", "he'd", "he'll", "he's", "her", "here", "here's", "hers", "herself",
	"him", "himself", "his", "how", "how's", "i", "i'd", "i'll", "i'm",
	"i've", "if", "in", "into", "is", "isn't", "it", "it's", "its", "itself",
	"let's", "me", "more", "most", "mustn't", "my", "myself", "no", "nor",
	"not", "of", "off", "on", "once", "only", "or", "other", "ought", "our",
	"ours", "ourselves", "out", "over", "own", "same", "shan't", "she",
	"she'd", "she'll", "she's", "should", "shouldn't", "so", "some", "such",
	"than", "that", "that's", "the", "their", "theirs", "them", "themselves",
	"then", "there", "there's", "these", "they", "they'd", "they'll",
	"they're", "they've", "this", "those", "through", "too", "under",
	"until", "up", "very", "was", "wasn't", "we", "we'd", "we'll", "we're",
	"we've", "were", "weren't", "what", "what's", "when", "when's", "where",
	"where's", "which", "while", "who", "who's", "whom", "why", "why's",
	"with", "won't", "would", "wouldn't", "you", "you'd", "you'll", "you're",
	"you've", "your", "yours", "yourself", "yourselves",
}

// emailStopwords are terms so common in email bodies that they add noise
// rather than separating topics.
var emailStopwords = []string{
	"email", "mail", "message", "sent", "received", "reply", "forward",
	"subject", "from", "to", "cc", "bcc", "date", "time",
	"gmail", "outlook", "yahoo", "hotmail",
	"http", "https", "www", "com", "org", "net",
	"unsubscribe", "click", "here", "link",
	"best", "regards", "sincerely", "thanks", "thank",
	"please", "let", "know", "get", "back", "contact",
	"will", "can", "may", "might", "must",
	"one", "two", "three", "first", "second", "last",
	"also", "just", "now", "well", "good", "great",
}

var stopwords = buildStopwords()

func buildStopwords() map[string]struct{} {
	m := make(map[string]struct{}, len(baseStopwords)+len(emailStopwords))
	for _, w := range baseStopwords {
		m[w] = struct{}{}
	}
	for _, w := range emailStopwords {
		m[w] = struct{}{}
	}
	return m
}

// IsStopword reports whether the lowercased token is in the stopword set.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
