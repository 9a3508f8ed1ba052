// Package textnorm turns raw email text into a canonical token string
// suitable for vectorization.
//
// Normalization is a pure function: HTML markup is stripped and entities
// decoded, URLs, email addresses and phone numbers are removed, text is
// lowercased, punctuation and purely numeric tokens are dropped, and the
// remaining tokens are filtered against a fixed stopword set. Input is
// truncated to a bounded maximum length before tokenizing so pathological
// message sizes cannot stall the pipeline.
//
// The package also extracts sender domains from RFC 5322 style addresses
// ("Name <user@host>"), which the cluster labeler uses for provenance hints.
package textnorm
