// Package vectorize converts a normalized corpus into fixed-dimension
// TF-IDF feature vectors.
//
// The vocabulary is built from unigrams and bigrams, filtered by document
// frequency and capped at a maximum size. Selection and index assignment are
// fully deterministic: candidates are ranked by descending corpus-wide term
// count with ties broken by ascending lexicographic order, and the surviving
// vocabulary is indexed in lexicographic order. The same corpus and
// configuration therefore always produce bit-identical vectors.
//
// Document vectors are L2-normalized so cosine similarity reduces to a dot
// product downstream.
package vectorize
