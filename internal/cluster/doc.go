// Package cluster partitions TF-IDF document vectors into K groups using
// spherical k-means (iterative centroid relocation over cosine similarity).
//
// Runs are fully reproducible: every restart derives its seed from the
// configured base seed plus the restart index, initialization uses
// farthest-point seeding, and all tie-breaks are deterministic. Degenerate
// corpora never fail: fewer distinct non-zero vectors than K reduce the
// effective cluster count, and an all-zero corpus collapses into a single
// cluster.
//
// The package also derives human-readable labels and descriptions for the
// resulting clusters from centroid weights and member sender domains.
package cluster
