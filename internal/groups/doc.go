// Package groups implements the inbox clustering workflow.
//
// A Service fetches recent inbox messages through a MailTransport, caches
// them locally, groups them into topic clusters with TF-IDF weighted
// spherical k-means, and persists the resulting cluster set. Cluster sets
// can then be listed and archived as a unit.
//
// Mutating operations on the same account are serialized with an advisory
// per-account lock, so a clustering run never races an archive operation.
package groups
