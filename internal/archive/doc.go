// Package archive coordinates bulk archiving of a cluster's messages.
//
// Archiving a cluster removes the inbox label from every message in the
// cluster via the Gmail API, then records the outcome in the local cache in
// a single transaction. Individual label mutations are retried with
// exponential backoff; permanent API failures are not retried. A message
// that was already archived in a previous run is skipped, so a partially
// failed operation can be resumed by calling it again.
package archive
