// Package cmd implements the command-line interface for inboxgroups.
//
// This package provides the following commands:
//   - cluster: Fetch inbox messages and group them into topic clusters
//   - list: Show the stored cluster set
//   - archive: Archive every message of a cluster
//   - stats: Show message and cluster counts from the local cache
//   - auth: Authorize a Google account
//   - version: Display version information
//
// The cluster command is the default command when no subcommand is specified.
package cmd
