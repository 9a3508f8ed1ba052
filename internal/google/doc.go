// Package google provides OAuth2 authentication and token management for
// the Gmail API.
//
// Tokens are stored on disk per account, so several mailboxes can be
// authorized side by side. The TokenProvider interface allows other token
// sources to be plugged in.
package google
