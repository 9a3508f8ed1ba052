// Package gmail implements the mail-transport capability against the Gmail
// API.
//
// The client lists recent inbox messages (paginated list plus a full get
// per message, extracting subject, sender, received time and a plain-text
// body) and mutates message labels, which is how archiving works in Gmail:
// removing the INBOX label archives a message.
//
// Errors are classified for the archive coordinator's retry policy:
// IsTransient reports rate limits, server errors and network timeouts,
// which are worth retrying; everything else (message gone, access denied)
// is permanent.
//
// Authentication uses the file-cached OAuth token from the google package.
package gmail
