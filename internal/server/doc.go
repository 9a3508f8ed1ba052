// Package server provides the metrics HTTP server for the inboxgroups
// application.
//
// The metrics server runs on a dedicated port, isolating Prometheus scraping
// from the rest of the application.
package server
