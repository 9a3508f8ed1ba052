package gmail

import (
	"errors"
	"net"

	"google.golang.org/api/googleapi"
)

// IsTransient reports whether a transport error is worth retrying:
// rate limits, server-side errors and network timeouts. Client-side
// failures (message gone, access denied, bad request) are permanent and
// must not be retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	// Unclassified transport failures (connection reset, DNS hiccup)
	// count as transient.
	return true
}
