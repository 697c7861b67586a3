package api

import (
	"net/http"

	"github.com/duckcross/waitlist-service/internal/domain"
)

// RequestMetadataFromRequest extracts the capture metadata from request headers.
// X-Forwarded-For is recorded verbatim; X-Real-IP is only consulted when it is absent.
func RequestMetadataFromRequest(r *http.Request) domain.RequestMetadata {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.Header.Get("X-Real-IP")
	}
	return domain.RequestMetadata{
		IPAddress: ip,
		UserAgent: r.Header.Get("User-Agent"),
		Referrer:  r.Header.Get("Referer"),
	}
}
