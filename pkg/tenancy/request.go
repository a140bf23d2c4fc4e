package tenancy

import "net/http"

// RequestContext is the inbound data a tenant is extracted from.
//
// Query may be nil; the transport then parses URL on first use and stores
// the result in Query.
type RequestContext struct {
	Headers map[string]string
	Query   map[string]string
	URL     string
}

// NewRequestContext adapts an HTTP request. Only the first value of each
// header is kept. The query string is parsed lazily from the URL.
func NewRequestContext(r *http.Request) *RequestContext {
	rc := &RequestContext{Headers: make(map[string]string, len(r.Header))}
	for name, values := range r.Header {
		if len(values) > 0 {
			rc.Headers[name] = values[0]
		}
	}
	if r.URL != nil {
		rc.URL = r.URL.String()
	}
	return rc
}
