package tenancy

import (
	"net/url"
	"strings"
)

// TransportKind selects how a tenant identifier travels on a request.
type TransportKind string

const (
	// TransportHTTP reads a header, then falls back to a query parameter.
	TransportHTTP TransportKind = "http"
	// TransportHeader reads the header only.
	TransportHeader TransportKind = "header"
)

// Extractor pulls a raw tenant identifier from a request.
// ok is false when nothing was provided, which is distinct from an empty value.
type Extractor interface {
	Extract(rc *RequestContext) (tenant string, ok bool)
}

// relative URLs such as "/notes?tenant=acme" are resolved against this base.
var dummyBase = &url.URL{Scheme: "https", Host: "example.org", Path: "/"}

// HTTPTransport extracts the tenant from a header and, when QueryParameter is
// set, from the query string.
type HTTPTransport struct {
	HeaderName     string
	QueryParameter string
}

// Extract reads the header first and falls back to the query parameter.
func (t HTTPTransport) Extract(rc *RequestContext) (string, bool) {
	if rc == nil {
		return "", false
	}

	if v, ok := lookupHeader(rc.Headers, t.HeaderName); ok {
		return v, true
	}

	if t.QueryParameter == "" {
		return "", false
	}
	if rc.Query == nil && rc.URL != "" {
		rc.Query = parseQuery(rc.URL)
	}
	v, ok := rc.Query[t.QueryParameter]
	return v, ok
}

func lookupHeader(headers map[string]string, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if v, ok := headers[name]; ok {
		return v, true
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// parseQuery keeps the first value of every parameter. An unparsable URL
// yields an empty, non-nil map so it is not parsed again.
func parseQuery(raw string) map[string]string {
	query := map[string]string{}
	ref, err := url.Parse(raw)
	if err != nil {
		return query
	}
	for k, values := range dummyBase.ResolveReference(ref).Query() {
		if len(values) > 0 {
			query[k] = values[0]
		}
	}
	return query
}
