// Package requestid attaches a correlation id to every HTTP request.
//
// Middleware reuses the client's X-Request-ID header when it is made of
// letters, digits, '-' and '_' and is at most 128 bytes long; otherwise it
// generates a UUIDv4. LoggerExtractor feeds the id to the logger so all
// records of one request can be correlated with its tenant.
package requestid
