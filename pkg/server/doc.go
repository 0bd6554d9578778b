// Package server implements a translating Simple Repository API proxy.
//
// The proxy fetches documents from any upstream index through an
// [Upstream] (usually a *pypi.Client) and serves them back in whichever
// representation the requesting installer negotiates: PEP 691 JSON or
// PEP 503 HTML. An HTML-only upstream can thus be consumed as JSON and the
// other way round.
//
// # Routes
//
//	GET /simple/            project index
//	GET /simple/{project}/  project details; non-normalized names redirect
//	GET /healthz            liveness probe
//
// Every response carries an X-Request-Id header. A valid UUID sent by the
// client is reused; otherwise a new one is generated.
//
// The server speaks HTTP/1.1 and cleartext HTTP/2 (h2c).
package server
