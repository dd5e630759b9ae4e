// Package http serves wizard sessions as a JSON API with a server-sent event stream of
// conversation views. Requests are validated against the embedded OpenAPI contract.
package http
