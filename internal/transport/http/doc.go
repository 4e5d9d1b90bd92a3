// Package http implements the HTTP transport layer for the AdPulse API.
// Handlers are thin: they parse and validate the request, call the service
// layer, and render the response. Errors are returned as RFC 7807 problem
// documents through the shared error handler.
package http
