// Package api handles incoming HTTP requests, request decoding and response
// formatting. Handlers translate HTTP concerns into service calls and map
// service errors back to status codes without leaking internal details.
package api
