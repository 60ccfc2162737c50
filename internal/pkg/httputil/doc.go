// Package httputil provides shared HTTP response/request utilities for handlers.
//
// Every admin handler writes through these helpers so that success bodies
// and the {"error": "..."} envelope stay consistent across endpoints.
package httputil
