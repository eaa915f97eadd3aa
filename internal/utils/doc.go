// Package utils provides internal helpers shared by providers: HTTP POST
// helpers for synchronous and streaming (SSE) requests, tolerant JSON
// parsing with automatic repair, and small pointer/string conveniences.
package utils
