package utils

import (
	"io"
	"log/slog"
)

// CloseWithLog closes closer and logs a warning on failure. It is intended
// for deferred cleanup paths where a close error must not override the
// primary error of the surrounding function.
func CloseWithLog(closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		slog.Warn("failed to close resource", "error", err.Error())
	}
}
