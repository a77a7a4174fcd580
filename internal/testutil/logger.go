// Package testutil provides utilities for testing
package testutil

import (
	"github.com/mbalthasar/stationpix/internal/logging"
)

// NullLogger returns a logger that discards most output
func NullLogger() *logging.Logger {
	return logging.New(logging.LevelError)
}
