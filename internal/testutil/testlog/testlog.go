// Package testlog wires the process logger into tests.
package testlog

import (
	"testing"

	"github.com/rs/zerolog/log"

	"github.com/des256/deli-sub001/logging"
)

func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	log.Debug().Str("test", t.Name()).Msg("start")
}
