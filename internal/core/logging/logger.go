// Package logging holds the zerolog helpers shared by signoff components.
package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component derives a logger from the global logger tagged with
// component=name. Call it after the global logger is configured.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
