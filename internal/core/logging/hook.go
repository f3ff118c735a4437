package logging

import (
	"github.com/rs/zerolog"
)

// ContextHook copies the command, session_id and bundle_id recorded in an
// event's context onto the event.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	f := FromContext(e.GetCtx())

	if f.Command != "" {
		e.Str("command", f.Command)
	}
	if f.SessionID != "" {
		e.Str("session_id", f.SessionID)
	}
	if f.BundleID != "" {
		e.Str("bundle_id", f.BundleID)
	}
}
