package logging

import "context"

type fieldsKey struct{}

// Fields are the review identifiers attached to log events by ContextHook.
type Fields struct {
	Command   string
	SessionID string
	BundleID  string
}

// FromContext returns the Fields stored in ctx. Missing values are empty.
func FromContext(ctx context.Context) Fields {
	if ctx == nil {
		return Fields{}
	}
	f, _ := ctx.Value(fieldsKey{}).(Fields)
	return f
}

func with(ctx context.Context, fn func(*Fields)) context.Context {
	f := FromContext(ctx)
	fn(&f)
	return context.WithValue(ctx, fieldsKey{}, f)
}

// WithCommand records the CLI command being run.
func WithCommand(ctx context.Context, name string) context.Context {
	return with(ctx, func(f *Fields) { f.Command = name })
}

// WithSessionID records the review session an operation acts on.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return with(ctx, func(f *Fields) { f.SessionID = sessionID })
}

// WithSession records the review session and, when known, its bundle ID.
// An empty bundleID keeps any bundle ID already in ctx.
func WithSession(ctx context.Context, sessionID, bundleID string) context.Context {
	return with(ctx, func(f *Fields) {
		f.SessionID = sessionID
		if bundleID != "" {
			f.BundleID = bundleID
		}
	})
}
