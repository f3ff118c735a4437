package workflow

// Recorder observes the outcome of every state-changing operation. A nil
// error is a success.
type Recorder interface {
	Operation(op string, err error)
}

type nopRecorder struct{}

func (nopRecorder) Operation(string, error) {}
