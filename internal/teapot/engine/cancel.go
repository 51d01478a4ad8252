package engine

import "context"

// Cancel discards the pending intent built by the most recent Submit
// call without creating a session or touching the working tree. It is
// idempotent: cancelling with nothing pending succeeds silently.
func (e *Engine) Cancel(context.Context) error {
	unlock := e.lock()
	defer unlock()

	e.takePending()
	return nil
}
