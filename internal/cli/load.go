package cli

import (
	"github.com/vburojevic/logscope/internal/binder"
)

// load fetches one resource through a binder, the blocking form used by
// single-shot commands. Failures are emitted and returned.
func load[T any](globals *Globals, label string, fetch binder.FetchFunc[T]) (T, error) {
	ctx, cancel := globals.requestContext()
	defer cancel()

	b := binder.New(label, fetch, globals.binderOptions()...)
	defer b.Close()

	snap := b.Load(ctx)
	if snap.State == binder.Failed {
		var zero T
		return zero, failAPI(globals, snap.Err)
	}
	return snap.Data, nil
}
