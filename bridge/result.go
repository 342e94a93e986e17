package bridge

// LoadResult is the outcome of AttemptLoad: Loaded(handle) or Failed(reason).
type LoadResult struct {
	handle Handle
	err    error
}

// Loaded returns a successful result holding h.
func Loaded(h Handle) LoadResult {
	return LoadResult{handle: h}
}

// Failed returns a failed result carrying the reason.
func Failed(err error) LoadResult {
	return LoadResult{err: err}
}

func (r LoadResult) OK() bool {
	return r.err == nil && r.handle != nil
}

// Handle returns the loaded handle, or nil for a failed result.
func (r LoadResult) Handle() Handle {
	return r.handle
}

// Err returns the failure reason, or nil for a successful result.
func (r LoadResult) Err() error {
	return r.err
}
