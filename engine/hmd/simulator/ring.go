package simulator

// ring tracks which buffer of a swap chain the application may write and which one the compositor shows.
type ring struct {
	length    int
	index     int
	committed int
}

func newRing(length int) *ring {
	return &ring{length: length, committed: -1}
}

// current returns the writable buffer index.
func (r *ring) current() int {
	return r.index
}

// commit hands the writable buffer to the compositor and advances.
func (r *ring) commit() int {
	r.committed = r.index
	r.index = (r.index + 1) % r.length
	return r.committed
}

// latest returns the most recently committed buffer, false before the first commit.
func (r *ring) latest() (int, bool) {
	return r.committed, r.committed >= 0
}
