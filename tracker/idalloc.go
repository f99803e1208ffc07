package tracker

import "sync/atomic"

// trackIDCounter is the process-wide, monotonically increasing track ID source.
// Shared by every Tracker instance in the process so that IDs never collide.
var trackIDCounter uint64

func nextTrackID() uint64 {
	return atomic.AddUint64(&trackIDCounter, 1)
}

// ResetCounter resets the global track-ID allocator to 0. Intended for test
// isolation between scenarios; production code must not call this.
func ResetCounter() {
	atomic.StoreUint64(&trackIDCounter, 0)
}
