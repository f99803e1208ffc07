package tracker

// TrackState is the lifecycle stage of a Track.
type TrackState int

const (
	// StateNew is the state of a track right after construction, before activation.
	StateNew TrackState = iota
	// StateTracked is an actively updated track, either confirmed or still
	// tentative (see Track.IsActivated).
	StateTracked
	// StateLost is a track that went unmatched and may still be recovered.
	StateLost
	// StateRemoved is a permanently discarded track. Never re-entered into a working set.
	StateRemoved
)

func (s TrackState) String() string {
	switch s {
	case StateNew:
		return "New"
	case StateTracked:
		return "Tracked"
	case StateLost:
		return "Lost"
	case StateRemoved:
		return "Removed"
	default:
		return "Unknown"
	}
}
