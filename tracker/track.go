package tracker

// Track is one tracked object's identity, lifecycle state, and Kalman posterior.
type Track struct {
	ID          uint64
	State       TrackState
	IsActivated bool
	Score       float64
	StartFrame  uint64
	FrameID     uint64
	TrackletLen int
	hasFilter   bool
	mean        Vector8
	covariance  Matrix8
	initialTLWH Rect
}

// NewTrack constructs a New, unactivated track from a detection box and score.
func NewTrack(tlwh Rect, score float64) *Track {
	return &Track{
		State:       StateNew,
		Score:       score,
		initialTLWH: tlwh,
	}
}

// Rect returns the track's current bounding box: the Kalman posterior's XYAH
// head converted back to TLWH if the filter has been initiated, otherwise the
// original detection box.
func (t *Track) Rect() Rect {
	if !t.hasFilter {
		return t.initialTLWH
	}
	return FromXYAH(t.mean[0], t.mean[1], t.mean[2], t.mean[3])
}

// Velocity returns the Kalman posterior's velocity components (vx, vy, va, vh).
// Zero-valued until the filter has been initiated.
func (t *Track) Velocity() (float64, float64, float64, float64) {
	return t.mean[4], t.mean[5], t.mean[6], t.mean[7]
}

// Activate assigns a fresh ID, initiates the Kalman filter from the initial
// detection box, and transitions the track to Tracked. is_activated is only
// set immediately for the very first frame; all later first sightings require
// a confirming second frame (see Tracker's unconfirmed-track handling).
func (t *Track) Activate(kf *KalmanFilter, frameID uint64) {
	t.ID = nextTrackID()
	cx, cy, a, h := t.initialTLWH.ToXYAH()
	t.mean, t.covariance = kf.Initiate(Vector4{cx, cy, a, h})
	t.hasFilter = true
	t.TrackletLen = 0
	t.State = StateTracked
	if frameID == 1 {
		t.IsActivated = true
	}
	t.FrameID = frameID
	t.StartFrame = frameID
}

// Reactivate Kalman-updates a Lost track with a fresh measurement and returns
// it to Tracked, confirmed. If newID is true a fresh ID is assigned; the core
// never does this, but the operation supports it per spec. A no-op on a
// Removed track: Removed is terminal.
func (t *Track) Reactivate(newTrack *Track, kf *KalmanFilter, frameID uint64, newID bool) error {
	if t.State == StateRemoved {
		return nil
	}
	cx, cy, a, h := newTrack.initialTLWH.ToXYAH()
	mean, cov, err := kf.Update(t.mean, t.covariance, Vector4{cx, cy, a, h})
	if err != nil {
		return err
	}
	t.mean, t.covariance = mean, cov
	t.TrackletLen = 0
	t.State = StateTracked
	t.IsActivated = true
	t.FrameID = frameID
	t.Score = newTrack.Score
	if newID {
		t.ID = nextTrackID()
	}
	return nil
}

// Update Kalman-updates a Tracked track with a new measurement.
func (t *Track) Update(newTrack *Track, kf *KalmanFilter, frameID uint64) error {
	t.FrameID = frameID
	t.TrackletLen++

	cx, cy, a, h := newTrack.initialTLWH.ToXYAH()
	mean, cov, err := kf.Update(t.mean, t.covariance, Vector4{cx, cy, a, h})
	if err != nil {
		return err
	}
	t.mean, t.covariance = mean, cov
	t.State = StateTracked
	t.IsActivated = true
	t.Score = newTrack.Score
	return nil
}

// Predict runs one Kalman prediction step. A Lost track has its height
// velocity zeroed first, preventing the estimated box from drifting in size
// while unobserved.
func (t *Track) Predict(kf *KalmanFilter) {
	if !t.hasFilter {
		return
	}
	mean := t.mean
	if t.State != StateTracked {
		mean[7] = 0
	}
	t.mean, t.covariance = kf.Predict(mean, t.covariance)
}

// MultiPredict runs Predict over a slice of tracks.
func MultiPredict(tracks []*Track, kf *KalmanFilter) {
	for _, t := range tracks {
		t.Predict(kf)
	}
}

// MarkLost transitions the track to Lost. A no-op once the track is Removed:
// Removed is terminal and must never re-enter a working set.
func (t *Track) MarkLost() {
	if t.State == StateRemoved {
		return
	}
	t.State = StateLost
}

// MarkRemoved transitions the track to Removed.
func (t *Track) MarkRemoved() {
	t.State = StateRemoved
}

// EndFrame returns the most recent frame this track was observed at.
func (t *Track) EndFrame() uint64 {
	return t.FrameID
}

// Clone returns a value copy of the track, safe to hand out of the tracker.
func (t *Track) Clone() *Track {
	c := *t
	return &c
}
