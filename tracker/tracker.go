package tracker

import (
	"math"

	"github.com/pkg/errors"
)

// Config holds the tunable thresholds for a Tracker. Zero-value Config is not
// valid; use DefaultConfig as a starting point.
type Config struct {
	TrackThresh float64
	MatchThresh float64
	TrackBuffer int
	FrameRate   float64
}

// DefaultConfig returns the spec's default thresholds.
func DefaultConfig() Config {
	return Config{
		TrackThresh: 0.5,
		MatchThresh: 0.8,
		TrackBuffer: 30,
		FrameRate:   30,
	}
}

func (c Config) validate() error {
	if math.IsNaN(c.TrackThresh) || math.IsInf(c.TrackThresh, 0) {
		return &ConfigurationError{Reason: "track_thresh must be finite"}
	}
	if math.IsNaN(c.MatchThresh) || math.IsInf(c.MatchThresh, 0) {
		return &ConfigurationError{Reason: "match_thresh must be finite"}
	}
	if c.TrackBuffer < 0 {
		return &ConfigurationError{Reason: "track_buffer must not be negative"}
	}
	if c.FrameRate <= 0 || math.IsNaN(c.FrameRate) || math.IsInf(c.FrameRate, 0) {
		return &ConfigurationError{Reason: "frame_rate must be positive and finite"}
	}
	return nil
}

// Tracker is the per-process ByteTrack state machine: three disjoint working
// sets (tracked, lost, removed) plus a frame counter and the shared Kalman
// filter. One instance is owned exclusively by its caller; Update is not
// safe to call concurrently on the same Tracker.
type Tracker struct {
	tracked []*Track
	lost    []*Track
	removed []*Track

	frameID     uint64
	cfg         Config
	maxTimeLost uint64
	kf          *KalmanFilter
}

// NewTracker validates cfg and constructs a Tracker.
func NewTracker(cfg Config) (*Tracker, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	maxTimeLost := uint64(cfg.FrameRate / 30.0 * float64(cfg.TrackBuffer))
	return &Tracker{
		cfg:         cfg,
		maxTimeLost: maxTimeLost,
		kf:          NewKalmanFilter(),
	}, nil
}

// FrameID returns the number of Update calls processed so far.
func (tr *Tracker) FrameID() uint64 {
	return tr.frameID
}

// Lost returns a snapshot of the tracker's current Lost-state tracks.
func (tr *Tracker) Lost() []*Track {
	out := make([]*Track, len(tr.lost))
	for i, t := range tr.lost {
		out[i] = t.Clone()
	}
	return out
}

// Update runs one frame of the ByteTrack association pipeline and returns a
// snapshot of confirmed, actively tracked objects.
func (tr *Tracker) Update(detections []Detection) ([]*Track, error) {
	tr.frameID++

	// Step 1: split by score.
	var highDets, lowDets []Detection
	for _, d := range detections {
		switch {
		case d.Score >= tr.cfg.TrackThresh:
			highDets = append(highDets, d)
		case d.Score > 0.1 && d.Score < tr.cfg.TrackThresh:
			lowDets = append(lowDets, d)
		}
	}
	highTracks := make([]*Track, len(highDets))
	for i, d := range highDets {
		highTracks[i] = NewTrack(d.BBox, d.Score)
	}

	// Step 2: partition current tracked set.
	var unconfirmed, confirmedTracked []*Track
	for _, t := range tr.tracked {
		if !t.IsActivated {
			unconfirmed = append(unconfirmed, t)
		} else {
			confirmedTracked = append(confirmedTracked, t)
		}
	}

	// Step 3-4: pool + predict.
	pool := jointTracks(confirmedTracked, tr.lost)
	MultiPredict(pool, tr.kf)

	var activated, refind, newlyLost, newlyRemoved []*Track

	// Step 5-6: first association against high-score detections.
	cost := IoUDistance(trackRects(pool), trackRects(highTracks))
	FuseScore(cost, tracksAsDetections(highTracks))
	res := LinearAssignment(cost, tr.cfg.MatchThresh)

	matchedPool := make(map[int]bool, len(res.Matches))
	matchedHigh := make(map[int]bool, len(res.Matches))
	for _, m := range res.Matches {
		pi, hi := m[0], m[1]
		matchedPool[pi] = true
		matchedHigh[hi] = true
		track, det := pool[pi], highTracks[hi]
		if track.State == StateTracked {
			if err := track.Update(det, tr.kf, tr.frameID); err != nil {
				return nil, errors.Wrapf(err, "update track %d in first association", track.ID)
			}
			activated = append(activated, track)
		} else {
			if err := track.Reactivate(det, tr.kf, tr.frameID, false); err != nil {
				return nil, errors.Wrapf(err, "reactivate track %d in first association", track.ID)
			}
			refind = append(refind, track)
		}
	}

	// Step 7-8: second association against low-score detections.
	var rTracked []*Track
	for i, t := range pool {
		if !matchedPool[i] && t.State == StateTracked {
			rTracked = append(rTracked, t)
		}
	}
	lowTracks := make([]*Track, len(lowDets))
	for i, d := range lowDets {
		lowTracks[i] = NewTrack(d.BBox, d.Score)
	}
	cost2 := IoUDistance(trackRects(rTracked), trackRects(lowTracks))
	res2 := LinearAssignment(cost2, 0.5)

	matchedR := make(map[int]bool, len(res2.Matches))
	for _, m := range res2.Matches {
		ri, li := m[0], m[1]
		matchedR[ri] = true
		track, det := rTracked[ri], lowTracks[li]
		if track.State == StateTracked {
			if err := track.Update(det, tr.kf, tr.frameID); err != nil {
				return nil, errors.Wrapf(err, "update track %d in second association", track.ID)
			}
			activated = append(activated, track)
		} else {
			if err := track.Reactivate(det, tr.kf, tr.frameID, false); err != nil {
				return nil, errors.Wrapf(err, "reactivate track %d in second association", track.ID)
			}
			refind = append(refind, track)
		}
	}
	for i, t := range rTracked {
		if !matchedR[i] && t.State != StateLost {
			t.MarkLost()
			newlyLost = append(newlyLost, t)
		}
	}

	// Step 9-10: unconfirmed tracks against leftover high-score detections.
	var detRem []*Track
	for i, t := range highTracks {
		if !matchedHigh[i] {
			detRem = append(detRem, t)
		}
	}
	cost3 := IoUDistance(trackRects(unconfirmed), trackRects(detRem))
	FuseScore(cost3, tracksAsDetections(detRem))
	res3 := LinearAssignment(cost3, 0.7)

	matchedUnconfirmed := make(map[int]bool, len(res3.Matches))
	matchedDetRem := make(map[int]bool, len(res3.Matches))
	for _, m := range res3.Matches {
		ui, di := m[0], m[1]
		matchedUnconfirmed[ui] = true
		matchedDetRem[di] = true
		track, det := unconfirmed[ui], detRem[di]
		if err := track.Update(det, tr.kf, tr.frameID); err != nil {
			return nil, errors.Wrapf(err, "update unconfirmed track %d", track.ID)
		}
		activated = append(activated, track)
	}
	for i, t := range unconfirmed {
		if !matchedUnconfirmed[i] {
			t.MarkRemoved()
			newlyRemoved = append(newlyRemoved, t)
		}
	}

	// Step 11: initiate new tracks from surviving high-score detections.
	for i, d := range detRem {
		if matchedDetRem[i] {
			continue
		}
		if d.Score < tr.cfg.TrackThresh+0.1 {
			continue
		}
		d.Activate(tr.kf, tr.frameID)
		activated = append(activated, d)
	}

	// Step 12: expire overdue lost tracks.
	var keptLost []*Track
	for _, t := range tr.lost {
		if tr.frameID-t.EndFrame() > tr.maxTimeLost {
			t.MarkRemoved()
			newlyRemoved = append(newlyRemoved, t)
		} else {
			keptLost = append(keptLost, t)
		}
	}

	// Step 13: reconcile the tracked/lost/removed sets.
	var newTracked []*Track
	for _, t := range activated {
		if t.State == StateTracked {
			newTracked = append(newTracked, t)
		}
	}
	for _, t := range refind {
		if t.State == StateTracked {
			newTracked = append(newTracked, t)
		}
	}
	combinedLost := append(append([]*Track{}, newlyLost...), keptLost...)
	newLost := subTracks(combinedLost, newTracked)
	tr.removed = append(tr.removed, newlyRemoved...)

	// Step 14: deduplicate overlapping tracked/lost pairs.
	newTracked, newLost = removeDuplicateTracks(newTracked, newLost)

	tr.tracked = newTracked
	tr.lost = newLost

	// Step 15: return confirmed, activated tracks.
	var out []*Track
	for _, t := range tr.tracked {
		if t.IsActivated {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func trackRects(tracks []*Track) []Rect {
	rects := make([]Rect, len(tracks))
	for i, t := range tracks {
		rects[i] = t.Rect()
	}
	return rects
}

func tracksAsDetections(tracks []*Track) []Detection {
	dets := make([]Detection, len(tracks))
	for i, t := range tracks {
		dets[i] = Detection{BBox: t.Rect(), Score: t.Score}
	}
	return dets
}

// jointTracks merges a and b, deduplicated by ID with a's entries taking
// priority on a collision.
func jointTracks(a []*Track, b []*Track) []*Track {
	seen := make(map[uint64]bool, len(a)+len(b))
	res := make([]*Track, 0, len(a)+len(b))
	for _, t := range a {
		seen[t.ID] = true
		res = append(res, t)
	}
	for _, t := range b {
		if !seen[t.ID] {
			seen[t.ID] = true
			res = append(res, t)
		}
	}
	return res
}

// subTracks returns the elements of a whose ID is not present in b.
func subTracks(a []*Track, b []*Track) []*Track {
	exclude := make(map[uint64]bool, len(b))
	for _, t := range b {
		exclude[t.ID] = true
	}
	res := make([]*Track, 0, len(a))
	for _, t := range a {
		if !exclude[t.ID] {
			res = append(res, t)
		}
	}
	return res
}

// removeDuplicateTracks drops the younger of any (tracked, lost) pair whose
// boxes overlap by more than 0.85 IoU. Ties drop the tracked-side entry.
func removeDuplicateTracks(tracked, lost []*Track) ([]*Track, []*Track) {
	if len(tracked) == 0 || len(lost) == 0 {
		return tracked, lost
	}

	ious := IoUMatrix(trackRects(tracked), trackRects(lost))
	dupTracked := make([]bool, len(tracked))
	dupLost := make([]bool, len(lost))

	for i := range tracked {
		for j := range lost {
			if ious[i][j] <= 0.85 {
				continue
			}
			ageTracked := tracked[i].FrameID - tracked[i].StartFrame
			ageLost := lost[j].FrameID - lost[j].StartFrame
			if ageTracked > ageLost {
				dupLost[j] = true
			} else {
				dupTracked[i] = true
			}
		}
	}

	resTracked := make([]*Track, 0, len(tracked))
	for i, t := range tracked {
		if !dupTracked[i] {
			resTracked = append(resTracked, t)
		}
	}
	resLost := make([]*Track, 0, len(lost))
	for j, t := range lost {
		if !dupLost[j] {
			resLost = append(resLost, t)
		}
	}
	return resTracked, resLost
}
