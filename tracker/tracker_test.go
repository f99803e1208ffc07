package tracker

import "testing"

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	ResetCounter()
	t.Cleanup(ResetCounter)
	tr, err := NewTracker(DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error constructing tracker: %v", err)
	}
	return tr
}

func TestNewTrackerRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FrameRate = 0
	if _, err := NewTracker(cfg); err == nil {
		t.Fatal("expected error for zero frame_rate")
	}
}

func TestIdentityPersistsAcrossMotion(t *testing.T) {
	tr := newTestTracker(t)

	for i := 0; i < 5; i++ {
		x := float64(10 * i)
		out, err := tr.Update([]Detection{NewDetection(x, 0, x+30, 40, 0.9)})
		if err != nil {
			t.Fatalf("frame %d: unexpected error: %v", i, err)
		}
		// A track created on the tracker's very first frame is confirmed
		// immediately; only later first sightings need a second frame.
		if len(out) != 1 {
			t.Fatalf("frame %d: expected exactly one confirmed track, got %d", i, len(out))
		}
		if out[0].ID != 1 {
			t.Errorf("frame %d: expected stable id 1, got %d", i, out[0].ID)
		}
	}
}

func TestLowConfidenceOcclusionRecovery(t *testing.T) {
	tr := newTestTracker(t)

	box := NewDetection(0, 0, 30, 40, 0.9)
	if _, err := tr.Update([]Detection{box}); err != nil {
		t.Fatalf("frame 1: %v", err)
	}
	out, err := tr.Update([]Detection{box})
	if err != nil {
		t.Fatalf("frame 2: %v", err)
	}
	if len(out) != 1 || out[0].ID != 1 {
		t.Fatalf("frame 2: expected confirmed id 1, got %v", out)
	}

	// Partial occlusion: detector confidence drops below TrackThresh but
	// stays above the low-score floor, and the box still roughly overlaps.
	occluded := NewDetection(0, 0, 30, 40, 0.3)
	out, err = tr.Update([]Detection{occluded})
	if err != nil {
		t.Fatalf("frame 3: %v", err)
	}
	if len(out) != 1 || out[0].ID != 1 {
		t.Fatalf("frame 3: expected track to survive low-score occlusion with id 1, got %v", out)
	}

	out, err = tr.Update([]Detection{box})
	if err != nil {
		t.Fatalf("frame 4: %v", err)
	}
	if len(out) != 1 || out[0].ID != 1 {
		t.Fatalf("frame 4: expected recovered track with id 1, got %v", out)
	}
}

func TestTrackExpiryAfterMaxTimeLost(t *testing.T) {
	tr := newTestTracker(t)

	box := NewDetection(0, 0, 30, 40, 0.9)
	if _, err := tr.Update([]Detection{box}); err != nil {
		t.Fatalf("frame 1: %v", err)
	}

	// maxTimeLost is 30 for the default config; drive the tracker through
	// enough empty frames that the lost-track sweep evicts it on its own,
	// with no competing detection in that same Update call. 31 empty frames
	// land the eviction on frame_id 32 (32-1 > 30), one frame before the
	// track reappears, so stage-1 association never gets a chance to
	// Reactivate the stale Lost track onto the new detection first.
	for i := 0; i < 31; i++ {
		if _, err := tr.Update(nil); err != nil {
			t.Fatalf("empty frame %d: %v", i, err)
		}
	}

	// A new detection at the same place now starts a brand new identity.
	if _, err := tr.Update([]Detection{box}); err != nil {
		t.Fatalf("re-detect frame: %v", err)
	}
	out, err := tr.Update([]Detection{box})
	if err != nil {
		t.Fatalf("confirm frame: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected exactly one confirmed track, got %v", out)
	}
	if out[0].ID == 1 {
		t.Errorf("expected a fresh id after expiry, the original id 1 should not be reused")
	}
}

func TestNewTrackRejectedBelowActivationThreshold(t *testing.T) {
	tr := newTestTracker(t)

	// Score is >= TrackThresh (0.5) so it's a "high" detection, but below
	// TrackThresh+0.1 (0.6), which step 11 requires to seed a brand new track.
	out, err := tr.Update([]Detection{NewDetection(0, 0, 30, 40, 0.55)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no confirmed tracks from a sub-activation-threshold detection, got %v", out)
	}
}

func TestTwoDisjointObjectsGetDistinctStableIDs(t *testing.T) {
	tr := newTestTracker(t)

	a := NewDetection(0, 0, 30, 40, 0.9)
	b := NewDetection(500, 500, 530, 540, 0.9)

	if _, err := tr.Update([]Detection{a, b}); err != nil {
		t.Fatalf("frame 1: %v", err)
	}
	out, err := tr.Update([]Detection{a, b})
	if err != nil {
		t.Fatalf("frame 2: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected two confirmed tracks, got %d", len(out))
	}
	if out[0].ID == out[1].ID {
		t.Errorf("expected distinct ids, both were %d", out[0].ID)
	}

	out2, err := tr.Update([]Detection{a, b})
	if err != nil {
		t.Fatalf("frame 3: %v", err)
	}
	idsByPosition := map[bool]uint64{}
	for _, track := range out2 {
		x, y, _, _ := track.Rect().ToTLWH()
		idsByPosition[x > 100 || y > 100] = track.ID
	}
	for _, track := range out {
		x, y, _, _ := track.Rect().ToTLWH()
		if idsByPosition[x > 100 || y > 100] != track.ID {
			t.Errorf("expected each object to retain its own id across frames")
		}
	}
}

func TestRemoveDuplicateTracksDropsTrackedSideOnTie(t *testing.T) {
	tracked := &Track{ID: 1, State: StateTracked, StartFrame: 1, FrameID: 5, initialTLWH: NewRect(0, 0, 10, 10)}
	lost := &Track{ID: 2, State: StateLost, StartFrame: 1, FrameID: 5, initialTLWH: NewRect(0.5, 0, 10, 10)}

	resTracked, resLost := removeDuplicateTracks([]*Track{tracked}, []*Track{lost})

	if len(resTracked) != 0 {
		t.Errorf("expected the tracked-side entry dropped on a tie, got %v", resTracked)
	}
	if len(resLost) != 1 || resLost[0].ID != 2 {
		t.Errorf("expected the lost-side entry kept, got %v", resLost)
	}
}

func TestRemoveDuplicateTracksKeepsOlderOnNonTie(t *testing.T) {
	youngTracked := &Track{ID: 1, State: StateTracked, StartFrame: 4, FrameID: 5, initialTLWH: NewRect(0, 0, 10, 10)}
	olderLost := &Track{ID: 2, State: StateLost, StartFrame: 1, FrameID: 5, initialTLWH: NewRect(0.5, 0, 10, 10)}

	resTracked, resLost := removeDuplicateTracks([]*Track{youngTracked}, []*Track{olderLost})

	if len(resTracked) != 0 {
		t.Errorf("expected the younger tracked entry dropped, got %v", resTracked)
	}
	if len(resLost) != 1 {
		t.Errorf("expected the older lost entry kept, got %v", resLost)
	}
}

func TestRemoveDuplicateTracksIgnoresNonOverlapping(t *testing.T) {
	tracked := &Track{ID: 1, State: StateTracked, StartFrame: 1, FrameID: 5, initialTLWH: NewRect(0, 0, 10, 10)}
	lost := &Track{ID: 2, State: StateLost, StartFrame: 1, FrameID: 5, initialTLWH: NewRect(500, 500, 10, 10)}

	resTracked, resLost := removeDuplicateTracks([]*Track{tracked}, []*Track{lost})
	if len(resTracked) != 1 || len(resLost) != 1 {
		t.Errorf("expected both kept when boxes do not overlap, got tracked=%v lost=%v", resTracked, resLost)
	}
}
