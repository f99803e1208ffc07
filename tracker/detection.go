package tracker

// Detection is a single per-frame observation from an external detector: a
// bounding box and a confidence score in [0, 1]. No identity is carried in.
type Detection struct {
	BBox  Rect
	Score float64
}

// NewDetection builds a Detection from a TLBR bounding box and a score.
func NewDetection(x1, y1, x2, y2, score float64) Detection {
	return Detection{BBox: FromTLBR(x1, y1, x2, y2), Score: score}
}

// DetectionSource is the narrow interface the tracking core consumes from an
// external detection backend. The core places no constraints on image format
// and never inspects raw image bytes itself; it only sees the returned
// Detections. Any error the backend returns is propagated verbatim.
type DetectionSource interface {
	Detect(raw []byte, width, height uint32) ([]Detection, error)
}
