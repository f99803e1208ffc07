package tracker

// Rect is an axis-aligned bounding box stored as top-left x/y plus width/height (TLWH).
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewRect builds a Rect directly from TLWH components.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// FromTLBR builds a Rect from top-left/bottom-right corners.
func FromTLBR(x1, y1, x2, y2 float64) Rect {
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// FromXYAH builds a Rect from center x/y, aspect ratio (w/h) and height.
func FromXYAH(cx, cy, aspect, height float64) Rect {
	width := aspect * height
	return Rect{X: cx - width/2.0, Y: cy - height/2.0, Width: width, Height: height}
}

// ToTLWH returns (x, y, width, height).
func (r Rect) ToTLWH() (float64, float64, float64, float64) {
	return r.X, r.Y, r.Width, r.Height
}

// ToTLBR returns (x1, y1, x2, y2).
func (r Rect) ToTLBR() (float64, float64, float64, float64) {
	return r.X, r.Y, r.X + r.Width, r.Y + r.Height
}

// ToXYAH returns (center x, center y, aspect ratio w/h, height). Aspect ratio is 0 when height is 0.
func (r Rect) ToXYAH() (float64, float64, float64, float64) {
	cx := r.X + r.Width/2.0
	cy := r.Y + r.Height/2.0
	aspect := 0.0
	if r.Height > 0 {
		aspect = r.Width / r.Height
	}
	return cx, cy, aspect, r.Height
}

// Center returns the box's center point.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2.0, r.Y + r.Height/2.0
}

// Area returns width * height.
func (r Rect) Area() float64 {
	return r.Width * r.Height
}

// IoU computes intersection-over-union with another rectangle. Returns 0 for
// degenerate or non-overlapping boxes instead of NaN.
func (r Rect) IoU(other Rect) float64 {
	xA := maxFloat64(r.X, other.X)
	yA := maxFloat64(r.Y, other.Y)
	xB := minFloat64(r.X+r.Width, other.X+other.Width)
	yB := minFloat64(r.Y+r.Height, other.Y+other.Height)

	interW := maxFloat64(0, xB-xA)
	interH := maxFloat64(0, yB-yA)
	interArea := interW * interH

	union := r.Area() + other.Area() - interArea
	if union <= 0 {
		return 0
	}
	return interArea / union
}

// IoUMatrix returns the |a|x|b| matrix of pairwise IoU values.
func IoUMatrix(a, b []Rect) [][]float64 {
	m := make([][]float64, len(a))
	for i, ra := range a {
		row := make([]float64, len(b))
		for j, rb := range b {
			row[j] = ra.IoU(rb)
		}
		m[i] = row
	}
	return m
}

func maxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
