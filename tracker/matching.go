package tracker

import hungarian "github.com/arthurkushman/go-hungarian"

// sentinelCost is the cost-space padding value for squaring a rectangular
// cost matrix. Real costs live in [0, 1], so any value well above that is
// safe. LinearAssignment does not use it: it solves in similarity space and
// pads with similarity 0 instead.
const sentinelCost = 1e6

// CostMatrix is a rectangular association cost matrix. NumRows/NumCols are
// tracked explicitly rather than inferred from len(Values)/len(Values[0]):
// a 0-row matrix still needs to remember how many columns it has so a
// degenerate dimension doesn't erase the other side's shape.
type CostMatrix struct {
	Values  [][]float64
	NumRows int
	NumCols int
}

// IoUDistance returns the |tracks|x|dets| cost matrix with entry 1 - IoU(a, b).
func IoUDistance(tracks, dets []Rect) CostMatrix {
	iou := IoUMatrix(tracks, dets)
	values := make([][]float64, len(tracks))
	for i, row := range iou {
		distRow := make([]float64, len(row))
		for j, v := range row {
			distRow[j] = 1 - v
		}
		values[i] = distRow
	}
	return CostMatrix{Values: values, NumRows: len(tracks), NumCols: len(dets)}
}

// FuseScore biases a cost matrix toward high-confidence detections in place:
// similarity is multiplied by each column's detection score before being
// converted back to cost.
func FuseScore(cost CostMatrix, dets []Detection) {
	for i := range cost.Values {
		for j := range cost.Values[i] {
			sim := 1 - cost.Values[i][j]
			fused := sim * dets[j].Score
			cost.Values[i][j] = 1 - fused
		}
	}
}

// AssignmentResult is the outcome of a linear assignment: disjoint matched
// pairs plus the unmatched row and column indices.
type AssignmentResult struct {
	Matches       [][2]int
	UnmatchedRows []int
	UnmatchedCols []int
}

// LinearAssignment solves a globally-optimal rectangular minimum-cost
// assignment using the Hungarian algorithm, accepting only pairs whose cost
// does not exceed thresh. Empty row or column dimensions short-circuit: all
// indices on the non-empty side are reported unmatched, using cost.NumRows/
// cost.NumCols rather than the (possibly dimension-erasing) slice shape.
func LinearAssignment(cost CostMatrix, thresh float64) AssignmentResult {
	numRows := cost.NumRows
	numCols := cost.NumCols

	if numRows == 0 || numCols == 0 {
		rows := make([]int, numRows)
		for i := range rows {
			rows[i] = i
		}
		cols := make([]int, numCols)
		for j := range cols {
			cols[j] = j
		}
		return AssignmentResult{UnmatchedRows: rows, UnmatchedCols: cols}
	}

	size := numRows
	if numCols > size {
		size = numCols
	}

	// go-hungarian's solver maximizes, so pad with similarity 0 (the least
	// attractive pairing) instead of the cost-space sentinel.
	padded := make([][]float64, size)
	for i := 0; i < size; i++ {
		padded[i] = make([]float64, size)
		for j := 0; j < size; j++ {
			if i < numRows && j < numCols {
				padded[i][j] = 1 - cost.Values[i][j]
			}
		}
	}

	assignment := hungarian.SolveMax(padded)

	matchedCol := make([]bool, numCols)
	matchedRow := make([]bool, numRows)
	var matches [][2]int
	for row, cols := range assignment {
		if row >= numRows || len(cols) == 0 {
			continue
		}
		var col int
		for c := range cols {
			col = c
			break
		}
		if col >= numCols {
			continue
		}
		if cost.Values[row][col] <= thresh {
			matches = append(matches, [2]int{row, col})
			matchedRow[row] = true
			matchedCol[col] = true
		}
	}

	var unmatchedRows, unmatchedCols []int
	for i := 0; i < numRows; i++ {
		if !matchedRow[i] {
			unmatchedRows = append(unmatchedRows, i)
		}
	}
	for j := 0; j < numCols; j++ {
		if !matchedCol[j] {
			unmatchedCols = append(unmatchedCols, j)
		}
	}

	return AssignmentResult{Matches: matches, UnmatchedRows: unmatchedRows, UnmatchedCols: unmatchedCols}
}
