package tracker

import "math"

// Vector8 is the 8-dim Kalman state: (cx, cy, a, h, vx, vy, va, vh).
type Vector8 = [8]float64

// Matrix8 is the 8x8 Kalman covariance.
type Matrix8 = [8][8]float64

// Vector4 is the 4-dim measurement: (cx, cy, a, h).
type Vector4 = [4]float64

// Matrix4 is the 4x4 measurement-space covariance.
type Matrix4 = [4][4]float64

const (
	stdWeightPosition = 1.0 / 20.0
	stdWeightVelocity = 1.0 / 160.0
)

// KalmanFilter is a constant-velocity linear Gaussian filter over bounding-box
// state. The motion and observation matrices are fixed, so a single filter
// instance is shared by every Track.
type KalmanFilter struct {
	motionMat Matrix8
	obsMat    [4]Vector8
}

// NewKalmanFilter builds the filter with its fixed motion/observation matrices.
func NewKalmanFilter() *KalmanFilter {
	kf := &KalmanFilter{}
	for i := 0; i < 8; i++ {
		kf.motionMat[i][i] = 1
	}
	for i := 0; i < 4; i++ {
		kf.motionMat[i][4+i] = 1
	}
	for i := 0; i < 4; i++ {
		kf.obsMat[i][i] = 1
	}
	return kf
}

// Initiate returns the posterior (mean, covariance) for a freshly-observed
// measurement: zero velocity, diagonal covariance scaled by height.
func (kf *KalmanFilter) Initiate(meas Vector4) (Vector8, Matrix8) {
	var mean Vector8
	for i := 0; i < 4; i++ {
		mean[i] = meas[i]
	}
	h := meas[3]
	std := Vector8{
		2 * stdWeightPosition * h,
		2 * stdWeightPosition * h,
		1e-2,
		2 * stdWeightPosition * h,
		10 * stdWeightVelocity * h,
		10 * stdWeightVelocity * h,
		1e-5,
		10 * stdWeightVelocity * h,
	}
	var cov Matrix8
	for i := 0; i < 8; i++ {
		cov[i][i] = std[i] * std[i]
	}
	return mean, cov
}

// Predict advances (mean, cov) by one unit time step.
func (kf *KalmanFilter) Predict(mean Vector8, cov Matrix8) (Vector8, Matrix8) {
	h := mean[3]
	std := Vector8{
		stdWeightPosition * h,
		stdWeightPosition * h,
		1e-2,
		stdWeightPosition * h,
		stdWeightVelocity * h,
		stdWeightVelocity * h,
		1e-5,
		stdWeightVelocity * h,
	}
	var q Matrix8
	for i := 0; i < 8; i++ {
		q[i][i] = std[i] * std[i]
	}

	newMean := matVec8(kf.motionMat, mean)
	newCov := addMat8(matMat8(matMat8(kf.motionMat, cov), transpose8(kf.motionMat)), q)
	return newMean, newCov
}

// Project maps (mean, cov) into measurement space, adding innovation noise.
func (kf *KalmanFilter) Project(mean Vector8, cov Matrix8) (Vector4, Matrix4) {
	h := mean[3]
	std := Vector4{
		stdWeightPosition * h,
		stdWeightPosition * h,
		1e-1,
		stdWeightPosition * h,
	}
	var r Matrix4
	for i := 0; i < 4; i++ {
		r[i][i] = std[i] * std[i]
	}

	projMean := obsMatVec(kf.obsMat, mean)
	projCov := addMat4(obsCovProject(kf.obsMat, cov), r)
	return projMean, projCov
}

// Update performs the Kalman correction step given a new measurement.
// Returns NumericError if the innovation covariance is singular.
func (kf *KalmanFilter) Update(mean Vector8, cov Matrix8, meas Vector4) (Vector8, Matrix8, error) {
	projMean, projCov := kf.Project(mean, cov)

	var innovation Vector4
	for i := 0; i < 4; i++ {
		innovation[i] = meas[i] - projMean[i]
	}

	sInv, err := invert4x4(projCov)
	if err != nil {
		return Vector8{}, Matrix8{}, err
	}

	// pht = cov * H^T, an 8x4 matrix.
	var pht [8]Vector4
	for i := 0; i < 8; i++ {
		for j := 0; j < 4; j++ {
			sum := 0.0
			for k := 0; k < 8; k++ {
				sum += cov[i][k] * kf.obsMat[j][k]
			}
			pht[i][j] = sum
		}
	}

	// gain = pht * sInv, an 8x4 matrix.
	var gain [8]Vector4
	for i := 0; i < 8; i++ {
		for j := 0; j < 4; j++ {
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += pht[i][k] * sInv[k][j]
			}
			gain[i][j] = sum
		}
	}

	newMean := mean
	for i := 0; i < 8; i++ {
		delta := 0.0
		for j := 0; j < 4; j++ {
			delta += gain[i][j] * innovation[j]
		}
		newMean[i] = mean[i] + delta
	}

	// newCov = cov - gain * projCov * gain^T
	var gainProj [8]Vector4
	for i := 0; i < 8; i++ {
		for j := 0; j < 4; j++ {
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += gain[i][k] * projCov[k][j]
			}
			gainProj[i][j] = sum
		}
	}
	newCov := cov
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += gainProj[i][k] * gain[j][k]
			}
			newCov[i][j] = cov[i][j] - sum
		}
	}

	return newMean, newCov, nil
}

func matVec8(m Matrix8, v Vector8) Vector8 {
	var out Vector8
	for i := 0; i < 8; i++ {
		sum := 0.0
		for j := 0; j < 8; j++ {
			sum += m[i][j] * v[j]
		}
		out[i] = sum
	}
	return out
}

func matMat8(a, b Matrix8) Matrix8 {
	var out Matrix8
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			sum := 0.0
			for k := 0; k < 8; k++ {
				sum += a[i][k] * b[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

func transpose8(m Matrix8) Matrix8 {
	var out Matrix8
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			out[j][i] = m[i][j]
		}
	}
	return out
}

func addMat8(a, b Matrix8) Matrix8 {
	var out Matrix8
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			out[i][j] = a[i][j] + b[i][j]
		}
	}
	return out
}

func addMat4(a, b Matrix4) Matrix4 {
	var out Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = a[i][j] + b[i][j]
		}
	}
	return out
}

func obsMatVec(h [4]Vector8, v Vector8) Vector4 {
	var out Vector4
	for i := 0; i < 4; i++ {
		sum := 0.0
		for j := 0; j < 8; j++ {
			sum += h[i][j] * v[j]
		}
		out[i] = sum
	}
	return out
}

// obsCovProject computes H * cov * H^T for the fixed observation matrix H.
func obsCovProject(h [4]Vector8, cov Matrix8) Matrix4 {
	var hCov [4]Vector8
	for i := 0; i < 4; i++ {
		for j := 0; j < 8; j++ {
			sum := 0.0
			for k := 0; k < 8; k++ {
				sum += h[i][k] * cov[k][j]
			}
			hCov[i][j] = sum
		}
	}
	var out Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			sum := 0.0
			for k := 0; k < 8; k++ {
				sum += hCov[i][k] * h[j][k]
			}
			out[i][j] = sum
		}
	}
	return out
}

// invert4x4 inverts a 4x4 matrix via cofactor expansion, avoiding any
// BLAS/LAPACK dependency. Returns NumericError if the determinant is
// within 1e-12 of zero.
func invert4x4(m Matrix4) (Matrix4, error) {
	var cof Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			cof[i][j] = cofactor3x3(m, i, j)
		}
	}

	det := m[0][0]*cof[0][0] - m[0][1]*cof[0][1] + m[0][2]*cof[0][2] - m[0][3]*cof[0][3]
	if math.Abs(det) < 1e-12 {
		return Matrix4{}, &NumericError{Reason: "singular innovation covariance"}
	}

	var inv Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			sign := 1.0
			if (i+j)%2 != 0 {
				sign = -1.0
			}
			// adjugate is the transpose of the cofactor matrix.
			inv[j][i] = sign * cof[i][j] / det
		}
	}
	return inv, nil
}

// cofactor3x3 returns the minor determinant of m with row i and column j removed.
func cofactor3x3(m Matrix4, i, j int) float64 {
	var rows, cols [3]int
	ri := 0
	for r := 0; r < 4; r++ {
		if r == i {
			continue
		}
		rows[ri] = r
		ri++
	}
	ci := 0
	for c := 0; c < 4; c++ {
		if c == j {
			continue
		}
		cols[ci] = c
		ci++
	}

	a := m[rows[0]][cols[0]]
	b := m[rows[0]][cols[1]]
	c := m[rows[0]][cols[2]]
	d := m[rows[1]][cols[0]]
	e := m[rows[1]][cols[1]]
	f := m[rows[1]][cols[2]]
	g := m[rows[2]][cols[0]]
	h := m[rows[2]][cols[1]]
	k := m[rows[2]][cols[2]]

	return a*(e*k-f*h) - b*(d*k-f*g) + c*(d*h-e*g)
}
