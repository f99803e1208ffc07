package tracker

import "fmt"

// ConfigurationError is returned from NewTracker when the supplied Config is
// invalid: non-finite thresholds, a negative buffer, or a non-positive frame
// rate.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid tracker configuration: %s", e.Reason)
}

// NumericError is an internal, fatal error: the Kalman filter's 4x4
// innovation-covariance inversion failed. The prescribed noise model never
// produces this in normal operation; if it occurs, the frame's update for the
// affected track is unsound and must be aborted.
type NumericError struct {
	Reason string
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("kalman filter numeric error: %s", e.Reason)
}
