package timeutil

import "time"

// NowUnix returns the current time in seconds since the epoch. All
// persisted timestamps in mslide use this resolution.
func NowUnix() int64 {
	return time.Now().Unix()
}
