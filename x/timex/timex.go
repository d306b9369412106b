package timex

import "time"

// NowMs is the wall clock in Unix milliseconds, as stamped on published payloads.
func NowMs() int64 { return time.Now().UnixMilli() }

// PeriodFromHz converts a rate to a period. Zero is treated as 1 Hz.
func PeriodFromHz(hz uint32) time.Duration {
	return time.Second / time.Duration(max(hz, 1))
}
