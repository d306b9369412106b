package timex

import (
	"testing"
	"time"
)

func TestPeriodFromHz(t *testing.T) {
	cases := map[uint32]time.Duration{
		0:    time.Second,
		1:    time.Second,
		500:  2 * time.Millisecond,
		1000: time.Millisecond,
	}
	for hz, want := range cases {
		if got := PeriodFromHz(hz); got != want {
			t.Fatalf("PeriodFromHz(%d) = %v, want %v", hz, got, want)
		}
	}
}
