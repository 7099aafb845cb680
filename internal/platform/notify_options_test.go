package platform

import (
	"testing"
	"time"
)

func TestTimeoutMillis(t *testing.T) {
	cases := map[time.Duration]int32{
		0:                       -1,
		-time.Second:            -1,
		1500 * time.Millisecond: 1500,
	}
	for in, want := range cases {
		if got := (Options{Timeout: in}).timeoutMillis(); got != want {
			t.Errorf("timeoutMillis(%v) = %d, want %d", in, got, want)
		}
	}
}
