package dirsize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatorEstimate(t *testing.T) {
	a := newAggregator(time.Hour)
	assert.Equal(t, int64(1), a.estimatedTotal)

	a.apply(delta{Discovered: 100})
	assert.Equal(t, int64(110), a.estimatedTotal)

	a.apply(delta{Discovered: 5})
	assert.Equal(t, int64(115), a.estimatedTotal)

	a.seed(50)
	assert.Equal(t, int64(115), a.estimatedTotal, "seed never lowers the estimate")

	a.apply(delta{Seed: 1000})
	assert.Equal(t, int64(1000), a.estimatedTotal)
}

func TestAggregatorPercentage(t *testing.T) {
	tests := []struct {
		name       string
		discovered int64
		processed  int64
		want       int
	}{
		{name: "nothing done", discovered: 10, processed: 0, want: 0},
		{name: "half of estimate", discovered: 100, processed: 55, want: 50},
		{name: "capped while running", discovered: 10, processed: 10, want: 90},
		{name: "never above cap", discovered: 1, processed: 40, want: 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAggregator(time.Hour)
			a.apply(delta{Discovered: tt.discovered, Processed: tt.processed})

			assert.Equal(t, tt.want, a.percentage())
		})
	}
}

func TestAggregatorThrottle(t *testing.T) {
	a := newAggregator(time.Hour)

	first := a.start("/root")
	assert.Equal(t, 0, first.Percentage)
	assert.Equal(t, "Scanning /root", first.Message)

	for range 1000 {
		_, ok := a.apply(delta{Discovered: 1, Processed: 1, Current: "dir"})
		require.False(t, ok, "updates inside the interval after start are suppressed")
	}

	// Counters keep moving even while updates are suppressed.
	assert.Equal(t, int64(1000), a.processed)
}

func TestAggregatorEmissionRate(t *testing.T) {
	a := newAggregator(20 * time.Millisecond)
	a.start("/root")

	emitted := 0
	start := time.Now()

	for time.Since(start) < 200*time.Millisecond {
		if p, ok := a.apply(delta{Discovered: 2, Processed: 1, Current: "dir"}); ok {
			emitted++

			assert.GreaterOrEqual(t, p.Percentage, 0)
			assert.LessOrEqual(t, p.Percentage, 95)
		}
	}

	elapsed := time.Since(start)

	assert.Positive(t, emitted)
	assert.LessOrEqual(t, float64(emitted), elapsed.Seconds()/0.02+2)
}

func TestAggregatorTerminalUpdates(t *testing.T) {
	a := newAggregator(time.Nanosecond)
	a.start("/root")

	time.Sleep(time.Millisecond)

	p, ok := a.apply(delta{Discovered: 4, Processed: 2, Current: "A"})
	require.True(t, ok)
	assert.Equal(t, 50, p.Percentage)

	canceled := a.canceled()
	assert.Equal(t, 50, canceled.Percentage, "cancellation does not advance the percentage")
	assert.True(t, canceled.Canceled)
	assert.True(t, canceled.Done)

	done := a.complete("/root")
	assert.Equal(t, 100, done.Percentage)
	assert.True(t, done.Done)
	assert.False(t, done.Canceled)
}
