package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFrameMetrics(t *testing.T) {
	m := NewFrameMetrics()
	for i := 0; i < 11; i++ {
		m.Update(0.1)
	}
	require.Equal(t, float64(10), m.FPS())

	m = NewFrameMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(0.01)
	}
	require.InDelta(t, 10.0, m.FrameTime(), 1e-9)
}

func TestClock(t *testing.T) {
	c := NewClock()
	c.Update()
	require.Zero(t, c.Elapsed())

	c.Start()
	time.Sleep(5 * time.Millisecond)
	c.Update()
	elapsed := c.Elapsed()
	require.Greater(t, elapsed, 0.0)

	c.Stop()
	c.Update()
	require.Equal(t, elapsed, c.Elapsed())
}
