package NS3D

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamOrdering(t *testing.T) {
	var (
		s     = NewStream(BufQ)
		trace []string
	)
	record := func(name string) func() {
		return func() { trace = append(trace, name) }
	}
	s.Launch(Kernel{
		Name: "transport", Reads: []BufferID{BufQ},
		Writes: []BufferID{BufTrans}, Run: record("transport"),
	})
	s.Launch(Kernel{
		Name: "gradients", Reads: []BufferID{BufQ, BufTrans},
		Writes: []BufferID{BufGrad}, Run: record("gradients"),
	})
	assert.Equal(t, []string{"transport", "gradients"}, trace)
}

func TestStreamUnproducedReadPanics(t *testing.T) {
	s := NewStream(BufQ)
	assert.Panics(t, func() {
		s.Launch(Kernel{
			Name: "reconstruct", Reads: []BufferID{BufSplit},
			Writes: []BufferID{BufFace}, Run: func() {},
		})
	})
}

func TestStreamReset(t *testing.T) {
	s := NewStream(BufQ)
	s.Launch(Kernel{
		Name: "sensor", Reads: []BufferID{BufQ},
		Writes: []BufferID{BufPhi}, Run: func() {},
	})
	// A new epoch forgets everything but its declared inputs
	s.Reset(BufQ)
	assert.Panics(t, func() {
		s.Launch(Kernel{
			Name: "reconstruct", Reads: []BufferID{BufPhi}, Run: func() {},
		})
	})
	s.Launch(Kernel{
		Name: "sensor", Reads: []BufferID{BufQ},
		Writes: []BufferID{BufPhi}, Run: func() {},
	})
}
