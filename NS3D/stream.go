package NS3D

import "fmt"

// BufferID names a logical state or scratch buffer for dependency
// declaration between kernels.
type BufferID string

const (
	BufQ      BufferID = "Q"
	BufU      BufferID = "U"
	BufRhoi   BufferID = "rhoi"
	BufYi     BufferID = "yi"
	BufTrans  BufferID = "transport"
	BufPhi    BufferID = "phi"
	BufGrad   BufferID = "grad"
	BufLam    BufferID = "lambda"
	BufSplit  BufferID = "split"
	BufFace   BufferID = "face"
	BufDiv    BufferID = "div"
	BufGhosts BufferID = "ghosts"
)

// Kernel is one bulk data-parallel operation over the rank's cell grid,
// with its data dependencies declared up front.
type Kernel struct {
	Name   string
	Reads  []BufferID
	Writes []BufferID
	Run    func()
}

// Stream executes kernels for one rank in submission order, the
// equivalent of a single in-order compute stream: a kernel's outputs are
// complete before any later kernel that reads them starts, without a
// rank-wide barrier. Launch validates that every declared read was
// produced earlier in the stream (or marked as an external input), so a
// mis-ordered submission fails loudly instead of consuming stale data.
type Stream struct {
	produced map[BufferID]bool
}

func NewStream(inputs ...BufferID) (s *Stream) {
	s = &Stream{produced: make(map[BufferID]bool)}
	s.MarkInput(inputs...)
	return
}

// MarkInput declares buffers valid before any kernel runs, typically the
// state refreshed by the previous stage's ghost fill.
func (s *Stream) MarkInput(ids ...BufferID) {
	for _, id := range ids {
		s.produced[id] = true
	}
}

func (s *Stream) Launch(k Kernel) {
	for _, r := range k.Reads {
		if !s.produced[r] {
			panic(fmt.Errorf("kernel %s reads buffer %s before any kernel produced it", k.Name, r))
		}
	}
	k.Run()
	for _, w := range k.Writes {
		s.produced[w] = true
	}
}

// Reset invalidates all buffers except the given inputs, starting a new
// dependency epoch (one per stage).
func (s *Stream) Reset(inputs ...BufferID) {
	s.produced = make(map[BufferID]bool)
	s.MarkInput(inputs...)
}
