package inference

import "math/rand"

// Chooser picks an index in [0, n). Implementations must be safe for concurrent use.
type Chooser interface {
	Intn(n int) int
}

type randomChooser struct{}

// NewRandomChooser returns a Chooser backed by the runtime's global random source.
func NewRandomChooser() Chooser {
	return randomChooser{}
}

func (randomChooser) Intn(n int) int {
	return rand.Intn(n)
}
