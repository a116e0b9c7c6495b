package control

import (
	"sync"

	"github.com/san-kum/buoysim/internal/dynamo"
)

// Manual returns whatever command the host last set. SetCommand may be
// called from another goroutine.
type Manual struct {
	mu  sync.Mutex
	cmd dynamo.Command
}

func NewManual(cmd dynamo.Command) *Manual {
	return &Manual{cmd: cmd}
}

// SetCommand replaces the command used from the next tick on.
func (m *Manual) SetCommand(cmd dynamo.Command) {
	m.mu.Lock()
	m.cmd = cmd
	m.mu.Unlock()
}

func (m *Manual) Compute(obs dynamo.Observation, t float64) dynamo.Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cmd
}
