package control

import (
	"fmt"

	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/dynamo"
)

// FromConfig builds the controller named by c.Mode.
func FromConfig(c config.ControlConfig) (dynamo.Controller, error) {
	switch c.Mode {
	case "", "none":
		return NewNone(), nil
	case "freewheel":
		return NewFreewheel(), nil
	case "pid":
		return NewPID(c.Kp, c.Ki, c.Kd, c.TargetOmega), nil
	default:
		return nil, fmt.Errorf("unknown controller: %s", c.Mode)
	}
}
