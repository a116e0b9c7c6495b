package metrics

import (
	"github.com/san-kum/buoysim/internal/dynamo"
)

// ControlEffort is the mean generator torque applied.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(s *dynamo.Snapshot) {
	c.sum += s.GeneratorTorque
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// ClutchDuty is the share of samples with the clutch engaged.
type ClutchDuty struct {
	name    string
	engaged int
	samples int
}

func NewClutchDuty() *ClutchDuty {
	return &ClutchDuty{name: "clutch_duty"}
}

func (c *ClutchDuty) Name() string { return c.name }

func (c *ClutchDuty) Observe(s *dynamo.Snapshot) {
	if s.ClutchEngaged {
		c.engaged++
	}
	c.samples++
}

func (c *ClutchDuty) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.engaged) / float64(c.samples)
}

func (c *ClutchDuty) Reset() {
	c.engaged = 0
	c.samples = 0
}
