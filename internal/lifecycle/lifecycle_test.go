package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// orderedComponent records start/stop calls into a shared log.
type orderedComponent struct {
	name    string
	order   int
	log     *[]string
	running bool
}

func (c *orderedComponent) Start() {
	c.running = true
	*c.log = append(*c.log, "start:"+c.name)
}

func (c *orderedComponent) Stop() {
	c.running = false
	*c.log = append(*c.log, "stop:"+c.name)
}

func (c *orderedComponent) IsRunning() bool {
	return c.running
}

func (c *orderedComponent) Order() int {
	return c.order
}

// plainComponent has no ordering requirement.
type plainComponent struct {
	log *[]string
}

func (c *plainComponent) Start()          { *c.log = append(*c.log, "start:plain") }
func (c *plainComponent) Stop()           { *c.log = append(*c.log, "stop:plain") }
func (c *plainComponent) IsRunning() bool { return true }

func TestManager_StopsHighestPrecedenceFirst(t *testing.T) {
	t.Parallel()

	var log []string
	bridge := &orderedComponent{name: "bridge", order: PriorityHighest, log: &log}
	heartbeat := &orderedComponent{name: "heartbeat", order: PriorityDefault, log: &log}

	manager := NewManager()
	// Registration order is the reverse of the expected stop order.
	manager.Add("heartbeat", heartbeat)
	manager.Add("bridge", bridge)

	manager.StartAll()
	manager.StopAll()

	assert.Equal(t, []string{
		"start:bridge",
		"start:heartbeat",
		"stop:bridge",
		"stop:heartbeat",
	}, log)
}

func TestManager_RegistrationOrderBreaksTies(t *testing.T) {
	t.Parallel()

	var log []string
	first := &orderedComponent{name: "first", order: PriorityDefault, log: &log}
	second := &orderedComponent{name: "second", order: PriorityDefault, log: &log}

	manager := NewManager()
	manager.Add("first", first)
	manager.Add("second", second)

	manager.StartAll()

	assert.Equal(t, []string{"start:first", "start:second"}, log)
}

func TestManager_UnorderedComponentUsesDefaultPriority(t *testing.T) {
	t.Parallel()

	var log []string
	plain := &plainComponent{log: &log}
	last := &orderedComponent{name: "last", order: PriorityLowest, log: &log}
	bridge := &orderedComponent{name: "bridge", order: PriorityHighest, log: &log}

	manager := NewManager()
	manager.Add("last", last)
	manager.Add("plain", plain)
	manager.Add("bridge", bridge)

	manager.StartAll()

	assert.Equal(t, []string{"start:bridge", "start:plain", "start:last"}, log)
}

func TestPriorityBounds(t *testing.T) {
	t.Parallel()

	assert.Less(t, PriorityHighest, PriorityDefault)
	assert.Less(t, PriorityDefault, PriorityLowest)
}
