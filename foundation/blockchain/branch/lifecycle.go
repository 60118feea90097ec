package branch

import (
	"context"

	"github.com/looplab/fsm"
)

// Set of states a block moves through while the pool knows about it.
const (
	StateProposed = "proposed"
	StateRetained = "retained"
	StateHead     = "head"
	StatePruned   = "pruned"
)

// Set of events that move a block between states.
const (
	eventRetain = "retain"
	eventCrown  = "crown"
	eventDemote = "demote"
	eventPrune  = "prune"
)

// newLifecycle constructs the state machine for a block that passed its
// admission checks. Every transition is reported to the event handler.
func newLifecycle(hash string, ev EventHandler) *fsm.FSM {
	return fsm.NewFSM(
		StateProposed,
		fsm.Events{
			{
				Name: eventRetain,
				Src:  []string{StateProposed},
				Dst:  StateRetained,
			},
			{
				Name: eventCrown,
				Src:  []string{StateRetained},
				Dst:  StateHead,
			},
			{
				Name: eventDemote,
				Src:  []string{StateHead},
				Dst:  StateRetained,
			},
			{
				Name: eventPrune,
				Src:  []string{StateRetained, StateHead},
				Dst:  StatePruned,
			},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				ev("branch: lifecycle: blk[%s]: %s: %s -> %s", hash, e.Event, e.Src, e.Dst)
			},
		},
	)
}

// transition moves the node's lifecycle forward. A transition the machine
// refuses means the pool's bookkeeping is broken, so it is reported.
func (p *Pool) transition(n *node, event string) {
	if err := n.state.Event(context.Background(), event); err != nil {
		p.evHandler("branch: lifecycle: blk[%s]: ERROR: %s: %s", n.hash, event, err)
	}
}

// setHead moves the head marker to the specified node.
func (p *Pool) setHead(n *node) {
	if p.head == n {
		return
	}

	if p.head != nil && p.head.state.Current() == StateHead {
		p.transition(p.head, eventDemote)
	}

	p.head = n
	p.transition(n, eventCrown)
}
