package engine

import (
	"fmt"
	"slices"
)

// FrameState is the position of the frame loop within one iteration.
type FrameState int

const (
	StateIdle FrameState = iota
	StatePosePredicted
	StateBufferAcquired
	StateEyesRendered
	StateCommitted
	StateSubmitted
	StateMirrorBlitted
)

func (s FrameState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePosePredicted:
		return "pose_predicted"
	case StateBufferAcquired:
		return "buffer_acquired"
	case StateEyesRendered:
		return "eyes_rendered"
	case StateCommitted:
		return "committed"
	case StateSubmitted:
		return "submitted"
	case StateMirrorBlitted:
		return "mirror_blitted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// frameTransitions lists the legal successors of each state.
// Every state after Idle may fall back to Idle when a recoverable per-frame error ends the iteration early.
// BufferAcquired may jump to Committed when binding the buffer fails, so the ring stays paired.
var frameTransitions = map[FrameState][]FrameState{
	StateIdle:           {StatePosePredicted},
	StatePosePredicted:  {StateBufferAcquired, StateIdle},
	StateBufferAcquired: {StateEyesRendered, StateCommitted, StateIdle},
	StateEyesRendered:   {StateCommitted, StateIdle},
	StateCommitted:      {StateSubmitted, StateIdle},
	StateSubmitted:      {StateMirrorBlitted, StateIdle},
	StateMirrorBlitted:  {StateIdle},
}

// CanTransition reports whether the loop may move from one state to another.
//
// Parameters:
//   - from: the current state
//   - to: the requested next state
//
// Returns:
//   - bool: true if the edge is in the transition table
func CanTransition(from, to FrameState) bool {
	return slices.Contains(frameTransitions[from], to)
}
