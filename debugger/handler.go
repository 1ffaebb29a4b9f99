package debugger

// BreakpointHandler is invoked with the live frame when execution reaches
// an offset the handler is registered at. A non-nil resumption overrides
// the debuggee's natural continuation.
type BreakpointHandler interface {
	Hit(frame *Frame) ResumptionValue
}

// BreakpointHandlerFunc adapts a function to BreakpointHandler.
type BreakpointHandlerFunc func(frame *Frame) ResumptionValue

// Hit implements BreakpointHandler.
func (f BreakpointHandlerFunc) Hit(frame *Frame) ResumptionValue {
	return f(frame)
}

// StepHandler is invoked each time the executing bytecode offset changes
// within a frame.
type StepHandler interface {
	Step(frame *Frame) ResumptionValue
}

// StepHandlerFunc adapts a function to StepHandler.
type StepHandlerFunc func(frame *Frame) ResumptionValue

// Step implements StepHandler.
func (f StepHandlerFunc) Step(frame *Frame) ResumptionValue {
	return f(frame)
}

// PopHandler is invoked exactly once, as its frame is popped from the
// stack, with the frame's natural completion. A non-nil resumption
// overrides how the caller observes the frame's completion.
type PopHandler interface {
	Pop(frame *Frame, completion CompletionValue) ResumptionValue
}

// PopHandlerFunc adapts a function to PopHandler.
type PopHandlerFunc func(frame *Frame, completion CompletionValue) ResumptionValue

// Pop implements PopHandler.
func (f PopHandlerFunc) Pop(frame *Frame, completion CompletionValue) ResumptionValue {
	return f(frame, completion)
}
