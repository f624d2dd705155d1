package sim

// HookPos identifies where in the dispatch cycle a hook fires.
type HookPos int

const (
	// HookPosBeforeEvent fires after the clock advanced, before the process resumes.
	HookPosBeforeEvent HookPos = iota
	// HookPosAfterEvent fires after the process suspended or terminated.
	HookPosAfterEvent
)

// HookCtx carries the information available to a hook.
type HookCtx struct {
	Pos   HookPos
	Now   float64
	Event ScheduledEvent
}

// Hook is a short piece of program invoked by the Scheduler on every dispatch.
// Hooks must not schedule events or touch pools.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(ctx HookCtx)

// Func calls f(ctx).
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}
