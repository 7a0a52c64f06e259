package warehouse

// EventRegistry holds named FIFO queues of arbitrary event payloads, the
// way operation_queue.go's entityOperationsQueue buffers entity
// operations - generalized here from one implicit queue of entity ops to
// N named queues of any caller-defined payload type.
type EventRegistry struct {
	queues map[string][]any
}

func newEventRegistry() *EventRegistry {
	return &EventRegistry{queues: make(map[string][]any)}
}

// Send appends event onto the named queue, creating it if necessary.
func (r *EventRegistry) Send(name string, event any) {
	r.queues[name] = append(r.queues[name], event)
}

// Slice returns the named queue's current contents without clearing it.
func (r *EventRegistry) Slice(name string) []any {
	return r.queues[name]
}

// Clear empties the named queue.
func (r *EventRegistry) Clear(name string) {
	delete(r.queues, name)
}

// ClearAll empties every queue.
func (r *EventRegistry) ClearAll() {
	r.queues = make(map[string][]any)
}

// EventsAs type-asserts every payload on the named queue to T, skipping
// any that don't match - the generic counterpart to Slice for callers
// who know a queue's payload type.
func EventsAs[T any](r *EventRegistry, name string) []T {
	raw := r.Slice(name)
	out := make([]T, 0, len(raw))
	for _, v := range raw {
		if tv, ok := v.(T); ok {
			out = append(out, tv)
		}
	}
	return out
}
