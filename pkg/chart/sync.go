package chart

// ViewportSync couples the visible time range of two surfaces. A range
// change on one side is applied to the other exactly once: the syncing
// flag swallows the change event the write itself produces.
type ViewportSync struct {
	syncing     bool
	unsubscribe []func()
}

// Link subscribes both surfaces to each other
func Link(a, b Surface) *ViewportSync {
	s := &ViewportSync{}
	s.unsubscribe = append(s.unsubscribe,
		a.SubscribeVisibleRangeChange(s.forward(b)),
		b.SubscribeVisibleRangeChange(s.forward(a)),
	)
	return s
}

func (s *ViewportSync) forward(to Surface) func(TimeRange) {
	return func(r TimeRange) {
		if r.IsZero() || s.syncing {
			return
		}

		s.syncing = true
		defer func() { s.syncing = false }()

		to.SetVisibleRange(r)
	}
}

// Syncing reports whether a range is being propagated
func (s *ViewportSync) Syncing() bool {
	return s.syncing
}

// Close removes both subscriptions
func (s *ViewportSync) Close() {
	for _, unsubscribe := range s.unsubscribe {
		if unsubscribe != nil {
			unsubscribe()
		}
	}
	s.unsubscribe = nil
}
