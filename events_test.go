package grove

import (
	"testing"
	"time"
)

func entityEvent(name EventName, id Entity) EntityEvent {
	return EntityEvent{Name: name, EntityID: id, Timestamp: time.Now()}
}

func TestChannelOnEmitDeliversOncePerEmit(t *testing.T) {
	c := NewChannel()
	var got []Entity
	c.On(EventAfterCreate, func(ev Event) {
		got = append(got, ev.(EntityEvent).EntityID)
	})

	c.Emit(entityEvent(EventAfterCreate, 1))
	c.Emit(entityEvent(EventAfterCreate, 2))

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("deliveries = %v, want [1 2]", got)
	}
}

func TestChannelDeliversInRegistrationOrder(t *testing.T) {
	c := NewChannel()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		c.On(EventRenderRequested, func(Event) { order = append(order, i) })
	}
	c.Emit(RenderEvent{Reason: "test"})
	for i, v := range order {
		if v != i {
			t.Fatalf("delivery order = %v, want ascending", order)
		}
	}
}

func TestChannelOnceFiresAtMostOnce(t *testing.T) {
	c := NewChannel()
	count := 0
	c.Once(EventAfterCreate, func(Event) { count++ })

	c.Emit(entityEvent(EventAfterCreate, 1))
	c.Emit(entityEvent(EventAfterCreate, 2))
	c.Emit(entityEvent(EventAfterCreate, 3))

	if count != 1 {
		t.Errorf("once handler fired %d times, want 1", count)
	}
	if c.ListenerCount(EventAfterCreate) != 0 {
		t.Errorf("ListenerCount = %d after once fired, want 0", c.ListenerCount(EventAfterCreate))
	}
}

func TestChannelRemoveStopsDelivery(t *testing.T) {
	c := NewChannel()
	count := 0
	sub := c.On(EventAfterCreate, func(Event) { count++ })

	c.Emit(entityEvent(EventAfterCreate, 1))
	sub.Remove()
	sub.Remove() // second removal is harmless
	c.Emit(entityEvent(EventAfterCreate, 2))

	if count != 1 {
		t.Errorf("handler fired %d times, want 1", count)
	}
}

func TestChannelOffIsRemove(t *testing.T) {
	c := NewChannel()
	count := 0
	sub := c.On(EventAfterCreate, func(Event) { count++ })
	c.Off(sub)
	c.Emit(entityEvent(EventAfterCreate, 1))
	if count != 0 {
		t.Errorf("handler fired %d times after Off, want 0", count)
	}
}

func TestChannelClearDropsAllHandlers(t *testing.T) {
	c := NewChannel()
	count := 0
	c.On(EventAfterCreate, func(Event) { count++ })
	c.On(EventRenderRequested, func(Event) { count++ })
	c.Clear()

	c.Emit(entityEvent(EventAfterCreate, 1))
	c.Emit(RenderEvent{})
	if count != 0 {
		t.Errorf("handlers fired %d times after Clear, want 0", count)
	}
	if c.ListenerCount(EventAfterCreate) != 0 {
		t.Error("ListenerCount nonzero after Clear")
	}
}

func TestChannelPanickingHandlerDoesNotBlockSiblings(t *testing.T) {
	c := NewChannel()
	var errs []ErrorEvent
	c.On(EventErrorOccurred, func(ev Event) { errs = append(errs, ev.(ErrorEvent)) })

	sibling := 0
	c.On(EventAfterCreate, func(Event) { panic("boom") })
	c.On(EventAfterCreate, func(Event) { sibling++ })

	c.Emit(entityEvent(EventAfterCreate, 1))

	if sibling != 1 {
		t.Errorf("sibling handler fired %d times, want 1", sibling)
	}
	if len(errs) != 1 {
		t.Fatalf("error:occurred emitted %d times, want 1", len(errs))
	}
	if !errs[0].Recoverable {
		t.Error("handler panic reported as unrecoverable")
	}
}

func TestChannelPanicInErrorHandlerDoesNotRecurse(t *testing.T) {
	c := NewChannel()
	calls := 0
	c.On(EventErrorOccurred, func(Event) {
		calls++
		panic("handler of last resort failed")
	})
	c.Emit(ErrorEvent{Source: "test", Message: "original"})
	if calls != 1 {
		t.Errorf("error handler fired %d times, want 1 (no recursion)", calls)
	}
}

func TestChannelBatchingDeliversFIFOOnFlush(t *testing.T) {
	c := NewChannel()
	c.SetBatching(16)
	var got []Entity
	c.On(EventAfterCreate, func(ev Event) { got = append(got, ev.(EntityEvent).EntityID) })

	c.Emit(entityEvent(EventAfterCreate, 1))
	c.Emit(entityEvent(EventAfterCreate, 2))
	if len(got) != 0 {
		t.Fatal("batched emit delivered before Flush")
	}

	c.Flush()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("flushed deliveries = %v, want [1 2]", got)
	}
}

func TestChannelBatchingFlushesAtBound(t *testing.T) {
	c := NewChannel()
	c.SetBatching(3)
	count := 0
	c.On(EventAfterCreate, func(Event) { count++ })

	c.Emit(entityEvent(EventAfterCreate, 1))
	c.Emit(entityEvent(EventAfterCreate, 2))
	if count != 0 {
		t.Fatal("delivered before the bound was reached")
	}
	c.Emit(entityEvent(EventAfterCreate, 3)) // hits the bound
	if count != 3 {
		t.Errorf("deliveries after bounded flush = %d, want 3", count)
	}
}

func TestChannelEmitsDuringFlushStayInWindow(t *testing.T) {
	c := NewChannel()
	c.SetBatching(16)
	var names []EventName
	c.On(EventAfterCreate, func(ev Event) {
		names = append(names, ev.EventName())
		c.Emit(RenderEvent{Reason: "chained"})
	})
	c.On(EventRenderRequested, func(ev Event) { names = append(names, ev.EventName()) })

	c.Emit(entityEvent(EventAfterCreate, 1))
	c.Flush()

	if len(names) != 2 || names[0] != EventAfterCreate || names[1] != EventRenderRequested {
		t.Fatalf("delivery order = %v, want create then render", names)
	}
}

func TestChannelEmitRejectsMismatchedPayload(t *testing.T) {
	c := NewChannel()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for payload/name mismatch")
		}
	}()
	// EntityEvent claiming a component name: wrong payload struct.
	c.Emit(EntityEvent{Name: EventComponentAdded, EntityID: 1})
}

func TestChannelSubscribeRejectsUnknownName(t *testing.T) {
	c := NewChannel()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown event name")
		}
	}()
	c.On(EventName("no:such:event"), func(Event) {})
}
