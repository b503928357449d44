package events

import (
	"log/slog"
	"testing"
)

func testBus() *Bus {
	return NewBus(slog.New(slog.DiscardHandler))
}

func TestSubscribeReceivesMatchingType(t *testing.T) {
	bus := testBus()
	var got []Event
	bus.Subscribe("turn_started", func(e Event) { got = append(got, e) })

	bus.Publish(TurnStarted{Base: Now(), Turn: 1, MaxTurns: 20})
	bus.Publish(TurnCompleted{Base: Now(), Turn: 1})

	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0].EventType() != "turn_started" {
		t.Errorf("event type = %q", got[0].EventType())
	}
}

func TestSubscribeAllReceivesEverything(t *testing.T) {
	bus := testBus()
	var count int
	bus.SubscribeAll(func(Event) { count++ })

	bus.Publish(TurnStarted{Base: Now(), Turn: 1})
	bus.Publish(LoopCompleted{Base: Now()})

	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := testBus()
	var count int
	unsub := bus.Subscribe("turn_started", func(Event) { count++ })

	bus.Publish(TurnStarted{Base: Now(), Turn: 1})
	unsub()
	unsub() // second call is a no-op
	bus.Publish(TurnStarted{Base: Now(), Turn: 2})

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestPanickingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := testBus()
	var reached bool
	bus.Subscribe("turn_started", func(Event) { panic("bad handler") })
	bus.Subscribe("turn_started", func(Event) { reached = true })

	bus.Publish(TurnStarted{Base: Now(), Turn: 1})

	if !reached {
		t.Error("second handler was not called after first panicked")
	}
}

func TestHandlerOrderTypedBeforeGlobal(t *testing.T) {
	bus := testBus()
	var order []string
	bus.SubscribeAll(func(Event) { order = append(order, "global") })
	bus.Subscribe("turn_started", func(Event) { order = append(order, "typed") })

	bus.Publish(TurnStarted{Base: Now(), Turn: 1})

	if len(order) != 2 || order[0] != "typed" || order[1] != "global" {
		t.Errorf("order = %v", order)
	}
}

func TestClear(t *testing.T) {
	bus := testBus()
	var count int
	bus.Subscribe("turn_started", func(Event) { count++ })
	bus.SubscribeAll(func(Event) { count++ })
	bus.Clear()

	bus.Publish(TurnStarted{Base: Now(), Turn: 1})
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}
