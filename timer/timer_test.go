package timer

import (
	"testing"
	"time"
)

func TestManager_DueOrdering(t *testing.T) {
	m := &Manager{
		queue:    make(taskQueue, 0),
		nextID:   1,
		stopChan: make(chan struct{}),
	}

	now := time.Now()
	late := m.Schedule(2*time.Hour, 0, nil)
	early := m.Schedule(-time.Minute, 0, nil)

	ready := m.due(now)
	if len(ready) != 1 || ready[0].ID != early {
		t.Fatalf("expected only the early task, got %v", ready)
	}

	ready = m.due(now.Add(3 * time.Hour))
	if len(ready) != 1 || ready[0].ID != late {
		t.Fatalf("expected the late task, got %v", ready)
	}
}

func TestManager_PeriodicReschedules(t *testing.T) {
	m := &Manager{
		queue:    make(taskQueue, 0),
		nextID:   1,
		stopChan: make(chan struct{}),
	}

	id := m.Schedule(0, time.Minute, nil)

	now := time.Now().Add(time.Second)
	if ready := m.due(now); len(ready) != 1 || ready[0].ID != id {
		t.Fatalf("expected the periodic task to be due, got %v", ready)
	}
	// Rescheduled for one interval later, not due yet.
	if ready := m.due(now); len(ready) != 0 {
		t.Fatalf("periodic task should not be due again immediately, got %v", ready)
	}
	if ready := m.due(now.Add(2 * time.Minute)); len(ready) != 1 {
		t.Fatalf("periodic task should be due after its interval, got %v", ready)
	}
}

func TestManager_Cancel(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	id := m.Schedule(time.Hour, 0, func() {})
	m.Cancel(id)

	if ready := m.due(time.Now().Add(2 * time.Hour)); len(ready) != 0 {
		t.Fatalf("cancelled task still due: %v", ready)
	}
}
