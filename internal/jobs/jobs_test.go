package jobs

import (
	"strings"
	"testing"
)

func TestAddGetRemove(t *testing.T) {
	tab := New()
	id := tab.Add(1234, "sleep 30 &", true)
	if id != 1 {
		t.Fatalf("first job id=%d want 1", id)
	}
	j, ok := tab.Get(id)
	if !ok || j.Pgid != 1234 || j.Status != Running {
		t.Fatalf("unexpected job: %+v", j)
	}
	tab.Remove(id)
	if _, ok := tab.Get(id); ok {
		t.Fatalf("job should be removed")
	}
}

func TestIDsMonotonicAndUnique(t *testing.T) {
	tab := New()
	a := tab.Add(1, "a", true)
	b := tab.Add(2, "b", true)
	if b <= a {
		t.Fatalf("job ids not monotonic: %d, %d", a, b)
	}
}

func TestCleanupRemovesDone(t *testing.T) {
	tab := New()
	id := tab.Add(1, "a", true)
	tab.mu.Lock()
	tab.jobs[id].Status = Done
	tab.mu.Unlock()
	tab.Cleanup()
	if tab.Count() != 0 {
		t.Fatalf("count=%d want 0", tab.Count())
	}
}

func TestMostRecentPrefersStoppedForBg(t *testing.T) {
	tab := New()
	a := tab.Add(1, "a", true)
	tab.Add(2, "b", true)
	tab.mu.Lock()
	tab.jobs[a].Status = Stopped
	tab.mu.Unlock()
	j, ok := tab.MostRecent(true)
	if !ok || j.ID != a {
		t.Fatalf("expected stopped job %d, got %+v", a, j)
	}
}

func TestAddStoppedRegistersAsStopped(t *testing.T) {
	tab := New()
	id := tab.AddStopped(1234, "sleep 30", false)
	j, ok := tab.Get(id)
	if !ok || j.Status != Stopped {
		t.Fatalf("expected Stopped job, got %+v", j)
	}
	if _, ok := tab.MostRecent(true); !ok {
		t.Fatalf("bg's MostRecent(true) should see the AddStopped job")
	}
}

func TestSetStatus(t *testing.T) {
	tab := New()
	id := tab.Add(1, "a", true)
	tab.SetStatus(id, Stopped)
	j, ok := tab.Get(id)
	if !ok || j.Status != Stopped {
		t.Fatalf("expected Stopped after SetStatus, got %+v", j)
	}
}

func TestStringDoesNotDoubleBackgroundMarker(t *testing.T) {
	tab := New()
	id := tab.Add(1, "sleep 30", true)
	j, _ := tab.Get(id)
	s := tab.String(j)
	if got := strings.Count(s, "&"); got != 1 {
		t.Fatalf("String()=%q want exactly one '&', got %d", s, got)
	}
}
