package alert

import (
	"testing"
	"time"
)

func TestThrottleFirstAlertAlwaysSends(t *testing.T) {
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	throttle := NewThrottle(func() time.Time { return clock })

	decision := throttle.NotifyIfDue("db.write", 5*time.Minute)
	if !decision.ShouldSend {
		t.Fatal("first alert should send")
	}
	if decision.PriorSuppressed != 0 {
		t.Fatalf("prior suppressed = %d, want 0", decision.PriorSuppressed)
	}
}

func TestThrottleSuppressesInsideWindowAndReportsCount(t *testing.T) {
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	throttle := NewThrottle(func() time.Time { return clock })
	window := 5 * time.Minute

	if d := throttle.NotifyIfDue("db.write", window); !d.ShouldSend {
		t.Fatal("first alert should send")
	}

	// Four more failures inside the window are counted, not sent.
	for i := 1; i <= 4; i++ {
		clock = clock.Add(30 * time.Second)
		d := throttle.NotifyIfDue("db.write", window)
		if d.ShouldSend {
			t.Fatalf("alert %d inside window should be suppressed", i)
		}
		if d.Suppressed != i {
			t.Fatalf("suppressed = %d, want %d", d.Suppressed, i)
		}
	}

	// The next failure after the window reopens sends again and carries
	// the count of what was swallowed.
	clock = clock.Add(window)
	d := throttle.NotifyIfDue("db.write", window)
	if !d.ShouldSend {
		t.Fatal("alert after window should send")
	}
	if d.PriorSuppressed != 4 {
		t.Fatalf("prior suppressed = %d, want 4", d.PriorSuppressed)
	}

	// Counter resets after a send.
	clock = clock.Add(window + time.Second)
	d = throttle.NotifyIfDue("db.write", window)
	if !d.ShouldSend || d.PriorSuppressed != 0 {
		t.Fatalf("decision after clean window = %+v, want send with no prior", d)
	}
}

func TestThrottleSignaturesAreIndependent(t *testing.T) {
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	throttle := NewThrottle(func() time.Time { return clock })
	window := 5 * time.Minute

	if d := throttle.NotifyIfDue("db.write", window); !d.ShouldSend {
		t.Fatal("first db.write should send")
	}
	if d := throttle.NotifyIfDue("telegram.send", window); !d.ShouldSend {
		t.Fatal("first telegram.send should send despite db.write being throttled")
	}
	if d := throttle.NotifyIfDue("db.write", window); d.ShouldSend {
		t.Fatal("second db.write inside window should be suppressed")
	}
}
