package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/loykin/deployr/internal/history"
)

func TestSQLiteSink_RoundTrip(t *testing.T) {
	dbPath := t.TempDir() + "/test.db"

	sink, err := New("sqlite://" + dbPath)
	if err != nil {
		t.Fatalf("Failed to create sink: %v", err)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			t.Errorf("Failed to close sink: %v", err)
		}
	}()

	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	events := []history.Event{
		{Action: "push", Host: "bothost", OccurredAt: base, Duration: 1200 * time.Millisecond, OK: true},
		{Action: "restart", Host: "bothost", OccurredAt: base.Add(time.Second), Duration: 300 * time.Millisecond, OK: false, Error: "no interpreter found in venv"},
	}
	for _, e := range events {
		if err := sink.Send(ctx, e); err != nil {
			t.Fatalf("Send(%s): %v", e.Action, err)
		}
	}

	got, err := sink.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	// Newest first.
	if got[0].Action != "restart" || got[1].Action != "push" {
		t.Fatalf("unexpected order: %s, %s", got[0].Action, got[1].Action)
	}
	if got[0].OK || got[0].Error == "" {
		t.Fatalf("failure event not preserved: %+v", got[0])
	}
	if got[1].Duration != 1200*time.Millisecond {
		t.Fatalf("duration not preserved: %v", got[1].Duration)
	}
}

func TestSQLiteSink_RecentLimit(t *testing.T) {
	sink, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create sink: %v", err)
	}
	defer func() { _ = sink.Close() }()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		e := history.Event{
			Action:     "deploy",
			Host:       "bothost",
			OccurredAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
			OK:         true,
		}
		if err := sink.Send(ctx, e); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	got, err := sink.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("limit not applied: got %d", len(got))
	}
}

func TestSQLiteSink_EmptyDSN(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}
