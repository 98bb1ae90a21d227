package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/kakaosession/internal/loco"
)

func TestNextEventUpdatesCacheAndReturnsEvent(t *testing.T) {
	events := make(chan loco.Event, loco.DefaultEventBuffer)
	s := newTestSession(t, newFakeConn(), events)

	chat := chatFrom(11, strPtr("bob"))
	events <- chat

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ev, err := s.NextEvent(ctx)
	if err != nil {
		t.Fatalf("next event: %v", err)
	}
	if ev != chat {
		t.Fatalf("event was not returned unchanged: %#v", ev)
	}
	got, ok := s.KnownUser(11)
	if !ok || got.Nickname != "bob" {
		t.Fatalf("cache not updated: %+v", got)
	}
}

func TestNextEventSurfacesDiagnosticEvents(t *testing.T) {
	events := make(chan loco.Event, 2)
	s := newTestSession(t, newFakeConn(), events)

	events <- &loco.UnhandledEvent{Method: "CHANGESVR"}
	events <- &loco.ErrorEvent{Method: loco.PushMsg, Err: errors.New("bad payload")}

	ctx := context.Background()
	ev, err := s.NextEvent(ctx)
	if err != nil {
		t.Fatalf("unhandled event returned error: %v", err)
	}
	if _, ok := ev.(*loco.UnhandledEvent); !ok {
		t.Fatalf("expected *UnhandledEvent, got %T", ev)
	}

	ev, err = s.NextEvent(ctx)
	if err != nil {
		t.Fatalf("error event returned error: %v", err)
	}
	if _, ok := ev.(*loco.ErrorEvent); !ok {
		t.Fatalf("expected *ErrorEvent, got %T", ev)
	}
}

func TestNextEventTransportClosedIsTerminal(t *testing.T) {
	events := make(chan loco.Event, 1)
	s := newTestSession(t, newFakeConn(), events)

	events <- chatFrom(1, strPtr("last"))
	close(events)

	ctx := context.Background()
	if _, err := s.NextEvent(ctx); err != nil {
		t.Fatalf("buffered event lost: %v", err)
	}
	for range 2 {
		if _, err := s.NextEvent(ctx); !errors.Is(err, ErrTransportClosed) {
			t.Fatalf("expected ErrTransportClosed, got %v", err)
		}
	}
}

func TestNextEventHonoursContext(t *testing.T) {
	events := make(chan loco.Event)
	s := newTestSession(t, newFakeConn(), events)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := s.NextEvent(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	// The session is still usable after a caller-side timeout.
	go func() { events <- chatFrom(2, strPtr("late")) }()
	if _, err := s.NextEvent(context.Background()); err != nil {
		t.Fatalf("next event after timeout: %v", err)
	}
}

func TestChannelsSnapshotIsCopied(t *testing.T) {
	s := newTestSession(t, newFakeConn(), make(chan loco.Event))

	snapshot := s.Channels()
	delete(snapshot, 18384565413113921)

	ch, ok := s.Channel(18384565413113921)
	if !ok || ch.Kind != loco.ChannelOpen || ch.LinkID != 283608594 {
		t.Fatalf("snapshot mutated through accessor: %+v", ch)
	}
}

func TestCloseClosesConn(t *testing.T) {
	conn := newFakeConn()
	s := newTestSession(t, conn, make(chan loco.Event))
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !conn.closed {
		t.Fatalf("conn not closed")
	}
}
