package guide

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/neilotoole/slogt"
)

// delayForever stands in for a delay that never elapses during a test.
const delayForever = time.Hour

func newTestService(t *testing.T, typingDelay time.Duration) *Service {
	t.Helper()
	logger := slogt.New(t)
	return NewService(logger, &Responder{Logger: logger}, typingDelay)
}

func TestService_CreateSession(t *testing.T) {
	svc := newTestService(t, 0)

	sess := svc.CreateSession(context.Background())
	if sess.ID == "" {
		t.Error("Got empty session ID")
	}

	msgs, err := svc.Transcript(context.Background(), sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("Got %d messages, want 1", len(msgs))
	}
	if msgs[0].Sender != SenderBot {
		t.Errorf("Got sender %q, want bot", msgs[0].Sender)
	}
	if msgs[0].Text != greeting {
		t.Errorf("Got greeting %q, want %q", msgs[0].Text, greeting)
	}
}

func TestService_Transcript_UnknownSession(t *testing.T) {
	svc := newTestService(t, 0)
	if _, err := svc.Transcript(context.Background(), "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Got error %v, want ErrSessionNotFound", err)
	}
}

func TestService_Send(t *testing.T) {
	svc := newTestService(t, 0)
	sess := svc.CreateSession(context.Background())

	bot, err := svc.Send(context.Background(), sess.ID, "Tell me about Bali", false)
	if err != nil {
		t.Fatal(err)
	}
	if bot.Text != locationReplies[2].reply {
		t.Errorf("Got reply %q, want the Bali paragraph", bot.Text)
	}

	msgs, err := svc.Transcript(context.Background(), sess.ID)
	if err != nil {
		t.Fatal(err)
	}

	want := []Message{
		{Sender: SenderBot, Text: greeting},
		{Sender: SenderUser, Text: "Tell me about Bali"},
		{Sender: SenderBot, Text: locationReplies[2].reply},
	}
	ignore := cmpopts.IgnoreFields(Message{}, "ID", "Timestamp")
	if diff := cmp.Diff(want, msgs, ignore); diff != "" {
		t.Errorf("Transcript mismatch (-want +got):\n%s", diff)
	}
	// The typing placeholder must not survive the Send.
	for _, m := range msgs {
		if m.IsTyping {
			t.Errorf("Transcript still contains a typing placeholder: %+v", m)
		}
	}
}

func TestService_Send_UnknownSession(t *testing.T) {
	svc := newTestService(t, 0)
	if _, err := svc.Send(context.Background(), "nope", "hello", false); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Got error %v, want ErrSessionNotFound", err)
	}
}

func TestService_Send_TypingPlaceholderVisible(t *testing.T) {
	svc := newTestService(t, delayForever)
	sess := svc.CreateSession(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := svc.Send(ctx, sess.ID, "hello", false)
		done <- err
	}()

	// Wait for the placeholder to appear, then cancel the in-flight reply.
	waitFor(t, func() bool {
		msgs, err := svc.Transcript(context.Background(), sess.ID)
		if err != nil {
			t.Fatal(err)
		}
		return len(msgs) == 3 && msgs[2].IsTyping
	})

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Got error %v, want context.Canceled", err)
	}

	// No dangling reply and no leftover placeholder after cancellation.
	msgs, err := svc.Transcript(context.Background(), sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Got %d messages after cancel, want 2", len(msgs))
	}
	for _, m := range msgs {
		if m.IsTyping {
			t.Errorf("Placeholder survived cancellation: %+v", m)
		}
	}
}

func TestService_Send_SingleFlight(t *testing.T) {
	svc := newTestService(t, delayForever)
	sess := svc.CreateSession(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = svc.Send(ctx, sess.ID, "first", false)
	}()

	waitFor(t, func() bool {
		msgs, err := svc.Transcript(context.Background(), sess.ID)
		if err != nil {
			t.Fatal(err)
		}
		return len(msgs) == 3
	})

	if _, err := svc.Send(context.Background(), sess.ID, "second", false); !errors.Is(err, ErrReplyPending) {
		t.Errorf("Got error %v, want ErrReplyPending", err)
	}

	cancel()
	wg.Wait()

	// Gate releases once the first Send finishes.
	svc.TypingDelay = 0
	if _, err := svc.Send(context.Background(), sess.ID, "third", false); err != nil {
		t.Errorf("Got error %v after gate release, want nil", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Condition not met before deadline")
}
