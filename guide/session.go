package guide

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSessionNotFound is returned for operations on unknown sessions.
	ErrSessionNotFound = errors.New("session not found")

	// ErrReplyPending is returned when a reply is already in flight for the
	// session. At most one Send runs per session at a time.
	ErrReplyPending = errors.New("a reply is already pending for this session")
)

// greeting is the bot message seeded into every new session.
const greeting = "Selamat datang! I'm your Indonesian AI Tour Guide. I can help you discover beautiful destinations, learn about local cultures, and plan your journey in Indonesia. What would you like to know about?"

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// A Message is a single turn in a chat session. The IsTyping marker denotes
// the transient placeholder shown while a reply is computed; it is removed
// before the real reply is appended and never outlives the Send call that
// created it.
type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	IsTyping  bool      `json:"is_typing,omitempty"`
}

// A Session is a transient anonymous conversation. Transcripts live in
// process memory only and disappear with it.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Service manages chat sessions and drives the responder for each incoming
// user message.
type Service struct {
	Logger    *slog.Logger
	Responder *Responder

	// TypingDelay is how long the typing placeholder stays up before the
	// reply is computed. Zero means no delay.
	TypingDelay time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	Session
	messages []Message
	// busy gates Send: true while a reply is in flight. The UI used to
	// enforce this by disabling its input; the service enforces it here so
	// the invariant also holds for automated callers.
	busy bool
}

// NewService returns a Service backed by in-memory session state.
func NewService(logger *slog.Logger, responder *Responder, typingDelay time.Duration) *Service {
	return &Service{
		Logger:      logger,
		Responder:   responder,
		TypingDelay: typingDelay,
		sessions:    make(map[string]*session),
	}
}

// CreateSession provisions a new session seeded with the guide's greeting.
func (s *Service) CreateSession(_ context.Context) Session {
	sess := &session{
		Session: Session{
			ID:        uuid.NewString(),
			CreatedAt: time.Now().UTC(),
		},
	}
	sess.messages = append(sess.messages, newMessage(SenderBot, greeting))

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess.Session
}

// Transcript returns a copy of the session's messages in insertion order.
// While a reply is pending the copy includes the typing placeholder.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	out := make([]Message, len(sess.messages))
	copy(out, sess.messages)
	return out, nil
}

// Send appends the user's message, shows a typing placeholder for
// TypingDelay, then replaces the placeholder with the computed reply and
// returns it. Only one Send may be in flight per session; concurrent calls
// get ErrReplyPending. If ctx is cancelled mid-flight the placeholder is
// removed and no reply materializes.
func (s *Service) Send(ctx context.Context, sessionID, text string, walletConnected bool) (Message, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return Message{}, ErrSessionNotFound
	}
	if sess.busy {
		s.mu.Unlock()
		return Message{}, ErrReplyPending
	}
	sess.busy = true
	sess.messages = append(sess.messages, newMessage(SenderUser, text))
	typing := newMessage(SenderBot, "...")
	typing.IsTyping = true
	sess.messages = append(sess.messages, typing)
	s.mu.Unlock()

	reply, err := s.computeReply(ctx, text, walletConnected)

	s.mu.Lock()
	defer s.mu.Unlock()
	sess.busy = false
	sess.messages = dropTyping(sess.messages)
	if err != nil {
		s.Logger.Info("Reply abandoned", "session_id", sessionID, "error", err.Error())
		return Message{}, err
	}

	bot := newMessage(SenderBot, reply)
	sess.messages = append(sess.messages, bot)
	return bot, nil
}

func (s *Service) computeReply(ctx context.Context, text string, walletConnected bool) (string, error) {
	if err := sleep(ctx, s.TypingDelay); err != nil {
		return "", err
	}
	return s.Responder.Reply(ctx, text, walletConnected)
}

func newMessage(sender, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

func dropTyping(msgs []Message) []Message {
	out := msgs[:0]
	for _, m := range msgs {
		if !m.IsTyping {
			out = append(out, m)
		}
	}
	return out
}
