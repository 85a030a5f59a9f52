package auth

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/skillsight/internal/logger"
)

// subscriberBuffer is the number of events a slow subscriber may lag behind
// before events are dropped for it.
const subscriberBuffer = 16

// Event is a session change. Session is nil when nobody is signed in.
// Settled is true only on the first event, after which Loading reports false.
type Event struct {
	Session *Session
	Settled bool
}

// Store holds the current session and fans provider changes out to subscribers.
type Store struct {
	logger   *zap.Logger
	provider Provider

	mu        sync.Mutex
	current   *Session
	settled   bool
	settledCh chan struct{}
	subs      map[int]chan Event
	nextSub   int
	closed    bool
	stop      func()
}

// NewStore starts listening to the provider. Call Close to stop.
func NewStore(log *zap.Logger, provider Provider) *Store {
	s := &Store{
		logger:    logger.WithFields(log),
		provider:  provider,
		settledCh: make(chan struct{}),
		subs:      map[int]chan Event{},
	}

	stop := provider.Listen(s.onChange)

	s.mu.Lock()
	s.stop = stop
	s.mu.Unlock()

	return s
}

// Current returns a copy of the current session or nil.
func (s *Store) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.clone()
}

// Loading is true until the provider reported the initial session state.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.settled
}

// WaitSettled blocks until the initial session state is known.
func (s *Store) WaitSettled(ctx context.Context) error {
	select {
	case <-s.settledCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe returns a channel receiving every later session change in
// provider order. The returned func unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	return ch, func() { s.unsubscribe(id) }
}

func (s *Store) unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

// Close detaches from the provider and closes every subscriber channel.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	stop := s.stop
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
}

func (s *Store) onChange(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.current = session.clone()

	settled := !s.settled
	if settled {
		s.settled = true
		close(s.settledCh)
	}

	if s.current != nil {
		s.logger.Debug("session changed", logger.UserFields(s.current.ID, s.current.Email)...)
	} else {
		s.logger.Debug("session cleared")
	}

	for id, ch := range s.subs {
		select {
		case ch <- Event{Session: s.current.clone(), Settled: settled}:
		default:
			s.logger.Warn("dropping session event for a slow subscriber", zap.Int("subscriber", id))
		}
	}
}

func (s *Store) SignInWithPassword(ctx context.Context, email, password string) error {
	err := s.provider.SignInWithPassword(ctx, strings.TrimSpace(email), password)
	return s.fail("sign in", err, msgUnexpected)
}

func (s *Store) SignUp(ctx context.Context, email, password string) error {
	err := s.provider.SignUp(ctx, strings.TrimSpace(email), password)
	return s.fail("sign up", err, msgUnexpected)
}

// SignInWithFederatedProvider signs in with a credential issued by providerID.
func (s *Store) SignInWithFederatedProvider(ctx context.Context, providerID, idToken string) error {
	err := s.provider.SignInWithIdP(ctx, providerID, idToken)
	return s.fail("federated sign in", err, msgFederatedFailed)
}

func (s *Store) SignOut(ctx context.Context) error {
	return s.fail("sign out", s.provider.SignOut(ctx), msgUnexpected)
}

// SendPasswordReset asks the provider to email a reset link.
// An empty email fails without contacting the provider.
func (s *Store) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &Error{Kind: KindUnknown, Message: msgMissingEmail}
	}

	return s.fail("password reset", s.provider.SendPasswordReset(ctx, email), msgResetFailed)
}

func (s *Store) fail(op string, err error, fallback string) error {
	if err == nil {
		return nil
	}

	mapped := toError(err, fallback)
	s.logger.Warn(op+" failed", zap.Error(err))
	return mapped
}
