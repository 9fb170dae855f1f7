package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/NasaVasa/coinalert/internal/catalog"
	"github.com/NasaVasa/coinalert/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSessionBusy = errors.New("session has an operation in progress")
	ErrNoSession   = errors.New("no active session")
)

// Session is one chat's workflow together with the identity it submits as.
type Session struct {
	ID        uuid.UUID
	ChatID    int64
	User      domain.User
	Workflow  *Workflow
	StartedAt time.Time
}

// SessionResult carries the outcome of an effect back to the event loop.
type SessionResult struct {
	ChatID    int64
	SessionID uuid.UUID
	Action    Action
}

// SessionManager keeps one workflow per chat. Workflows are only touched by
// the goroutine that calls Open, Dispatch and Deliver; effects run in their
// own goroutines and report through Results.
type SessionManager struct {
	identity *IdentityUsecase
	executor *Executor
	metrics  Metrics
	logger   *zap.Logger

	mu         sync.Mutex
	sessions   map[int64]*Session
	operations map[uuid.UUID]*operation
	results    chan SessionResult
}

type operation struct {
	effect string
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSessionManager(identity *IdentityUsecase, executor *Executor, metrics Metrics, logger *zap.Logger) *SessionManager {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &SessionManager{
		identity:   identity,
		executor:   executor,
		metrics:    metrics,
		logger:     logger,
		sessions:   make(map[int64]*Session),
		operations: make(map[uuid.UUID]*operation),
		results:    make(chan SessionResult, 64),
	}
}

func (m *SessionManager) Results() <-chan SessionResult {
	return m.results
}

// Open replaces the chat's session with a fresh one and starts its catalog
// load. A chat whose current session is waiting on the alert API cannot be
// reopened until that operation finishes.
func (m *SessionManager) Open(ctx context.Context, chatID, telegramUserID int64, username string) (*Session, error) {
	if existing, ok := m.Get(chatID); ok && existing.Workflow.Busy() {
		return nil, ErrSessionBusy
	}

	user, err := m.identity.Resolve(ctx, telegramUserID, username)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	logger := m.logger.With(zap.String("session_id", id.String()), zap.Int64("chat_id", chatID))
	session := &Session{
		ID:        id,
		ChatID:    chatID,
		User:      *user,
		Workflow:  NewWorkflow(catalog.New(logger), user.SubmitterID, logger),
		StartedAt: time.Now(),
	}

	m.mu.Lock()
	m.sessions[chatID] = session
	m.mu.Unlock()

	m.logger.Info(
		"session opened",
		zap.String("session_id", id.String()),
		zap.Int64("chat_id", chatID),
		zap.Int64("telegram_user_id", telegramUserID),
		zap.Int64("user_id", int64(user.SubmitterID)),
	)

	if effect := session.Workflow.Start(); effect != nil {
		m.launch(ctx, session, effect)
	}
	return session, nil
}

func (m *SessionManager) Get(chatID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[chatID]
	return session, ok
}

// Dispatch applies a user action to the chat's workflow and starts the effect
// it asks for, if any.
func (m *SessionManager) Dispatch(ctx context.Context, chatID int64, action Action) (*Session, error) {
	session, ok := m.Get(chatID)
	if !ok {
		return nil, ErrNoSession
	}
	return session, m.apply(ctx, session, action)
}

// Deliver feeds an effect outcome back into its session. Results addressed to
// a session that has since been replaced or closed are dropped.
func (m *SessionManager) Deliver(ctx context.Context, result SessionResult) (*Session, error) {
	session, ok := m.Get(result.ChatID)
	if !ok || session.ID != result.SessionID {
		m.logger.Debug(
			"stale session result dropped",
			zap.Int64("chat_id", result.ChatID),
			zap.String("session_id", result.SessionID.String()),
			zap.String("action", result.Action.actionName()),
		)
		return nil, ErrNoSession
	}
	return session, m.apply(ctx, session, result.Action)
}

func (m *SessionManager) apply(ctx context.Context, session *Session, action Action) error {
	effect, err := session.Workflow.Dispatch(action)
	if reason, ok := ValidationReason(err); ok {
		m.metrics.IncValidationFailure(reason)
	}
	if effect != nil {
		m.launch(ctx, session, effect)
	}
	return err
}

func (m *SessionManager) Close(chatID int64) bool {
	m.mu.Lock()
	session, ok := m.sessions[chatID]
	if ok {
		delete(m.sessions, chatID)
	}
	m.mu.Unlock()

	if ok {
		m.logger.Info("session closed", zap.String("session_id", session.ID.String()), zap.Int64("chat_id", chatID))
	}
	return ok
}

// StopAll cancels outstanding operations and waits for them to return.
func (m *SessionManager) StopAll() {
	m.mu.Lock()
	ops := make(map[uuid.UUID]*operation, len(m.operations))
	for id, op := range m.operations {
		ops[id] = op
	}
	m.mu.Unlock()

	for id, op := range ops {
		op.cancel()
		select {
		case <-op.done:
		case <-time.After(5 * time.Second):
			m.logger.Warn("timeout stopping session operation", zap.String("session_id", id.String()), zap.String("effect", op.effect))
		}
	}
}

func (m *SessionManager) launch(ctx context.Context, session *Session, effect Effect) {
	opCtx, cancel := context.WithCancel(ctx)
	op := &operation{effect: effect.effectName(), cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	m.operations[session.ID] = op
	m.mu.Unlock()

	m.logger.Debug(
		"session operation started",
		zap.String("session_id", session.ID.String()),
		zap.String("effect", op.effect),
	)

	go func() {
		defer close(op.done)
		defer cancel()
		defer func() {
			m.mu.Lock()
			if m.operations[session.ID] == op {
				delete(m.operations, session.ID)
			}
			m.mu.Unlock()
		}()

		action := m.executor.Run(opCtx, effect)
		if action == nil {
			return
		}
		select {
		case m.results <- SessionResult{ChatID: session.ChatID, SessionID: session.ID, Action: action}:
		case <-opCtx.Done():
			m.logger.Warn(
				"session result dropped on shutdown",
				zap.String("session_id", session.ID.String()),
				zap.String("action", action.actionName()),
			)
		}
	}()
}
