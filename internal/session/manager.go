package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	stderrors "newme-engine/internal/common/errors"
	"newme-engine/internal/common/storage"
	"newme-engine/internal/models"
)

const keyPrefix = "test-session:"

// Manager persists sessions in the injected store. Every mutation writes the
// whole session back and refreshes the TTL; there is no concurrent writer for
// a given session, so no locking is needed beyond the store's own.
type Manager struct {
	store storage.Store
	ttl   time.Duration
}

func NewManager(store storage.Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl}
}

// Create builds and stores a fresh session for the fetched question set.
func (m *Manager) Create(ctx context.Context, userEmail string, testType models.TestType, category string, questions []models.Question, outcome models.RecordOutcome) (*TestSession, error) {
	sess := &TestSession{
		ID:            uuid.New().String(),
		UserEmail:     userEmail,
		TestType:      testType,
		Category:      category,
		Questions:     questions,
		Answers:       models.Answers{},
		RecordOutcome: outcome,
	}
	if err := m.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads a session, returning SESSION_NOT_FOUND for unknown or expired IDs.
func (m *Manager) Get(ctx context.Context, sessionID string) (*TestSession, error) {
	raw, err := m.store.Get(ctx, keyPrefix+sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, stderrors.NewSessionNotFoundError(sessionID)
		}
		return nil, stderrors.NewInternalError(err)
	}

	var sess TestSession
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, stderrors.NewInternalError(err)
	}
	return &sess, nil
}

// Update applies a mutation and writes the session back.
func (m *Manager) Update(ctx context.Context, sessionID string, mutate func(*TestSession)) (*TestSession, error) {
	sess, err := m.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	mutate(sess)
	if err := m.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Destroy drops the session, e.g. after submission or when the user walks
// away.
func (m *Manager) Destroy(ctx context.Context, sessionID string) error {
	return m.store.Remove(ctx, keyPrefix+sessionID)
}

func (m *Manager) save(ctx context.Context, sess *TestSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return stderrors.NewInternalError(err)
	}
	if err := m.store.Set(ctx, keyPrefix+sess.ID, string(data), m.ttl); err != nil {
		return stderrors.NewInternalError(err)
	}
	return nil
}
