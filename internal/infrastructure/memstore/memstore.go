package memstore

import (
	"context"
	"sync"
	"time"

	"pulse-server/internal/domain/interview"
	"pulse-server/internal/utils/platformerrors"
)

// Store backs anonymous preview sessions. Nothing here survives a restart
// and stale sessions are swept on a timer, which is the point: preview
// traffic must never reach the database.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*interview.Session
	turns    map[uint][]*interview.Turn
	themes   map[string][]interview.Theme
	touched  map[uint]time.Time
	nextID   uint
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*interview.Session),
		turns:    make(map[uint][]*interview.Turn),
		themes:   make(map[string][]interview.Theme),
		touched:  make(map[uint]time.Time),
		nextID:   1,
	}
}

// ===============================================
// interview.SessionRepository
// ===============================================

type SessionStore struct {
	store *Store
}

var _ interview.SessionRepository = (*SessionStore)(nil)

func NewSessionStore(store *Store) *SessionStore {
	return &SessionStore{store: store}
}

func (s *SessionStore) Create(ctx context.Context, session *interview.Session) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, exists := s.store.sessions[session.PublicID]; exists {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
			"preview session already exists", nil, "")
	}
	session.ID = s.store.nextID
	s.store.nextID++
	session.CreatedAt = time.Now().UTC()
	session.UpdatedAt = session.CreatedAt

	copied := *session
	s.store.sessions[session.PublicID] = &copied
	s.store.touched[session.ID] = session.CreatedAt
	return nil
}

func (s *SessionStore) FindByPublicID(ctx context.Context, publicID string) (*interview.Session, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	session, ok := s.store.sessions[publicID]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"preview session not found", nil, "")
	}
	copied := *session
	return &copied, nil
}

func (s *SessionStore) Update(ctx context.Context, session *interview.Session) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, ok := s.store.sessions[session.PublicID]; !ok {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"preview session not found", nil, "")
	}
	session.UpdatedAt = time.Now().UTC()
	copied := *session
	s.store.sessions[session.PublicID] = &copied
	s.store.touched[session.ID] = session.UpdatedAt
	return nil
}

// ===============================================
// interview.TurnRepository
// ===============================================

type TurnStore struct {
	store *Store
}

var _ interview.TurnRepository = (*TurnStore)(nil)

func NewTurnStore(store *Store) *TurnStore {
	return &TurnStore{store: store}
}

func (s *TurnStore) Create(ctx context.Context, turn *interview.Turn) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	turn.ID = s.store.nextID
	s.store.nextID++
	turn.CreatedAt = time.Now().UTC()

	copied := *turn
	s.store.turns[turn.SessionID] = append(s.store.turns[turn.SessionID], &copied)
	s.store.touched[turn.SessionID] = turn.CreatedAt
	return nil
}

func (s *TurnStore) ListBySession(ctx context.Context, sessionID uint) ([]*interview.Turn, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	rows := s.store.turns[sessionID]
	out := make([]*interview.Turn, 0, len(rows))
	for _, turn := range rows {
		copied := *turn
		out = append(out, &copied)
	}
	return out, nil
}

func (s *TurnStore) CountBySession(ctx context.Context, sessionID uint) (int, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return len(s.store.turns[sessionID]), nil
}

func (s *TurnStore) ApplyClassification(ctx context.Context, turnID uint, classification interview.TurnClassification) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	turn := s.findTurnLocked(turnID)
	if turn == nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"preview turn not found", nil, "")
	}
	if classification.SentimentLabel != "" {
		label := classification.SentimentLabel
		score := classification.SentimentScore
		turn.SentimentLabel = &label
		turn.SentimentScore = &score
	}
	if classification.ThemeID != nil {
		turn.ThemeID = classification.ThemeID
	}
	turn.Urgent = classification.Urgent
	return nil
}

func (s *TurnStore) ApplyDeepAnalysis(ctx context.Context, turnID uint, urgencyScore int, payload map[string]any) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	turn := s.findTurnLocked(turnID)
	if turn == nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"preview turn not found", nil, "")
	}
	turn.UrgencyScore = &urgencyScore
	turn.DeepAnalysis = payload
	return nil
}

func (s *TurnStore) ApplySignals(ctx context.Context, turnID uint, signals []interview.SemanticSignal) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	turn := s.findTurnLocked(turnID)
	if turn == nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"preview turn not found", nil, "")
	}
	turn.Signals = signals
	return nil
}

func (s *TurnStore) findTurnLocked(turnID uint) *interview.Turn {
	for _, rows := range s.store.turns {
		for _, turn := range rows {
			if turn.ID == turnID {
				return turn
			}
		}
	}
	return nil
}

// ===============================================
// interview.ThemeRepository
// ===============================================

type ThemeStore struct {
	store *Store
}

var _ interview.ThemeRepository = (*ThemeStore)(nil)

func NewThemeStore(store *Store) *ThemeStore {
	return &ThemeStore{store: store}
}

func (s *ThemeStore) Upsert(ctx context.Context, theme *interview.Theme) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	existing := s.store.themes[theme.SurveyID]
	for i := range existing {
		if existing[i].PublicID == theme.PublicID {
			existing[i] = *theme
			return nil
		}
	}
	s.store.themes[theme.SurveyID] = append(existing, *theme)
	return nil
}

func (s *ThemeStore) ListBySurvey(ctx context.Context, surveyID string) ([]interview.Theme, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	rows := s.store.themes[surveyID]
	out := make([]interview.Theme, len(rows))
	copy(out, rows)
	return out, nil
}

func (s *ThemeStore) FindByPublicIDs(ctx context.Context, publicIDs []string) ([]interview.Theme, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	wanted := make(map[string]bool, len(publicIDs))
	for _, id := range publicIDs {
		wanted[id] = true
	}
	var out []interview.Theme
	for _, rows := range s.store.themes {
		for _, theme := range rows {
			if wanted[theme.PublicID] {
				out = append(out, theme)
			}
		}
	}
	return out, nil
}

// ===============================================
// Sweeping
// ===============================================

// Sweep removes sessions idle for longer than maxAge together with their
// turns. Returns the number of sessions removed.
func (s *Store) Sweep(maxAge time.Duration) int {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for publicID, session := range s.sessions {
		touched, ok := s.touched[session.ID]
		if ok && now.Sub(touched) <= maxAge {
			continue
		}
		delete(s.sessions, publicID)
		delete(s.turns, session.ID)
		delete(s.themes, session.SurveyID)
		delete(s.touched, session.ID)
		removed++
	}
	return removed
}
