package feed

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"interaction-service/gesture"
	"interaction-service/model"
)

var (
	ErrUnknownTarget   = errors.New("post is not part of this feed session")
	ErrSessionNotFound = errors.New("feed session not found")
)

// TapResult is what a single tap did to the feed.
type TapResult struct {
	Action gesture.Action
	Record models.InteractionRecord
	// HeartBurst is set exactly when the like was toggled by this tap.
	HeartBurst bool
}

// Authoritative is a value confirmed by the record store.
type Authoritative struct {
	ID            string
	LikeCount     int32
	LikedByViewer bool
	CommentCount  int32
	UpdatedAt     time.Time
}

// Session holds one viewer's feed: the interaction records in feed order and
// the tap timing state used to detect double taps. Every operation runs to
// completion under the session lock, one event at a time.
type Session struct {
	mu         sync.Mutex
	viewerID   uuid.UUID
	classifier *gesture.Classifier
	records    map[string]*models.InteractionRecord
	order      []string
	lastActive time.Time
	now        func() time.Time
}

func newSession(viewerID uuid.UUID, window time.Duration, now func() time.Time) *Session {
	return &Session{
		viewerID:   viewerID,
		classifier: gesture.NewClassifier(window),
		records:    make(map[string]*models.InteractionRecord),
		lastActive: now(),
		now:        now,
	}
}

func (s *Session) ViewerID() uuid.UUID {
	return s.viewerID
}

// Load adds records to the end of the feed. Records already in the session are
// reconciled against the loaded value instead of being replaced, so local
// comments and tap state survive a reload.
func (s *Session) Load(records []models.InteractionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	for i := range records {
		in := records[i].Clone()
		in.Normalize()

		if existing, ok := s.records[in.ID]; ok {
			reconcile(existing, Authoritative{
				ID:            in.ID,
				LikeCount:     in.LikeCount,
				LikedByViewer: in.LikedByViewer,
				CommentCount:  in.CommentCount,
				UpdatedAt:     in.SyncedAt,
			})
			continue
		}

		s.records[in.ID] = &in
		s.order = append(s.order, in.ID)
	}
}

// Tap classifies a tap on targetID and applies the like toggle when it
// completes a double tap.
func (s *Session) Tap(targetID string, timestamp int64) (TapResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	rec, ok := s.records[targetID]
	if !ok {
		return TapResult{}, ErrUnknownTarget
	}

	result := TapResult{Action: s.classifier.OnTap(targetID, timestamp)}
	if result.Action == gesture.ActionToggleLike {
		rec.ToggleLike()
		result.HeartBurst = true
	}
	result.Record = rec.Clone()

	return result, nil
}

// PressLike toggles the like from the explicit like button.
func (s *Session) PressLike(targetID string) (models.InteractionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	rec, ok := s.records[targetID]
	if !ok {
		return models.InteractionRecord{}, ErrUnknownTarget
	}
	rec.ToggleLike()
	return rec.Clone(), nil
}

func (s *Session) AddComment(targetID, text string) (models.InteractionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	rec, ok := s.records[targetID]
	if !ok {
		return models.InteractionRecord{}, ErrUnknownTarget
	}
	if err := rec.AddComment(text); err != nil {
		return models.InteractionRecord{}, err
	}
	return rec.Clone(), nil
}

// Reconcile applies an authoritative value using last-write-wins on the
// server timestamp. It reports whether the value replaced the local one.
func (s *Session) Reconcile(a Authoritative) (models.InteractionRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[a.ID]
	if !ok {
		return models.InteractionRecord{}, false, ErrUnknownTarget
	}
	applied := reconcile(rec, a)
	return rec.Clone(), applied, nil
}

func reconcile(rec *models.InteractionRecord, a Authoritative) bool {
	if a.UpdatedAt.Before(rec.SyncedAt) {
		return false
	}
	rec.LikeCount = a.LikeCount
	rec.LikedByViewer = a.LikedByViewer
	rec.CommentCount = a.CommentCount
	rec.SyncedAt = a.UpdatedAt
	rec.Provisional = false
	rec.Normalize()
	return true
}

func (s *Session) Record(targetID string) (models.InteractionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[targetID]
	if !ok {
		return models.InteractionRecord{}, false
	}
	return rec.Clone(), true
}

// Records returns copies of all records in feed order.
func (s *Session) Records() []models.InteractionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.InteractionRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id].Clone())
	}
	return out
}

// Remove drops a post from the feed together with its tap state.
func (s *Session) Remove(targetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[targetID]; !ok {
		return false
	}
	delete(s.records, targetID)
	s.classifier.Forget(targetID)
	for i, id := range s.order {
		if id == targetID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

func (s *Session) idleFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive)
}

func (s *Session) touch() {
	s.lastActive = s.now()
}
