package core

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionState is the lifecycle state of a scan session
type SessionState int

const (
	// SessionIdle means no image has been submitted
	SessionIdle SessionState = iota
	// SessionClassifying means a classification call is in flight
	SessionClassifying
	// SessionClassified means a result is cached and ready to save
	SessionClassified
	// SessionFailed means the last classification errored
	SessionFailed
)

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionClassifying:
		return "classifying"
	case SessionClassified:
		return "classified"
	case SessionFailed:
		return "failed"
	}
	return "unknown"
}

// ScanSession mediates one capture -> classify -> save (or discard) cycle.
// At most one classification runs per session at a time.
type ScanSession struct {
	service *ClassifierService
	store   ItemStore
	logger  *zap.Logger

	mu     sync.Mutex
	state  SessionState
	gen    uint64
	image  []byte
	result *ClassificationResult
	err    error
}

// NewScanSession creates a session bound to a classifier service and an
// item store
func NewScanSession(service *ClassifierService, store ItemStore, logger *zap.Logger) *ScanSession {
	return &ScanSession{
		service: service,
		store:   store,
		logger:  logger,
		state:   SessionIdle,
	}
}

// Submit classifies a captured image and caches the result for a later
// Save. A nil or empty image means the capture was cancelled; the session
// stays idle and no error is returned. While a classification is in flight
// a second Submit returns ErrClassificationInFlight. If the session is
// discarded while the provider call is running, the late result is dropped.
func (s *ScanSession) Submit(ctx context.Context, image []byte) (*ClassificationResult, error) {
	if len(image) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	if s.state == SessionClassifying {
		s.mu.Unlock()
		return nil, ErrClassificationInFlight
	}
	s.state = SessionClassifying
	s.image = image
	s.result = nil
	s.err = nil
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	result, err := s.service.Classify(ctx, image)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		s.logger.Debug("Dropping stale classification result")
		return nil, nil
	}
	if err != nil {
		s.state = SessionFailed
		s.err = err
		return nil, err
	}
	s.state = SessionClassified
	s.result = result
	return result, nil
}

// Save persists the cached classification as a new item and returns the
// session to idle. A non-empty name or category overrides the classifier's
// suggestion, e.g. when the user explicitly marks an item as trash.
func (s *ScanSession) Save(ctx context.Context, name string, category Category) (*Item, error) {
	s.mu.Lock()
	if s.state != SessionClassified || s.result == nil {
		s.mu.Unlock()
		return nil, ErrNoPendingResult
	}
	result := s.result
	image := s.image
	s.mu.Unlock()

	if name == "" {
		name = result.Label
	}
	if category == "" {
		category = result.Category
	}

	item, err := s.store.Create(ctx, name, category, result.Confidence, image, time.Now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.reset()
	s.mu.Unlock()

	s.logger.Info("Saved scanned item",
		zap.String("id", item.ID),
		zap.String("name", item.Name),
		zap.String("category", string(item.Category)))
	return item, nil
}

// Discard drops any cached image and result with zero persistence side
// effects and returns the session to idle. An in-flight classification is
// not interrupted but its result will be dropped on arrival.
func (s *ScanSession) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.reset()
}

// State returns the current session state
func (s *ScanSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the cached classification result, if any
func (s *ScanSession) Result() *ClassificationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Err returns the cached classification error, if any
func (s *ScanSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// reset must be called with s.mu held
func (s *ScanSession) reset() {
	s.state = SessionIdle
	s.image = nil
	s.result = nil
	s.err = nil
}
