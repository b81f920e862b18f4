package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	mu    sync.Mutex
	items []*Item
}

func (f *fakeStore) Create(_ context.Context, name string, category Category, confidence float64, image []byte, timestamp time.Time) (*Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item := &Item{
		ID:         uuid.NewString(),
		Name:       name,
		Category:   category,
		Confidence: confidence,
		Timestamp:  timestamp,
		Image:      image,
	}
	f.items = append(f.items, item)
	return item, nil
}

func (f *fakeStore) List(_ context.Context, _ int) ([]*Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Item(nil), f.items...), nil
}

func (f *fakeStore) Delete(_ context.Context, _ string) error { return nil }
func (f *fakeStore) WipeAll(_ context.Context) error          { return nil }

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// blockingVisionClient holds every LabelImage call until released.
type blockingVisionClient struct {
	release chan struct{}
	label   string
}

func (b *blockingVisionClient) LabelImage(_ context.Context, _ []byte) ([]LabelCandidate, error) {
	<-b.release
	return []LabelCandidate{{Label: b.label, Confidence: 0.9}}, nil
}

func (b *blockingVisionClient) ModelID() string { return "blocking-model" }

func newTestSession(vision VisionClient, store ItemStore) *ScanSession {
	svc := NewClassifierService(vision, &fakeNormalizer{}, nil, zap.NewNop())
	return NewScanSession(svc, store, zap.NewNop())
}

func TestSessionSubmitAndSave(t *testing.T) {
	vision := &fakeVisionClient{candidates: []LabelCandidate{{Label: "glass jar", Confidence: 0.77}}}
	store := &fakeStore{}
	session := newTestSession(vision, store)

	result, err := session.Submit(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, SessionClassified, session.State())
	assert.Equal(t, result, session.Result())

	item, err := session.Save(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "glass jar", item.Name)
	assert.Equal(t, CategoryRecyclable, item.Category)
	assert.InDelta(t, 0.77, item.Confidence, 1e-9)
	assert.Equal(t, []byte("img"), item.Image)
	assert.Equal(t, 1, store.count())
	assert.Equal(t, SessionIdle, session.State())
}

func TestSessionSaveWithUserOverride(t *testing.T) {
	vision := &fakeVisionClient{candidates: []LabelCandidate{{Label: "plastic bag", Confidence: 0.5}}}
	store := &fakeStore{}
	session := newTestSession(vision, store)

	_, err := session.Submit(context.Background(), []byte("img"))
	require.NoError(t, err)

	// User explicitly marks the item as trash despite the suggestion.
	item, err := session.Save(context.Background(), "shopping bag", CategoryTrash)
	require.NoError(t, err)
	assert.Equal(t, "shopping bag", item.Name)
	assert.Equal(t, CategoryTrash, item.Category)
}

func TestSessionNilImageIsNotAnError(t *testing.T) {
	session := newTestSession(&fakeVisionClient{}, &fakeStore{})

	result, err := session.Submit(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, SessionIdle, session.State())
}

func TestSessionRejectsConcurrentSubmit(t *testing.T) {
	vision := &blockingVisionClient{release: make(chan struct{}), label: "tin can"}
	session := newTestSession(vision, &fakeStore{})

	done := make(chan error, 1)
	go func() {
		_, err := session.Submit(context.Background(), []byte("img"))
		done <- err
	}()

	// Wait for the first submit to reach the provider call.
	require.Eventually(t, func() bool {
		return session.State() == SessionClassifying
	}, time.Second, time.Millisecond)

	_, err := session.Submit(context.Background(), []byte("img2"))
	assert.ErrorIs(t, err, ErrClassificationInFlight)

	close(vision.release)
	require.NoError(t, <-done)
	assert.Equal(t, SessionClassified, session.State())
	assert.Equal(t, "tin can", session.Result().Label)
}

func TestSessionDiscardDropsLateResult(t *testing.T) {
	vision := &blockingVisionClient{release: make(chan struct{}), label: "tin can"}
	store := &fakeStore{}
	session := newTestSession(vision, store)

	done := make(chan struct{})
	go func() {
		result, err := session.Submit(context.Background(), []byte("img"))
		assert.NoError(t, err)
		assert.Nil(t, result)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return session.State() == SessionClassifying
	}, time.Second, time.Millisecond)

	session.Discard()
	close(vision.release)
	<-done

	assert.Equal(t, SessionIdle, session.State())
	assert.Nil(t, session.Result())
	assert.Equal(t, 0, store.count(), "a dropped result must never be auto-saved")

	_, err := session.Save(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrNoPendingResult)
}

func TestSessionFailedStateAndResubmit(t *testing.T) {
	vision := &fakeVisionClient{candidates: nil}
	session := newTestSession(vision, &fakeStore{})

	_, err := session.Submit(context.Background(), []byte("img"))
	assert.ErrorIs(t, err, ErrNoResult)
	assert.Equal(t, SessionFailed, session.State())
	assert.ErrorIs(t, session.Err(), ErrNoResult)

	// A fresh capture starts a new cycle on the same session.
	vision.candidates = []LabelCandidate{{Label: "bottle", Confidence: 0.6}}
	result, err := session.Submit(context.Background(), []byte("img2"))
	require.NoError(t, err)
	assert.Equal(t, "bottle", result.Label)
	assert.Equal(t, SessionClassified, session.State())
}

func TestSessionSaveWithoutResult(t *testing.T) {
	session := newTestSession(&fakeVisionClient{}, &fakeStore{})
	_, err := session.Save(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrNoPendingResult)
}

func TestSessionSaveExactlyOnce(t *testing.T) {
	vision := &fakeVisionClient{candidates: []LabelCandidate{{Label: "jar", Confidence: 0.9}}}
	store := &fakeStore{}
	session := newTestSession(vision, store)

	_, err := session.Submit(context.Background(), []byte("img"))
	require.NoError(t, err)

	_, err = session.Save(context.Background(), "", "")
	require.NoError(t, err)

	// The second save has nothing left to persist.
	_, err = session.Save(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrNoPendingResult)
	assert.Equal(t, 1, store.count())
}
