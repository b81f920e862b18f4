package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVisionClient struct {
	candidates []LabelCandidate
	err        error
	calls      int
}

func (f *fakeVisionClient) LabelImage(_ context.Context, _ []byte) ([]LabelCandidate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

func (f *fakeVisionClient) ModelID() string { return "fake-model" }

type fakeNormalizer struct {
	err error
}

func (f *fakeNormalizer) Normalize(image []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return image, nil
}

type fakeOverrides struct {
	category Category
	matched  bool
}

func (f *fakeOverrides) Match(_ string) (Category, bool) { return f.category, f.matched }

func newTestService(vision VisionClient, normalizer ImageNormalizer, overrides OverrideChecker) *ClassifierService {
	return NewClassifierService(vision, normalizer, overrides, zap.NewNop())
}

func TestClassifySuccess(t *testing.T) {
	vision := &fakeVisionClient{candidates: []LabelCandidate{{Label: "banana peel", Confidence: 0.92}}}
	svc := newTestService(vision, &fakeNormalizer{}, nil)

	result, err := svc.Classify(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "banana peel", result.Label)
	assert.Equal(t, CategoryCompost, result.Category)
	assert.InDelta(t, 0.92, result.Confidence, 1e-9)
	assert.Equal(t, "fake-model", result.ModelUsed)
	assert.False(t, result.ClassifiedAt.IsZero())
	assert.Equal(t, 1, vision.calls)
}

// The result's category always agrees with the label mapping.
func TestClassifyCategoryMatchesMapLabel(t *testing.T) {
	for _, label := range []string{"aluminum can", "apple core", "styrofoam cup"} {
		vision := &fakeVisionClient{candidates: []LabelCandidate{{Label: label, Confidence: 0.5}}}
		svc := newTestService(vision, &fakeNormalizer{}, nil)

		result, err := svc.Classify(context.Background(), []byte("img"))
		require.NoError(t, err)
		assert.Equal(t, MapLabel(label), result.Category)
	}
}

func TestClassifyPicksHighestConfidence(t *testing.T) {
	vision := &fakeVisionClient{candidates: []LabelCandidate{
		{Label: "styrofoam cup", Confidence: 0.40},
		{Label: "glass bottle", Confidence: 0.55},
		{Label: "banana", Confidence: 0.05},
	}}
	svc := newTestService(vision, &fakeNormalizer{}, nil)

	result, err := svc.Classify(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "glass bottle", result.Label)
	assert.Equal(t, CategoryRecyclable, result.Category)
}

func TestClassifyNoResult(t *testing.T) {
	vision := &fakeVisionClient{candidates: nil}
	svc := newTestService(vision, &fakeNormalizer{}, nil)

	_, err := svc.Classify(context.Background(), []byte("img"))
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestClassifyInvalidImage(t *testing.T) {
	vision := &fakeVisionClient{candidates: []LabelCandidate{{Label: "can", Confidence: 1}}}
	svc := newTestService(vision, &fakeNormalizer{err: errors.New("bad jpeg")}, nil)

	_, err := svc.Classify(context.Background(), []byte("not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.Equal(t, 0, vision.calls, "provider must not be called for undecodable input")
}

func TestClassifyServiceFailure(t *testing.T) {
	cause := errors.New("provider unavailable")
	vision := &fakeVisionClient{err: cause}
	svc := newTestService(vision, &fakeNormalizer{}, nil)

	_, err := svc.Classify(context.Background(), []byte("img"))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, vision.calls, "a failed call is not retried")
}

func TestClassifyOverrideWins(t *testing.T) {
	vision := &fakeVisionClient{candidates: []LabelCandidate{{Label: "plastic wrapper", Confidence: 0.8}}}
	svc := newTestService(vision, &fakeNormalizer{}, &fakeOverrides{category: CategoryTrash, matched: true})

	result, err := svc.Classify(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, CategoryTrash, result.Category)
}

func TestClassifyOverrideMissFallsThrough(t *testing.T) {
	vision := &fakeVisionClient{candidates: []LabelCandidate{{Label: "plastic wrapper", Confidence: 0.8}}}
	svc := newTestService(vision, &fakeNormalizer{}, &fakeOverrides{matched: false})

	result, err := svc.Classify(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, CategoryRecyclable, result.Category)
}
