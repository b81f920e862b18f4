package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/binsight/internal/adapters/store"
	"github.com/mikey/binsight/internal/core"
	"github.com/mikey/binsight/internal/profile"
)

type fakeVisionClient struct {
	candidates []core.LabelCandidate
	err        error
}

func (f *fakeVisionClient) LabelImage(ctx context.Context, image []byte) ([]core.LabelCandidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

func (f *fakeVisionClient) ModelID() string {
	return "fake-vision"
}

type passthroughNormalizer struct{}

func (passthroughNormalizer) Normalize(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image")
	}
	return data, nil
}

func newTestScanner(t *testing.T, vision core.VisionClient) (*HTTPScanner, core.ItemStore) {
	t.Helper()

	logger := zap.NewNop()
	itemStore := store.NewMemoryStore(logger)
	service := core.NewClassifierService(vision, passthroughNormalizer{}, nil, logger)

	profiles, err := profile.NewStore(filepath.Join(t.TempDir(), "profile.json"), logger)
	require.NoError(t, err)

	s, err := NewHTTPScanner(service, itemStore, profiles, logger, "127.0.0.1:0", 4<<20)
	require.NoError(t, err)
	return s, itemStore
}

func multipartScanRequest(t *testing.T, image []byte, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", "scan.jpg")
	require.NoError(t, err)
	_, err = fw.Write(image)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeJSON(t *testing.T, body io.Reader, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(out))
}

func TestHealthz(t *testing.T) {
	s, _ := newTestScanner(t, &fakeVisionClient{})

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestScanClassifiesWithoutSaving(t *testing.T) {
	vision := &fakeVisionClient{candidates: []core.LabelCandidate{
		{Label: "banana peel", Confidence: 0.91},
		{Label: "plastic bag", Confidence: 0.42},
	}}
	s, itemStore := newTestScanner(t, vision)

	resp, err := s.app.Test(multipartScanRequest(t, []byte("jpeg-bytes"), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out scanResponse
	decodeJSON(t, resp.Body, &out)
	assert.Equal(t, "banana peel", out.Label)
	assert.Equal(t, "compost", out.Category)
	assert.Equal(t, "Compost", out.DisplayName)
	assert.InDelta(t, 0.91, out.Confidence, 1e-9)
	assert.Equal(t, "fake-vision", out.ModelUsed)
	assert.Nil(t, out.SavedItem)

	items, err := itemStore.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestScanSavesWhenRequested(t *testing.T) {
	vision := &fakeVisionClient{candidates: []core.LabelCandidate{
		{Label: "glass bottle", Confidence: 0.88},
	}}
	s, itemStore := newTestScanner(t, vision)

	req := multipartScanRequest(t, []byte("jpeg-bytes"), map[string]string{
		"save": "true",
		"name": "Wine bottle",
	})
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out scanResponse
	decodeJSON(t, resp.Body, &out)
	require.NotNil(t, out.SavedItem)
	assert.Equal(t, "Wine bottle", out.SavedItem.Name)
	assert.Equal(t, "recyclable", out.SavedItem.Category)

	items, err := itemStore.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, out.SavedItem.ID, items[0].ID)
}

func TestScanSaveHonorsCategoryOverride(t *testing.T) {
	vision := &fakeVisionClient{candidates: []core.LabelCandidate{
		{Label: "plastic bottle", Confidence: 0.8},
	}}
	s, itemStore := newTestScanner(t, vision)

	req := multipartScanRequest(t, []byte("jpeg-bytes"), map[string]string{
		"save":     "true",
		"category": "trash",
	})
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	items, err := itemStore.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, core.CategoryTrash, items[0].Category)
}

func TestScanRejectsEmptyBody(t *testing.T) {
	s, _ := newTestScanner(t, &fakeVisionClient{})

	resp, err := s.app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/scan", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScanMapsNoResultTo422(t *testing.T) {
	s, _ := newTestScanner(t, &fakeVisionClient{candidates: nil})

	resp, err := s.app.Test(multipartScanRequest(t, []byte("jpeg-bytes"), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestScanMapsProviderFailureTo502(t *testing.T) {
	s, _ := newTestScanner(t, &fakeVisionClient{err: errors.New("rate limited")})

	resp, err := s.app.Test(multipartScanRequest(t, []byte("jpeg-bytes"), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestItemsLifecycleOverHTTP(t *testing.T) {
	vision := &fakeVisionClient{candidates: []core.LabelCandidate{
		{Label: "aluminum can", Confidence: 0.95},
	}}
	s, _ := newTestScanner(t, vision)

	for i := 0; i < 3; i++ {
		req := multipartScanRequest(t, []byte("jpeg-bytes"), map[string]string{"save": "true"})
		resp, err := s.app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/items?limit=2", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed struct {
		Items []*item `json:"items"`
	}
	decodeJSON(t, resp.Body, &listed)
	require.Len(t, listed.Items, 2)

	resp, err = s.app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/items/"+listed.Items[0].ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = s.app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/items", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/items", nil))
	require.NoError(t, err)
	decodeJSON(t, resp.Body, &listed)
	assert.Empty(t, listed.Items)
}

func TestListItemsRejectsBadLimit(t *testing.T) {
	s, _ := newTestScanner(t, &fakeVisionClient{})

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/items?limit=abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProfileUpdateAndLogin(t *testing.T) {
	s, _ := newTestScanner(t, &fakeVisionClient{})

	body, err := json.Marshal(updateProfileRequest{
		Name:         "Sam",
		PrimaryEmail: "sam@example.com",
		Password:     "hunter2",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var prof profileResponse
	decodeJSON(t, resp.Body, &prof)
	assert.Equal(t, "Sam", prof.Name)
	assert.True(t, prof.HasPassword)

	login := func(password string) int {
		body, err := json.Marshal(loginRequest{Password: password})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, login("hunter2"))
	assert.Equal(t, http.StatusUnauthorized, login("wrong"))
}
