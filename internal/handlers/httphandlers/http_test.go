package httphandlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dathao-chona/SocialMine-Z/internal/lib"
	"github.com/dathao-chona/SocialMine-Z/internal/mining"
	"github.com/stretchr/testify/require"
)

type controllerMock struct {
	submit            func(ctx context.Context, params mining.SubmitParams) (string, error)
	decrypt           func(ctx context.Context, recordID string) (*uint64, error)
	refresh           func(ctx context.Context) (*mining.Snapshot, error)
	checkAvailability func(ctx context.Context) (bool, error)
	snapshot          *mining.Snapshot
	notification      mining.Notification
	connected         bool
	submitting        bool
}

func (m *controllerMock) Submit(ctx context.Context, params mining.SubmitParams) (string, error) {
	return m.submit(ctx, params)
}

func (m *controllerMock) Decrypt(ctx context.Context, recordID string) (*uint64, error) {
	return m.decrypt(ctx, recordID)
}

func (m *controllerMock) Refresh(ctx context.Context) (*mining.Snapshot, error) {
	return m.refresh(ctx)
}

func (m *controllerMock) CheckAvailability(ctx context.Context) (bool, error) {
	return m.checkAvailability(ctx)
}

func (m *controllerMock) Snapshot() *mining.Snapshot {
	if m.snapshot == nil {
		return &mining.Snapshot{}
	}
	return m.snapshot
}

func (m *controllerMock) Notification() mining.Notification            { return m.notification }
func (m *controllerMock) NotificationHistory() []mining.Notification   { return nil }
func (m *controllerMock) IsConnected() bool                            { return m.connected }
func (m *controllerMock) IsSubmitting() bool                           { return m.submitting }
func (m *controllerMock) IsDecrypting(recordID string) bool            { return false }
func (m *controllerMock) IsAnyDecrypting() bool                        { return false }
func (m *controllerMock) IsRefreshing() bool                           { return false }

func serve(t *testing.T, controller MiningController, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	engine := NewHTTPHandler(controller, &lib.LoggerMock{})

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	w := serve(t, &controllerMock{}, http.MethodGet, "/healthcheck", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "healthy")
}

func TestCreateRecord(t *testing.T) {
	mock := &controllerMock{
		submit: func(ctx context.Context, params mining.SubmitParams) (string, error) {
			require.Equal(t, "Likes", params.Name)
			require.Equal(t, "42", params.Value)
			return "social-1-abc", nil
		},
	}

	w := serve(t, mock, http.MethodPost, "/records", `{"name":"Likes","value":"42","description":"daily"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), "social-1-abc")
}

func TestCreateRecordRejectsMissingFields(t *testing.T) {
	mock := &controllerMock{
		submit: func(ctx context.Context, params mining.SubmitParams) (string, error) {
			t.Fatal("controller must not be reached on invalid input")
			return "", nil
		},
	}

	w := serve(t, mock, http.MethodPost, "/records", `{"description":"daily"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRecordBusyMapsToConflict(t *testing.T) {
	mock := &controllerMock{
		submit: func(ctx context.Context, params mining.SubmitParams) (string, error) {
			return "", mining.ErrBusy
		},
	}

	w := serve(t, mock, http.MethodPost, "/records", `{"name":"Likes","value":"42"}`)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateRecordNotConnectedMapsToUnauthorized(t *testing.T) {
	mock := &controllerMock{
		submit: func(ctx context.Context, params mining.SubmitParams) (string, error) {
			return "", mining.ErrNotConnected
		},
	}

	w := serve(t, mock, http.MethodPost, "/records", `{"name":"Likes","value":"42"}`)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDecryptRecord(t *testing.T) {
	value := uint64(17)
	mock := &controllerMock{
		decrypt: func(ctx context.Context, recordID string) (*uint64, error) {
			require.Equal(t, "rec-1", recordID)
			return &value, nil
		},
	}

	w := serve(t, mock, http.MethodPost, "/records/rec-1/decrypt", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "17")
}

func TestGetStatus(t *testing.T) {
	mock := &controllerMock{connected: true, submitting: true}

	w := serve(t, mock, http.MethodGet, "/status", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"connected":true`)
	require.Contains(t, w.Body.String(), `"isSubmitting":true`)
}

func TestGetStats(t *testing.T) {
	mock := &controllerMock{
		snapshot: &mining.Snapshot{
			Stats:       mining.Stats{Participants: 2, TotalValue: 150, AvgScore: 50},
			RefreshedAt: time.Now(),
		},
	}

	w := serve(t, mock, http.MethodGet, "/stats", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"totalValue":150`)
}
