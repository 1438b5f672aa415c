package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/g-result/uoden/internal/errors"
	"github.com/g-result/uoden/internal/export"
	"github.com/g-result/uoden/internal/services"
)

type stubExportService struct {
	result    *services.Result
	err       error
	gotWindow *export.Window
	calls     int
}

func (s *stubExportService) Run(ctx context.Context, window *export.Window) (*services.Result, error) {
	s.calls++
	s.gotWindow = window
	return s.result, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okResult() *services.Result {
	return &services.Result{
		Sent:     true,
		Filename: "20240701_1500_20240702_0900_orders.csv",
		Orders:   2,
		Columns:  1,
		Rows:     2,
	}
}

func TestRunExport_EmptyBodyUsesDefaultWindow(t *testing.T) {
	stub := &stubExportService{result: okResult()}
	handler := NewExportHandler(stub, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, stub.calls)
	assert.Nil(t, stub.gotWindow)

	var body services.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Sent)
	assert.Equal(t, "20240701_1500_20240702_0900_orders.csv", body.Filename)
}

func TestRunExport_ExplicitWindow(t *testing.T) {
	stub := &stubExportService{result: okResult()}
	handler := NewExportHandler(stub, testLogger())

	payload := `{"window_start":"2024-07-01T15:00:00+09:00","window_end":"2024-07-02T09:00:00+09:00"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.gotWindow)
	want := time.Date(2024, 7, 1, 15, 0, 0, 0, time.FixedZone("", 9*3600))
	assert.True(t, stub.gotWindow.Start.Equal(want))
}

func TestRunExport_InvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"window_start":`},
		{"missing end", `{"window_start":"2024-07-01T15:00:00+09:00"}`},
		{"end before start", `{"window_start":"2024-07-02T09:00:00+09:00","window_end":"2024-07-01T15:00:00+09:00"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubExportService{result: okResult()}
			handler := NewExportHandler(stub, testLogger())

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.Routes().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, 0, stub.calls)
		})
	}
}

func TestRunExport_PipelineErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"source unavailable", apperrors.NewSourceUnavailableError("db down", errors.New("refused")), http.StatusServiceUnavailable},
		{"delivery failed", apperrors.NewDeliveryFailedError("relay down", nil), http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubExportService{err: tt.err}
			handler := NewExportHandler(stub, testLogger())

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			rec := httptest.NewRecorder()
			handler.Routes().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHealthCheck(t *testing.T) {
	handler := NewHealthHandler(nil, "1.0.0", testLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.0.0", body["version"])
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("unreachable") }

func TestReadinessCheck_DatabaseDown(t *testing.T) {
	handler := NewHealthHandler(failingPinger{}, "1.0.0", testLogger())

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "unreachable", body["database"])
}
