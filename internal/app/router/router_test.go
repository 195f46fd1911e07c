package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analysis "signal_backend/internal/feature/analysis/domain/entity"
	analysishandler "signal_backend/internal/feature/analysis/transport/handler"
	"signal_backend/internal/feature/trades/domain"
	"signal_backend/internal/feature/trades/domain/entity"
	tradeshandler "signal_backend/internal/feature/trades/transport/handler"
	"signal_backend/internal/feature/trades/usecase"
	"signal_backend/internal/platform/http/handler"
	jwtmw "signal_backend/internal/platform/jwt"
	"signal_backend/internal/shared/opstats"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubTrades struct{}

func (stubTrades) All() []entity.Trade   { return nil }
func (stubTrades) Totals() domain.Totals { return domain.Totals{} }

type stubMonitor struct{}

func (stubMonitor) CheckActive(ctx context.Context) (usecase.PassResult, error) {
	return usecase.PassResult{}, nil
}

type stubReporter struct{}

func (stubReporter) Report(ctx context.Context, now time.Time) (domain.Summary, error) {
	return domain.Summary{}, nil
}

func (stubReporter) Summary(now time.Time, window time.Duration) domain.Summary {
	return domain.Summary{}
}

type stubSignals struct{}

func (stubSignals) Analyze(ctx context.Context, symbol string) (analysis.Signal, error) {
	return analysis.Signal{Symbol: symbol, Type: analysis.Wait}, nil
}

const secret = "router-secret"

func newTestRouter() *gin.Engine {
	stats := opstats.New("v-test", []string{"BTC/USD"}, time.Now())
	status := tradeshandler.NewStatusHandler(stats, stubTrades{}, stubMonitor{}, stubReporter{})
	signals := analysishandler.NewSignalHandler(stubSignals{}, []string{"BTC/USD"})
	return NewRouter("v-test", secret, status, signals)
}

func TestNewRouter_PublicRoutes(t *testing.T) {
	r := newTestRouter()

	for _, path := range []string{"/healthz", "/health", "/", "/status", "/trades", "/report"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.NotEmpty(t, w.Header().Get(handler.HeaderRequestID))
		})
	}
}

func TestNewRouter_AdminRequiresToken(t *testing.T) {
	r := newTestRouter()
	token, err := jwtmw.NewGenerator(secret, time.Hour).GenerateToken("operator")
	require.NoError(t, err)

	for _, path := range []string{"/admin/analyze/BTC-USD", "/admin/check", "/admin/report"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			req := httptest.NewRequest(http.MethodPost, path, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w = httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}
