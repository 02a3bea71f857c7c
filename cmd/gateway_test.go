package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-advisor/internal/advisor"
	"github.com/sells-group/site-advisor/internal/config"
	"github.com/sells-group/site-advisor/internal/fetcher"
	"github.com/sells-group/site-advisor/internal/model"
	"github.com/sells-group/site-advisor/internal/resilience"
	"github.com/sells-group/site-advisor/internal/validate"
)

func newTestGateway(t *testing.T, backendURL string) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	client := advisor.NewClient(fetcher.New(), advisor.WithBaseURL(backendURL))
	gw := newGateway(ctx, client, resilience.NewServiceBreakers(resilience.DefaultCircuitBreakerConfig()))
	srv := httptest.NewServer(gw.routes([]string{"*"}))
	t.Cleanup(func() {
		srv.Close()
		gw.close()
		cancel()
	})
	return srv
}

func do(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestGateway_Health(t *testing.T) {
	t.Parallel()
	srv := newTestGateway(t, "http://127.0.0.1:1")

	code, body := do(t, http.MethodGet, srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.NotNil(t, body["circuits"])
}

func TestGateway_AreaPageLifecycle(t *testing.T) {
	t.Parallel()
	backend, _ := newBackend(t, map[string]string{
		"/api/recommend/area": `{"recommendations":[{"district":"강남구 역삼동","reason":"r","score":0.5}]}`,
	})
	srv := newTestGateway(t, backend.URL)
	page := srv.URL + "/pages/area/home"

	code, body := do(t, http.MethodPut, page, `{"gu_name":"강남구","category_small":"카페"}`)
	require.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, float64(1), body["generation"])

	code, body = do(t, http.MethodGet, page+"?wait=1&timeout=5s", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", body["phase"])
	data, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 1)
	assert.Equal(t, "강남구 역삼동", data[0].(map[string]any)["label"])

	code, _ = do(t, http.MethodDelete, page, "")
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = do(t, http.MethodGet, page, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGateway_InvalidParams(t *testing.T) {
	t.Parallel()
	srv := newTestGateway(t, "http://127.0.0.1:1")

	code, body := do(t, http.MethodPut, srv.URL+"/pages/industry/a", `{"gu_name":"강남구"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "idle", body["phase"])
	assert.Equal(t, validate.MsgRegionRequired, body["notice"])

	code, _ = do(t, http.MethodPut, srv.URL+"/pages/industry/a", `not json`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, http.MethodPut, srv.URL+"/pages/landlord/a", `{}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGateway_ReportError(t *testing.T) {
	t.Parallel()
	backend, _ := newBackend(t, map[string]string{
		"/api/report": `{"ok":false,"detail":"지역 데이터 없음"}`,
	})
	srv := newTestGateway(t, backend.URL)
	page := srv.URL + "/pages/report/r1"

	code, _ := do(t, http.MethodPut, page, `{"role":"owner","gu_name":"강남구","region":"역삼동","category_large":"음식","category_small":"카페","purpose":"창업"}`)
	require.Equal(t, http.StatusAccepted, code)

	code, body := do(t, http.MethodGet, page+"?wait=1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "error", body["phase"])
	assert.Equal(t, "지역 데이터 없음", body["error"])
}

func TestGateway_WaitTimeout(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(backend.Close)
	t.Cleanup(func() { close(release) })
	srv := newTestGateway(t, backend.URL)
	page := srv.URL + "/pages/area/slow"

	code, _ := do(t, http.MethodPut, page, `{"gu_name":"강남구","category_small":"카페"}`)
	require.Equal(t, http.StatusAccepted, code)

	code, body := do(t, http.MethodGet, page+"?wait=1&timeout=20ms", "")
	assert.Equal(t, http.StatusGatewayTimeout, code)
	assert.Equal(t, "loading", body["phase"])
}

func TestGateway_Chat(t *testing.T) {
	t.Parallel()
	backend, stub := newBackend(t, map[string]string{
		"/api/chat": `{"response":"임대료가 안정적입니다."}`,
	})
	srv := newTestGateway(t, backend.URL)

	code, body := do(t, http.MethodPost, srv.URL+"/chat/c1", `{"message":"임대료는?","region":"역삼동"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "임대료가 안정적입니다.", body["reply"])
	assert.Len(t, body["messages"], 3)
	assert.Equal(t, "역삼동", stub.body("/api/chat")["region"])

	code, body = do(t, http.MethodGet, srv.URL+"/chat/c1", "")
	require.Equal(t, http.StatusOK, code)
	msgs := body["messages"].([]any)
	assert.Equal(t, model.RoleBot, msgs[0].(map[string]any)["role"])

	code, _ = do(t, http.MethodGet, srv.URL+"/chat/missing", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGateway_ChatFailureKeepsUserMessage(t *testing.T) {
	t.Parallel()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"GPT 호출 실패"}`))
	}))
	t.Cleanup(backend.Close)
	srv := newTestGateway(t, backend.URL)

	code, body := do(t, http.MethodPost, srv.URL+"/chat/c1", `{"message":"안녕"}`)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "GPT 호출 실패", body["error"])
	assert.Len(t, body["messages"], 2)
}

func TestChatLoop(t *testing.T) {
	t.Parallel()
	backend, _ := newBackend(t, map[string]string{
		"/api/chat": `{"response":"네"}`,
	})
	conv := advisor.NewConversation(advisor.NewClient(fetcher.New(), advisor.WithBaseURL(backend.URL)), advisor.ReportContext{})

	var out, errOut strings.Builder
	err := chatLoop(context.Background(), conv, strings.NewReader("첫 질문\n\n둘째 질문\n"), &out, &errOut)
	require.NoError(t, err)
	assert.Equal(t, "[bot] "+model.Greeting+"\n[bot] 네\n[bot] 네\n", out.String())
	assert.Empty(t, errOut.String())
	assert.Len(t, conv.Messages(), 5)
}

func TestNewAdvisorEnv(t *testing.T) {
	t.Parallel()
	c := &config.Config{
		Backend:   config.BackendConfig{BaseURL: "http://advisor.internal:5001/", TimeoutSecs: 5, UserAgent: "test"},
		Retry:     config.RetryConfig{MaxAttempts: 3},
		Circuit:   config.CircuitConfig{FailureThreshold: 2, ResetTimeoutSecs: 1},
		RateLimit: config.RateLimitConfig{RPS: 10, Burst: 2},
	}

	env := newAdvisorEnv(c)
	assert.Equal(t, "http://advisor.internal:5001", env.Client.BaseURL())
	assert.NotNil(t, env.Breakers)
	assert.NotNil(t, env.Fetcher.Limiter())

	c.Circuit.FailureThreshold = 0
	c.RateLimit.RPS = 0
	env = newAdvisorEnv(c)
	assert.Nil(t, env.Breakers)
	assert.Nil(t, env.Fetcher.Limiter())
}

func TestRunPage_Timeout(t *testing.T) {
	release := make(chan struct{})
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(backend.Close)
	t.Cleanup(func() { close(release) })

	loadTimeout = 20 * time.Millisecond
	t.Cleanup(func() { loadTimeout = 0 })

	client := advisor.NewClient(fetcher.New(), advisor.WithBaseURL(backend.URL))
	st, err := runPage(context.Background(), advisor.NewAreaPage(context.Background(), client),
		model.AreaQuery{GuName: "강남구", CategorySmall: "카페"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "loading", string(st.Phase))
}
