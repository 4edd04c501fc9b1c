package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuchsia74/assistant-gateway/common/config"
	"github.com/fuchsia74/assistant-gateway/common/logger"
	"github.com/fuchsia74/assistant-gateway/middleware"
	"github.com/fuchsia74/assistant-gateway/relay/assistant"
	rcontroller "github.com/fuchsia74/assistant-gateway/relay/controller"
)

// scriptedUpstream is a minimal Assistants endpoint for handler tests: one
// run stream body and optionally one resumed stream after tool submission.
type scriptedUpstream struct {
	runSSE     string
	resumedSSE string
}

func (s *scriptedUpstream) start(t *testing.T) *rcontroller.QueryProcessor {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /openai/assistants", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"asst_handler","model":"gpt-4o"}`)
	})
	mux.HandleFunc("POST /openai/threads", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"thread_handler"}`)
	})
	mux.HandleFunc("POST /openai/threads/thread_handler/messages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"msg_handler"}`)
	})
	mux.HandleFunc("POST /openai/threads/thread_handler/runs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, s.runSSE)
	})
	mux.HandleFunc("POST /openai/threads/thread_handler/runs/{run}/submit_tool_outputs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, s.resumedSSE)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := assistant.New(server.URL, "test-key", "2024-05-01-preview", server.Client())
	return rcontroller.NewQueryProcessor(client)
}

func newTestRouter(t *testing.T, processor *rcontroller.QueryProcessor) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	originalApprox := config.ApproximateTokenEnabled
	config.ApproximateTokenEnabled = true
	t.Cleanup(func() { config.ApproximateTokenEnabled = originalApprox })

	engine := gin.New()
	engine.Use(middleware.RequestId())
	engine.Use(func(c *gin.Context) { gmw.SetLogger(c, logger.Logger) })
	engine.POST("/api/assistant", RelayAssistantWith(processor))
	return engine
}

func sseDelta(text string) string {
	payload, _ := json.Marshal(map[string]any{
		"delta": map[string]any{
			"content": []map[string]any{
				{"index": 0, "type": "text", "text": map[string]any{"value": text}},
			},
		},
	})
	return "event: thread.message.delta\ndata: " + string(payload) + "\n\n"
}

const sseDone = "event: done\ndata: [DONE]\n\n"

func postQuery(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/assistant", strings.NewReader(body))
	router.ServeHTTP(w, req)
	return w
}

func TestRelayAssistantRejectsEmptyBody(t *testing.T) {
	upstream := &scriptedUpstream{runSSE: sseDone}
	router := newTestRouter(t, upstream.start(t))

	for _, body := range []string{"", "   \n\t  "} {
		w := postQuery(router, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "query")
	}
}

func TestRelayAssistantStreamsPlainText(t *testing.T) {
	upstream := &scriptedUpstream{
		runSSE: sseDelta("The answer ") + sseDelta("is 42.") + sseDone,
	}
	router := newTestRouter(t, upstream.start(t))

	w := postQuery(router, "what is the answer?")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "The answer is 42.", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Gateway-Request-Id"))
}

func TestRelayAssistantToolRoundedReply(t *testing.T) {
	upstream := &scriptedUpstream{
		runSSE: sseDelta("Let me check. ") +
			"event: thread.run.requires_action\ndata: " +
			`{"id":"run_h","thread_id":"thread_handler","status":"requires_action",` +
			`"required_action":{"type":"submit_tool_outputs","submit_tool_outputs":{"tool_calls":[` +
			`{"id":"call_h","type":"function","function":{"name":"getStockPrice","arguments":"{\"symbol\":\"AAPL\"}"}}]}}}` +
			"\n\n" + sseDone,
		resumedSSE: sseDelta("AAPL is holding steady.") + sseDone,
	}
	router := newTestRouter(t, upstream.start(t))

	w := postQuery(router, "What is AAPL trading at?")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Let me check. AAPL is holding steady.", w.Body.String())
}

func TestRelayAssistantUpstreamSetupFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"deployment offline","type":"server_error"}}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := assistant.New(server.URL, "test-key", "2024-05-01-preview", server.Client())
	router := newTestRouter(t, rcontroller.NewQueryProcessor(client))

	w := postQuery(router, "anything")
	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "gateway_error", resp.Error.Type)
	assert.Contains(t, resp.Error.Message, "deployment offline")
}
