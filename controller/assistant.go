package controller

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/fuchsia74/assistant-gateway/common/ctxkey"
	"github.com/fuchsia74/assistant-gateway/common/helper"
	"github.com/fuchsia74/assistant-gateway/common/render"
	"github.com/fuchsia74/assistant-gateway/middleware"
	"github.com/fuchsia74/assistant-gateway/relay/assistant"
	rcontroller "github.com/fuchsia74/assistant-gateway/relay/controller"
)

// maxQueryBytes caps the raw request body; queries are short text.
const maxQueryBytes = 64 * 1024

var defaultProcessor = sync.OnceValue(func() *rcontroller.QueryProcessor {
	return rcontroller.NewQueryProcessor(assistant.NewClient())
})

// RelayAssistant handles POST /api/assistant: the raw body is the user
// query, the response is the assistant's reply streamed as chunked plain
// text.
func RelayAssistant(c *gin.Context) {
	RelayAssistantWith(defaultProcessor())(c)
}

// RelayAssistantWith builds the handler around an explicit processor so
// tests can point it at a scripted upstream.
func RelayAssistantWith(processor *rcontroller.QueryProcessor) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := gmw.Ctx(c)
		lg := gmw.GetLogger(c)
		start := time.Now()

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxQueryBytes))
		if err != nil {
			middleware.AbortWithError(c, http.StatusBadRequest, errors.Wrap(err, "read request body"))
			return
		}
		query := strings.TrimSpace(string(body))
		if query == "" {
			middleware.AbortWithError(c, http.StatusBadRequest, errors.New("request body must contain a query"))
			return
		}
		c.Set(ctxkey.Query, query)

		lg.Debug("incoming assistant query",
			zap.Int("query_len", len(query)),
			zap.String("request_id", c.GetString(helper.RequestIdKey)))

		var (
			fragments   int
			headersSent bool
			streamed    strings.Builder
		)
		emit := func(fragment string) error {
			if !headersSent {
				render.SetPlainStreamHeaders(c)
				headersSent = true
			}
			fragments++
			streamed.WriteString(fragment)
			return render.StringData(c, fragment)
		}

		if err := processor.StreamQuery(ctx, lg, query, emit); err != nil {
			// Setup failed before the first fragment: the client still
			// gets a structured error. Anything later is only truncation.
			if !headersSent {
				middleware.AbortWithError(c, http.StatusBadGateway, err)
				return
			}
			lg.Error("assistant stream aborted after partial response", zap.Error(err))
			return
		}
		if !headersSent {
			// Stream ended without a single delta; send the empty body
			// with the right content type anyway.
			render.SetPlainStreamHeaders(c)
		}

		lg.Info("assistant query served",
			zap.Int("fragments", fragments),
			zap.Int("completion_tokens_estimated", rcontroller.CountTokenText(streamed.String())),
			zap.Int64("elapsed_ms", helper.CalcElapsedTime(start)))
	}
}
