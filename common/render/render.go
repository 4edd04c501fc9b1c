package render

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetPlainStreamHeaders prepares the response for an unbuffered chunked
// text stream. Transfer-Encoding is handled by net/http once the first
// flush happens without a Content-Length.
func SetPlainStreamHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
}

// StringData writes one fragment and flushes it to the client immediately.
func StringData(c *gin.Context, data string) error {
	if _, err := c.Writer.WriteString(data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}
