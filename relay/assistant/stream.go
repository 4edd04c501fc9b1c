package assistant

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/Laisky/errors/v2"
)

const (
	DataPrefix  = "data: "
	EventPrefix = "event: "
	Done        = "[DONE]"
)

// Recognized event kinds. Everything else is ignored by consumers.
const (
	EventThreadMessageDelta      = "thread.message.delta"
	EventThreadRunRequiresAction = "thread.run.requires_action"
	EventThreadRunCompleted      = "thread.run.completed"
	EventThreadRunFailed         = "thread.run.failed"
	EventDone                    = "done"
)

// Event is one server-sent event from a streaming run: a kind tag plus the
// raw JSON payload of the following data line.
type Event struct {
	Event string
	Data  json.RawMessage
}

// RunStream reads the SSE event stream of a run. Not safe for concurrent
// use; one goroutine owns the stream for the lifetime of the request.
type RunStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	event   string
}

// NewRunStream wraps an SSE response body. The scanner buffer matches the
// upstream chunk bound used elsewhere in the relay.
func NewRunStream(body io.ReadCloser) *RunStream {
	scanner := bufio.NewScanner(body)
	buffer := make([]byte, 1024*1024) // 1MB buffer
	scanner.Buffer(buffer, len(buffer))
	scanner.Split(bufio.ScanLines)
	return &RunStream{body: body, scanner: scanner}
}

// Recv returns the next event. It reports io.EOF when the upstream sends
// the [DONE] sentinel or closes the connection.
func (s *RunStream) Recv() (*Event, error) {
	for s.scanner.Scan() {
		line := strings.TrimRight(s.scanner.Text(), "\r")
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, EventPrefix):
			s.event = strings.TrimSpace(line[len(EventPrefix):])
		case strings.HasPrefix(line, "event:"):
			s.event = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, DataPrefix), strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, DataPrefix), "data:"))
			if data == Done {
				return nil, io.EOF
			}
			ev := &Event{Event: s.event, Data: json.RawMessage(data)}
			s.event = ""
			return ev, nil
		}
		// comment lines and unknown fields are skipped
	}
	if err := s.scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read run stream")
	}
	return nil, io.EOF
}

// Close releases the underlying response body.
func (s *RunStream) Close() error {
	return s.body.Close()
}
