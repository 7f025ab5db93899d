package chi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/newsgpt/newsgpt/internal/domain"
)

// SSE terminal frames. The error frame carries no internal detail; the
// specifics are logged server-side.
const (
	doneEvent  = "data: [DONE]\n\n"
	errorEvent = "data: {\"error\":\"An error occurred while streaming the response.\"}\n\n"
)

// eventSink writes a generation stream to the client as Server-Sent Events.
// Headers are committed lazily on the first event, so a failure before any
// event (e.g. no matching news) can still answer with a JSON status.
type eventSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

// newEventSink wraps the response writer. Returns an error when the
// transport cannot flush incrementally.
func newEventSink(w http.ResponseWriter) (*eventSink, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}
	return &eventSink{w: w, flusher: flusher}, nil
}

// Handler exposes the sink as a stream handler.
func (s *eventSink) Handler() domain.StreamHandler {
	return domain.StreamHandler{
		OnFragment: s.writeFragment,
		OnComplete: s.complete,
		OnError:    s.fail,
	}
}

// Started reports whether SSE headers have been committed.
func (s *eventSink) Started() bool { return s.started }

func (s *eventSink) begin() {
	s.w.Header().Set("Content-Type", "text/event-stream")
	s.w.Header().Set("Cache-Control", "no-cache")
	s.w.Header().Set("Connection", "keep-alive")
	s.w.WriteHeader(http.StatusOK)
	s.started = true
}

func (s *eventSink) writeFragment(fragment string) error {
	if !s.started {
		s.begin()
	}
	payload, err := json.Marshal(fragment)
	if err != nil {
		return fmt.Errorf("encode fragment: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("write fragment: %w", err)
	}
	s.flusher.Flush()
	return nil
}

func (s *eventSink) complete() {
	if !s.started {
		s.begin()
	}
	_, _ = fmt.Fprint(s.w, doneEvent)
	s.flusher.Flush()
}

func (s *eventSink) fail(error) {
	if !s.started {
		s.begin()
	}
	_, _ = fmt.Fprint(s.w, errorEvent)
	s.flusher.Flush()
}
