package chi

import (
	"net/http/httptest"
	"testing"
)

func TestEventSink_FragmentsAndDone(t *testing.T) {
	rec := httptest.NewRecorder()
	sink, err := newEventSink(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h := sink.Handler()
	if err := h.OnFragment("Hello"); err != nil {
		t.Fatalf("write fragment: %v", err)
	}
	if err := h.OnFragment(" world"); err != nil {
		t.Fatalf("write fragment: %v", err)
	}
	h.OnComplete()

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	want := "data: \"Hello\"\n\ndata: \" world\"\n\ndata: [DONE]\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
	if !sink.Started() {
		t.Error("sink should report started after the first event")
	}
}

func TestEventSink_ErrorFrameHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	sink, err := newEventSink(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sink.Handler().OnError(errAny{})

	want := "data: {\"error\":\"An error occurred while streaming the response.\"}\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestEventSink_LazyHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	sink, err := newEventSink(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sink.Started() {
		t.Fatal("sink must not commit headers before the first event")
	}
	if rec.Header().Get("Content-Type") != "" {
		t.Error("no headers expected before the first event")
	}
}

type errAny struct{}

func (errAny) Error() string { return "secret internal detail" }
