package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Pkra99/minichat-v2/internal/stream"
)

// sseSink writes orchestrator events as server-sent events. Event data is
// always JSON so clients can decode every frame the same way.
type sseSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

var _ stream.EventSink = (*sseSink)(nil)

func (s *sseSink) Chunk(text string) error {
	return s.emit("chunk", text)
}

func (s *sseSink) Done(summary stream.Summary) error {
	return s.emit("done", summary)
}

func (s *sseSink) Error(message string) error {
	return s.emit("error", map[string]string{"error": message})
}

func (s *sseSink) emit(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
