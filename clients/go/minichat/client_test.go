package minichat

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseStream(t *testing.T) {
	raw := "event: chunk\ndata: \"hello \"\n\n" +
		"event: chunk\ndata: \"world\"\n\n" +
		"event: done\ndata: {\"engine\":\"EchoEngine\",\"totalLength\":11,\"chunkCount\":2}\n\n"

	var chunks []string
	summary, err := parseStream(strings.NewReader(raw), func(text string) {
		chunks = append(chunks, text)
	})
	if err != nil {
		t.Fatalf("parseStream: %v", err)
	}

	if got := strings.Join(chunks, ""); got != "hello world" {
		t.Errorf("reassembled = %q, want %q", got, "hello world")
	}
	if summary.ChunkCount != 2 || summary.TotalLength != 11 || summary.Engine != "EchoEngine" {
		t.Errorf("summary = %+v", summary)
	}
}

func TestParseStreamErrorEvent(t *testing.T) {
	raw := "event: chunk\ndata: \"partial\"\n\n" +
		"event: error\ndata: {\"error\":\"Stream error\"}\n\n"

	_, err := parseStream(strings.NewReader(raw), nil)
	if err == nil || !strings.Contains(err.Error(), "Stream error") {
		t.Fatalf("err = %v, want stream error", err)
	}
}

func TestParseStreamTruncated(t *testing.T) {
	raw := "event: chunk\ndata: \"only\"\n\n"

	_, err := parseStream(strings.NewReader(raw), nil)
	if err == nil {
		t.Fatal("expected error for stream without done event")
	}
}

func TestStreamSendsTenantHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(TenantHeader); got != "tenant-x" {
			t.Errorf("tenant header = %q, want tenant-x", got)
		}
		if got := r.URL.Query().Get("msg"); got != "hi" {
			t.Errorf("msg = %q, want hi", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: done\ndata: {\"engine\":\"EchoEngine\",\"totalLength\":0,\"chunkCount\":0}\n\n")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tenant-x")
	summary, err := client.Stream("hi", StreamOptions{}, nil)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if summary.ChunkCount != 0 {
		t.Errorf("summary = %+v", summary)
	}
}
