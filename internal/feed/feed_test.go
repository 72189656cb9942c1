package feed

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mmcdole/gofeed"

	"mediathek_bot/internal/model"
)

type mockTransport struct {
	body       string
	statusCode int
	err        error

	gotURL string
}

func (m *mockTransport) Do(req *http.Request) (*http.Response, error) {
	m.gotURL = req.URL.String()
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../testdata/sample.xml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return string(data)
}

func TestSearch(t *testing.T) {
	xml := loadFixture(t)

	tests := []struct {
		name      string
		transport *mockTransport
		wantLen   int
		wantErr   bool
	}{
		{
			name:      "successful fetch",
			transport: &mockTransport{body: xml, statusCode: 200},
			wantLen:   3,
		},
		{
			name:      "http error status",
			transport: &mockTransport{body: "not found", statusCode: 404},
			wantErr:   true,
		},
		{
			name:      "network error",
			transport: &mockTransport{err: io.ErrUnexpectedEOF},
			wantErr:   true,
		},
		{
			name:      "invalid xml",
			transport: &mockTransport{body: "not xml at all", statusCode: 200},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.transport, "")
			videos, err := c.Search(context.Background(), "tatort")

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.wantLen, len(videos)); diff != "" {
				t.Errorf("video count mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearchEscapesQuery(t *testing.T) {
	transport := &mockTransport{body: "<rss><channel></channel></rss>", statusCode: 200}
	c := New(transport, "https://feed.example.com/feed")

	if _, err := c.Search(context.Background(), "tatort münster"); err != nil {
		t.Fatalf("search: %v", err)
	}

	want := "https://feed.example.com/feed?query=tatort+m%C3%BCnster"
	if diff := cmp.Diff(want, transport.gotURL); diff != "" {
		t.Errorf("request URL mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchMapsVideos(t *testing.T) {
	xml := loadFixture(t)
	c := New(&mockTransport{body: xml, statusCode: 200}, "")

	videos, err := c.Search(context.Background(), "tatort")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(videos) == 0 {
		t.Fatal("expected videos")
	}

	want := model.Video{
		ID:              "mvw-0001",
		Title:           "Tatort: Das Verschwinden",
		Author:          "ARD",
		DurationSeconds: 5340,
		Summary:         "Kommissarin Lindholm ermittelt in einem Vermisstenfall.",
		MediaURL:        "https://media.example.org/ard/tatort-das-verschwinden.mp4",
		PageURL:         "https://www.ardmediathek.de/video/tatort-das-verschwinden",
		PublishedAt:     time.Date(2026, 1, 5, 20, 15, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, videos[0]); diff != "" {
		t.Errorf("video mismatch (-want +got):\n%s", diff)
	}

	// Feed order must be preserved.
	var gotIDs []string
	for _, v := range videos {
		gotIDs = append(gotIDs, v.ID)
	}
	if diff := cmp.Diff([]string{"mvw-0001", "mvw-0002", "mvw-0003"}, gotIDs); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestItemID(t *testing.T) {
	tests := []struct {
		name    string
		item    *gofeed.Item
		wantID  string
		hasHash bool
	}{
		{
			name:   "with guid",
			item:   &gofeed.Item{GUID: "abc-123"},
			wantID: "abc-123",
		},
		{
			name:    "without guid generates hash",
			item:    &gofeed.Item{Title: "Video Without GUID", Link: "https://example.com/v.mp4"},
			hasHash: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ItemID(tt.item)
			if tt.hasHash {
				if !strings.HasPrefix(got, "sha256:") {
					t.Errorf("expected sha256 prefix, got %q", got)
				}
				return
			}
			if diff := cmp.Diff(tt.wantID, got); diff != "" {
				t.Errorf("ID mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
