package fetcher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type mockTransport struct {
	body       string
	statusCode int
	status     string
	err        error
	lastReq    *http.Request
}

func (m *mockTransport) Do(req *http.Request) (*http.Response, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.statusCode,
		Status:     m.status,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

func TestJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name       string
		transport  *mockTransport
		want       payload
		wantStatus int
		wantErr    bool
	}{
		{
			name:      "successful fetch",
			transport: &mockTransport{body: `{"name":"ozone"}`, statusCode: 200, status: "200 OK"},
			want:      payload{Name: "ozone"},
		},
		{
			name:       "server error",
			transport:  &mockTransport{body: "boom", statusCode: 500, status: "500 Internal Server Error"},
			wantStatus: 500,
			wantErr:    true,
		},
		{
			name:      "network error",
			transport: &mockTransport{err: io.ErrUnexpectedEOF},
			wantErr:   true,
		},
		{
			name:      "invalid json",
			transport: &mockTransport{body: "not json", statusCode: 200, status: "200 OK"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.transport)
			var got payload
			err := f.JSON(context.Background(), "https://example.com/api", http.Header{"X-Api-Key": {"secret"}}, &got)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var se *StatusError
				if tt.wantStatus != 0 {
					if !errors.As(err, &se) {
						t.Fatalf("expected *StatusError, got %T: %v", err, err)
					}
					if diff := cmp.Diff(tt.wantStatus, se.StatusCode); diff != "" {
						t.Errorf("status mismatch (-want +got):\n%s", diff)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("payload mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff("secret", tt.transport.lastReq.Header.Get("X-Api-Key")); diff != "" {
				t.Errorf("api key header mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStream(t *testing.T) {
	transport := &mockTransport{body: "GIF89a", statusCode: 200, status: "200 OK"}
	f := New(transport)

	rc, err := f.Stream(context.Background(), "https://example.com/wms", url.Values{"layers": {"a,b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if diff := cmp.Diff("GIF89a", string(data)); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("https://example.com/wms?layers=a%2Cb", transport.lastReq.URL.String()); diff != "" {
		t.Errorf("url mismatch (-want +got):\n%s", diff)
	}
}

func TestStreamStatusError(t *testing.T) {
	f := New(&mockTransport{statusCode: 404, status: "404 Not Found"})

	_, err := f.Stream(context.Background(), "https://example.com/missing.gif", nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if diff := cmp.Diff("404 Not Found", se.Status); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
}
