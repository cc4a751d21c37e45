package shortener

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(
		WithHTTPClient(srv.Client()),
		WithEndpoints(Endpoints{
			IsGd:    srv.URL + "/create.php",
			DaGd:    srv.URL + "/s",
			ClckRu:  srv.URL + "/--",
			TinyURL: srv.URL + "/api-create.php",
		}),
	)
}

func TestShorten_TLSEndpoint(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("https://da.gd/tls"))
	}))
	defer srv.Close()

	got, err := newTestClient(srv).Shorten(context.Background(), "https://example.com", DaGd)
	if err != nil {
		t.Fatalf("Shorten() error: %v", err)
	}
	if got != "https://da.gd/tls" {
		t.Errorf("Shorten() = %q", got)
	}
}

func TestShorten_Providers(t *testing.T) {
	var gotPath, gotURL, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotURL = r.URL.Query().Get("url")
		gotFormat = r.URL.Query().Get("format")
		w.Write([]byte("https://sho.rt/abc\n"))
	}))
	defer srv.Close()

	client := newTestClient(srv)

	tests := []struct {
		provider   Provider
		wantPath   string
		wantFormat string
	}{
		{IsGd, "/create.php", "simple"},
		{DaGd, "/s", ""},
		{ClckRu, "/--", ""},
		{TinyURL, "/api-create.php", ""},
	}

	for _, tt := range tests {
		t.Run(tt.provider.String(), func(t *testing.T) {
			short, err := client.Shorten(context.Background(), "https://example.com/long?x=1", tt.provider)
			if err != nil {
				t.Fatalf("Shorten() unexpected error: %v", err)
			}
			if short != "https://sho.rt/abc" {
				t.Errorf("Shorten() = %q, want %q", short, "https://sho.rt/abc")
			}
			if gotPath != tt.wantPath {
				t.Errorf("path = %q, want %q", gotPath, tt.wantPath)
			}
			if gotURL != "https://example.com/long?x=1" {
				t.Errorf("url param = %q", gotURL)
			}
			if gotFormat != tt.wantFormat {
				t.Errorf("format param = %q, want %q", gotFormat, tt.wantFormat)
			}
		})
	}
}

func TestShorten_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "Server Error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "Empty Body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
		},
		{
			name: "Error Text Body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("Error: Please enter a valid URL to shorten"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newTestClient(srv).Shorten(context.Background(), "https://example.com", IsGd)
			var f *Failure
			if !errors.As(err, &f) {
				t.Fatalf("Shorten() error = %v, want *Failure", err)
			}
			if f.Provider != IsGd || f.Reason == "" {
				t.Errorf("Failure = %+v", f)
			}
		})
	}
}

func TestShorten_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(
		WithEndpoints(Endpoints{DaGd: srv.URL}),
		WithTimeout(20*time.Millisecond),
	)

	_, err := client.Shorten(context.Background(), "https://example.com", DaGd)
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("Shorten() error = %v, want *Failure", err)
	}
}

func TestShorten_UnknownProvider(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Shorten(context.Background(), "https://example.com", ProviderUnknown)
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("Shorten() error = %v, want *Failure", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("unknown provider made %d requests", calls)
	}
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in   string
		want Provider
	}{
		{"Is.gd", IsGd},
		{"isgd", IsGd},
		{"Da.gd", DaGd},
		{"CLCK.RU", ClckRu},
		{"TinyURL", TinyURL},
		{"bit.ly", ProviderUnknown},
		{"", ProviderUnknown},
	}

	for _, tt := range tests {
		if got := ParseProvider(tt.in); got != tt.want {
			t.Errorf("ParseProvider(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
