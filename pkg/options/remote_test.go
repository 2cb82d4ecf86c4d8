package options

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-qform/pkg/datatype"
)

func TestRemote_StaleEntriesSurviveRefresh(t *testing.T) {
	release := make(chan struct{})
	calls := 0
	fetcher := FetcherFunc(func(ctx context.Context, source string) ([]Option, error) {
		calls++
		if calls == 1 {
			return []Option{{Value: "first", Label: "First"}}, nil
		}
		<-release
		return []Option{{Value: "second", Label: "Second"}}, nil
	})

	remote := NewRemote("urn:vs", fetcher)
	if err := remote.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	done := remote.Refresh(context.Background())
	if !remote.Loading() {
		t.Fatalf("expected loading during refresh")
	}
	if entries := remote.Entries(); len(entries) != 1 || entries[0].Label != "First" {
		t.Fatalf("stale entries should remain visible while loading, got %#v", entries)
	}

	close(release)
	<-done

	if remote.Loading() {
		t.Fatalf("loading should clear after refresh")
	}
	entries := remote.Entries()
	if len(entries) != 1 || entries[0].Label != "Second" {
		t.Fatalf("expected refreshed entries, got %#v", entries)
	}
	value, ok := remote.ValueForKey(entries[0].Token)
	if !ok || value != "second" {
		t.Fatalf("value for key: got %#v (ok=%v)", value, ok)
	}
}

func TestRemote_ErrorIsData(t *testing.T) {
	remote := NewRemote("urn:vs", FetcherFunc(func(context.Context, string) ([]Option, error) {
		return nil, errors.New("terminology offline")
	}))

	err := remote.Load(context.Background())
	if err == nil {
		t.Fatalf("expected load error")
	}
	if remote.Error() != "terminology offline" {
		t.Fatalf("error message: got %q", remote.Error())
	}
	if remote.Loading() {
		t.Fatalf("error should end loading")
	}
}

func TestRemote_DetachedIgnoresLateResult(t *testing.T) {
	release := make(chan struct{})
	remote := NewRemote("urn:vs", FetcherFunc(func(context.Context, string) ([]Option, error) {
		<-release
		return []Option{{Value: "late"}}, nil
	}))

	done := remote.Refresh(context.Background())
	remote.Detach()
	close(release)
	<-done

	if entries := remote.Entries(); len(entries) != 0 {
		t.Fatalf("detached provider must drop late results, got %#v", entries)
	}
}

func TestRemote_SharedCacheAvoidsSecondFetch(t *testing.T) {
	var calls int32
	fetcher := FetcherFunc(func(context.Context, string) ([]Option, error) {
		atomic.AddInt32(&calls, 1)
		return []Option{{Value: "x"}}, nil
	})
	cache := NewCache(0, 0)

	first := NewRemote("urn:vs", fetcher, WithCache(cache))
	second := NewRemote("urn:vs", fetcher, WithCache(cache))

	if err := first.Load(context.Background()); err != nil {
		t.Fatalf("first load: %v", err)
	}
	<-second.Refresh(context.Background())

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one fetch, got %d", got)
	}
	if len(second.Entries()) != 1 {
		t.Fatalf("second provider should be served from cache")
	}
}

func TestHTTPFetcher_FlattensExpansion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fhir/ValueSet/$expand" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("url"); got != "http://example.org/vs/colors" {
			t.Errorf("unexpected url param %q", got)
		}
		w.Header().Set("Content-Type", fhirJSON)
		_, _ = w.Write([]byte(`{
			"resourceType": "ValueSet",
			"expansion": {"contains": [
				{"system": "urn:colors", "code": "warm", "display": "Warm", "abstract": true, "contains": [
					{"system": "urn:colors", "code": "red", "display": "Red"}
				]},
				{"system": "urn:colors", "code": "blue", "display": "Blue", "inactive": true}
			]}
		}`))
	}))
	defer server.Close()

	fetcher := &HTTPFetcher{BaseURL: server.URL + "/fhir/", Client: server.Client()}
	opts, err := fetcher.Fetch(context.Background(), "http://example.org/vs/colors")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(opts) != 2 {
		t.Fatalf("expected 2 options, got %d: %#v", len(opts), opts)
	}
	if coding, ok := opts[0].Value.(datatype.Coding); !ok || coding.Code != "red" {
		t.Fatalf("first option: %#v", opts[0])
	}
	if !opts[1].Disabled {
		t.Fatalf("inactive concept should be disabled")
	}
}

func TestHTTPFetcher_SurfacesOperationOutcome(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"resourceType":"OperationOutcome","issue":[{"diagnostics":"value set not found"}]}`))
	}))
	defer server.Close()

	fetcher := &HTTPFetcher{BaseURL: server.URL}
	_, err := fetcher.Fetch(context.Background(), "urn:missing")
	if err == nil || err.Error() != "options: expand urn:missing: value set not found" {
		t.Fatalf("unexpected error: %v", err)
	}
}
