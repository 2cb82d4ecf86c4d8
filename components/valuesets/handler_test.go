package valuesets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-qform/pkg/datatype"
	"github.com/goliatone/go-qform/pkg/options"
)

const colorsURL = "urn:test:colors"

type handlerResponse struct {
	Data []options.Entry `json:"data"`
}

func colorsCatalog() *Catalog {
	return NewCatalog(ValueSet{
		URL: colorsURL,
		Concept: []datatype.Coding{
			{System: "urn:colors", Code: "red", Display: "Red"},
			{System: "urn:colors", Code: "dark-red", Display: "Dark red"},
			{System: "urn:colors", Code: "blue", Display: "Blue"},
		},
	})
}

func serve(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) []options.Entry {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}
	var payload handlerResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload.Data
}

func TestHandler_SearchPrefersPrefixMatches(t *testing.T) {
	h := Handler(WithFetcher(colorsCatalog()))

	rec := serve(t, h, "/valuesets?url="+colorsURL+"&q=red")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	data := decode(t, rec)
	if len(data) != 2 {
		t.Fatalf("expected 2 results, got %#v", data)
	}
	if data[0].Label != "Red" || data[0].Token != "coding:urn:colors|red" {
		t.Fatalf("prefix match should come first: %#v", data[0])
	}
	if data[1].Label != "Dark red" {
		t.Fatalf("unexpected second result: %#v", data[1])
	}
}

func TestHandler_EmptyQueryListsTopEntries(t *testing.T) {
	h := Handler(WithFetcher(colorsCatalog()))

	data := decode(t, serve(t, h, "/valuesets?url="+colorsURL+"&limit=2"))
	if len(data) != 2 || data[0].Label != "Red" {
		t.Fatalf("expected the first two entries in catalog order, got %#v", data)
	}

	h = Handler(WithFetcher(colorsCatalog()), WithEmptySearchMode(EmptySearchNone))
	data = decode(t, serve(t, h, "/valuesets?url="+colorsURL))
	if data == nil || len(data) != 0 {
		t.Fatalf("expected an empty data array, got %#v", data)
	}
}

func TestHandler_MissingURLIsBadRequest(t *testing.T) {
	rec := serve(t, Handler(WithFetcher(colorsCatalog())), "/valuesets?q=red")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestHandler_UnknownValueSetIsNotFound(t *testing.T) {
	rec := serve(t, Handler(WithFetcher(colorsCatalog())), "/valuesets?url=urn:missing")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestHandler_FetchFailureIsBadGateway(t *testing.T) {
	failing := options.FetcherFunc(func(context.Context, string) ([]options.Option, error) {
		return nil, errors.New("terminology server down")
	})
	rec := serve(t, Handler(WithFetcher(failing)), "/valuesets?url="+colorsURL)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
}

func TestHandler_GuardRejects(t *testing.T) {
	h := Handler(
		WithFetcher(colorsCatalog()),
		WithGuard(func(*http.Request) error {
			return StatusError{Code: http.StatusUnauthorized}
		}),
	)
	if rec := serve(t, h, "/valuesets?url="+colorsURL); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/valuesets?url="+colorsURL, nil)
	rec := httptest.NewRecorder()
	Handler(WithFetcher(colorsCatalog())).ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, HEAD" {
		t.Fatalf("unexpected Allow header %q", allow)
	}
}

func TestHandler_DefaultCatalog(t *testing.T) {
	rec := serve(t, Handler(), "/valuesets?url=http://hl7.org/fhir/ValueSet/administrative-gender%7C4.0.1&q=fe")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	data := decode(t, rec)
	if len(data) != 1 || data[0].Label != "Female" {
		t.Fatalf("unexpected payload: %#v", data)
	}
}
