package options

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-qform/pkg/datatype"
)

const fhirJSON = "application/fhir+json"

// HTTPFetcher expands value sets against a FHIR terminology server using
// `GET {BaseURL}/ValueSet/$expand?url=<source>`. Only the expansion contains
// list is consumed.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

var _ Fetcher = (*HTTPFetcher)(nil)

type expandResponse struct {
	ResourceType string `json:"resourceType"`
	Expansion    struct {
		Contains []expandContains `json:"contains"`
	} `json:"expansion"`
	Issue []struct {
		Diagnostics string `json:"diagnostics"`
	} `json:"issue"`
}

type expandContains struct {
	System   string           `json:"system"`
	Code     string           `json:"code"`
	Display  string           `json:"display"`
	Abstract bool             `json:"abstract"`
	Inactive bool             `json:"inactive"`
	Contains []expandContains `json:"contains"`
}

func (f *HTTPFetcher) Fetch(ctx context.Context, source string) ([]Option, error) {
	base := strings.TrimRight(strings.TrimSpace(f.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("options: terminology base URL is required")
	}
	endpoint := base + "/ValueSet/$expand?url=" + url.QueryEscape(source)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("options: build expand request: %w", err)
	}
	req.Header.Set("Accept", fhirJSON)

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("options: expand %s: %w", source, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("options: read expand response: %w", err)
	}

	var payload expandResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("options: decode expand response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if len(payload.Issue) > 0 && payload.Issue[0].Diagnostics != "" {
			return nil, fmt.Errorf("options: expand %s: %s", source, payload.Issue[0].Diagnostics)
		}
		return nil, fmt.Errorf("options: expand %s: unexpected status %d", source, resp.StatusCode)
	}

	var out []Option
	flattenContains(payload.Expansion.Contains, &out)
	return out, nil
}

func flattenContains(items []expandContains, out *[]Option) {
	for _, item := range items {
		if !item.Abstract && item.Code != "" {
			coding := datatype.Coding{
				System:  item.System,
				Code:    item.Code,
				Display: item.Display,
			}
			*out = append(*out, Option{
				Value:    coding,
				Label:    coding.Label(),
				Disabled: item.Inactive,
			})
		}
		if len(item.Contains) > 0 {
			flattenContains(item.Contains, out)
		}
	}
}
