package importer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wonny/liga/backend/internal/contracts"
)

// PageFetcher downloads a page body; *httputil.Client satisfies it
type PageFetcher interface {
	GetBody(ctx context.Context, url string) ([]byte, error)
}

// FetchResults downloads a published results page and parses it
func FetchResults(ctx context.Context, fetcher PageFetcher, url string) (*contracts.Snapshot, error) {
	body, err := fetcher.GetBody(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch results %s: %w", url, err)
	}

	snapshot, err := ParseResultsHTML(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("results %s: %w", url, err)
	}
	return snapshot, nil
}
