package meta

import (
	"context"
	"sync"

	se "github.com/bornholm/skimmer/pkg/search"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Client fans a query out to several engines and merges their results,
// deduplicated by url.
type Client struct {
	clients []se.Client
}

// Search implements search.Client. Engine failures are aggregated but
// only fatal when every engine failed.
func (s *Client) Search(ctx context.Context, search string) ([]se.Result, error) {
	var mu sync.Mutex
	var aggregatedErr error

	merged := make([]se.Result, 0)
	seen := make(map[string]struct{})

	var wg sync.WaitGroup
	wg.Add(len(s.clients))

	for _, c := range s.clients {
		go func(client se.Client) {
			defer wg.Done()

			results, err := client.Search(ctx, search)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				aggregatedErr = multierror.Append(aggregatedErr, errors.WithStack(err))
				return
			}

			for _, r := range results {
				if _, exists := seen[r.URL]; exists {
					continue
				}

				seen[r.URL] = struct{}{}
				merged = append(merged, r)
			}
		}(c)
	}

	wg.Wait()

	if len(merged) == 0 && aggregatedErr != nil {
		return nil, aggregatedErr
	}

	return merged, nil
}

func NewClient(clients ...se.Client) *Client {
	return &Client{
		clients: clients,
	}
}

var _ se.Client = &Client{}
