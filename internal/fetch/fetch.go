// Package fetch provides the bridge that lets rendering code query the
// ephemeral content API server as if it were the final site's data API.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Query describes a content lookup against the ephemeral server. A query with
// an ID fetches a single record; otherwise it lists the collection.
type Query struct {
	Collection string
	ID         string
	Limit      int
	After      string
}

// Func maps a query to a parsed JSON response by issuing an HTTP GET against
// the ephemeral content server. No caching, no retries; a failed fetch fails
// the build.
type Func func(ctx context.Context, q Query) (json.RawMessage, error)

// New returns a Func bound to the server listening on the given local port.
func New(port int) Func {
	client := &http.Client{}
	base := fmt.Sprintf("http://127.0.0.1:%d", port)

	return func(ctx context.Context, q Query) (json.RawMessage, error) {
		u, err := buildURL(base, q)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("build content query request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("content query %s: %w", u, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read content query response %s: %w", u, err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("content query %s: status %d: %s", u, resp.StatusCode, body)
		}
		return json.RawMessage(body), nil
	}
}

func buildURL(base string, q Query) (string, error) {
	if q.Collection == "" {
		return base + "/collections", nil
	}

	u := base + "/store/" + url.PathEscape(q.Collection)
	if q.ID != "" {
		return u + "/" + url.PathEscape(q.ID), nil
	}

	params := url.Values{}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.After != "" {
		params.Set("after", q.After)
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u, nil
}
