package linkcheck

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tahongtrung/phenomic/internal/retry"
)

const (
	eventSubject   = "phenomic.links.broken"
	publishTimeout = 5 * time.Second
)

// brokenLinkEvent is the wire form of one audit issue.
type brokenLinkEvent struct {
	Page      string    `json:"page"`
	Target    string    `json:"target"`
	Timestamp time.Time `json:"timestamp"`
}

// publishIssues sends broken-link events to NATS. Best effort: connection or
// publish failures are logged and swallowed, never failing the build.
func publishIssues(ctx context.Context, natsURL string, issues []Issue) {
	policy := retry.DefaultPolicy()
	policy.Initial = 500 * time.Millisecond
	policy.Max = 2 * time.Second

	var conn *nats.Conn
	err := policy.Do(ctx, func() error {
		var connErr error
		conn, connErr = nats.Connect(natsURL, nats.Timeout(publishTimeout))
		return connErr
	})
	if err != nil {
		slog.Warn("link audit: NATS connect failed", "url", natsURL, "error", err)
		return
	}
	defer conn.Close()

	now := time.Now().UTC()
	for _, issue := range issues {
		if ctx.Err() != nil {
			return
		}
		payload, err := json.Marshal(brokenLinkEvent{Page: issue.Page, Target: issue.Target, Timestamp: now})
		if err != nil {
			continue
		}
		if err := conn.Publish(eventSubject, payload); err != nil {
			slog.Warn("link audit: publish failed", "error", err)
			return
		}
	}
	_ = conn.Flush()
}
