/*
reporter.go - Best-effort security event reporter

PURPOSE:
  Fire-and-forget delivery of security events to the telemetry endpoint.
  Implements ledger.Reporter.

GUARANTEES:
  - Never propagates its own failures to the caller (swallow and log).
  - Never blocks a mutation path waiting for delivery: each event is
    sent on its own goroutine with a bounded timeout, detached from the
    caller's context so a finished request cannot cancel delivery.
  - Flush waits for in-flight deliveries; used at shutdown and in tests.
*/
package remote

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

type eventRequest struct {
	EventID    string         `json:"eventId"`
	UserID     string         `json:"userId"`
	DeviceID   string         `json:"deviceId"`
	Action     string         `json:"action"`
	Metadata   map[string]any `json:"metadata"`
	ReportedAt int64          `json:"reportedAt"`
}

// Reporter delivers security events to the telemetry endpoint.
type Reporter struct {
	client *Client
	wg     sync.WaitGroup
}

func NewReporter(client *Client) *Reporter {
	return &Reporter{client: client}
}

// Report issues the delivery and returns immediately. No response body
// is consumed.
func (r *Reporter) Report(_ context.Context, action string, metadata map[string]any) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	ev := eventRequest{
		EventID:    uuid.NewString(),
		UserID:     r.client.cfg.UserID,
		DeviceID:   r.client.cfg.DeviceID,
		Action:     action,
		Metadata:   metadata,
		ReportedAt: time.Now().UnixMilli(),
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.client.cfg.ReportTimeout)
		defer cancel()

		if err := r.client.post(ctx, "/v1/security/events", ev, nil); err != nil {
			log.Printf("reporter: dropped security event %q: %v", action, err)
		}
	}()
}

// Flush waits for in-flight deliveries to finish.
func (r *Reporter) Flush() {
	r.wg.Wait()
}
