// Package queue is a small reliable job queue on Redis lists.
//
// Producers LPUSH a JSON envelope on "queue:<name>". Workers BLMOVE it to
// "queue:<name>:processing", run the handler and remove it on success.
// Failed jobs are retried up to a limit and then parked on
// "queue:<name>:failed". Delivery is at-least-once.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Envelope is the stored form of a job.
type Envelope struct {
	ID       string          `json:"id"`
	Attempts int             `json:"attempts"`
	Payload  json.RawMessage `json:"payload"`
	// LastError is set on jobs moved to the failed list.
	LastError string `json:"last_error,omitempty"`
}

func pendingKey(name string) string    { return "queue:" + name }
func processingKey(name string) string { return "queue:" + name + ":processing" }
func failedKey(name string) string     { return "queue:" + name + ":failed" }

// Queue is the producer side.
type Queue struct {
	client redis.UniversalClient
}

func New(client redis.UniversalClient) *Queue {
	return &Queue{client: client}
}

// Enqueue marshals payload and pushes a new job on the named queue.
func (q *Queue) Enqueue(ctx context.Context, name string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	raw, err := json.Marshal(Envelope{ID: uuid.NewString(), Payload: body})
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := q.client.LPush(ctx, pendingKey(name), raw).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", name, err)
	}
	return nil
}

// Len returns the number of jobs waiting on the named queue.
func (q *Queue) Len(ctx context.Context, name string) (int64, error) {
	return q.client.LLen(ctx, pendingKey(name)).Result()
}

// Failed returns the jobs parked on the failed list of the named queue,
// most recent first.
func (q *Queue) Failed(ctx context.Context, name string) ([]Envelope, error) {
	items, err := q.client.LRange(ctx, failedKey(name), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Envelope, 0, len(items))
	for _, it := range items {
		var e Envelope
		if err := json.Unmarshal([]byte(it), &e); err != nil {
			// parked as received
			e = Envelope{LastError: err.Error(), Payload: json.RawMessage(it)}
		}
		out = append(out, e)
	}
	return out, nil
}
