package worker

// Jobs that exhaust their retries land on a per-queue Redis list
// ("dlq:" + queue) so an operator can inspect and re-enqueue them by hand.
// Every entry carries the venta it belonged to when the payload has one;
// that is the key support actually searches the DLQ by.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry is the envelope stored on the dead letter list.
type DLQEntry struct {
	Queue    string          `json:"queue"`
	JobType  string          `json:"job_type"`
	VentaID  string          `json:"venta_id,omitempty"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	Attempts int             `json:"attempts"`
	FailedAt time.Time       `json:"failed_at"`
}

// buildDLQEntry wraps a failed job, lifting venta_id out of the payload
// when present so the entry is searchable without decoding it.
func buildDLQEntry(queue, jobType string, payload json.RawMessage, reason string, attempts int) DLQEntry {
	entry := DLQEntry{
		Queue:    queue,
		JobType:  jobType,
		Payload:  payload,
		Reason:   reason,
		Attempts: attempts,
		FailedAt: time.Now().UTC(),
	}
	var ref struct {
		VentaID string `json:"venta_id"`
	}
	if json.Unmarshal(payload, &ref) == nil {
		entry.VentaID = ref.VentaID
	}
	return entry
}

// SendToDLQ pushes a failed job onto the dead letter list. Failures here
// are logged and swallowed: losing a DLQ entry must never crash a worker.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	entry := buildDLQEntry(queue, jobType, payload, reason, attempts)

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal failed")
		return
	}
	if err := rdb.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: push failed")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("venta_id", entry.VentaID).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength reports the depth of a queue's dead letter list.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
