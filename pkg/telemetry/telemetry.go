// Package telemetry records query events to Parquet files for offline
// analysis of routing decisions and fallback rates.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
)

// QueryEvent is one answered question.
type QueryEvent struct {
	ID          string    `parquet:"id"`
	Timestamp   time.Time `parquet:"timestamp"`
	Question    string    `parquet:"question"`
	Class       string    `parquet:"class"`
	Success     bool      `parquet:"success"`
	DurationMs  int64     `parquet:"duration_ms"`
	Entities    int       `parquet:"entities"`
	Communities int       `parquet:"communities"`
}

// Recorder buffers query events and writes them to Parquet files in batches.
type Recorder struct {
	outputDir string
	batchSize int

	mu     sync.Mutex
	buffer []QueryEvent
}

// NewRecorder creates a recorder writing under outputDir.
func NewRecorder(outputDir string) (*Recorder, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}
	return &Recorder{
		outputDir: outputDir,
		batchSize: 100,
		buffer:    make([]QueryEvent, 0, 100),
	}, nil
}

// Record buffers one event, assigning it an id and timestamp, and flushes
// when the batch is full.
func (r *Recorder) Record(event QueryEvent) error {
	event.ID = uuid.New().String()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, event)
	if len(r.buffer) >= r.batchSize {
		return r.flush()
	}
	return nil
}

// Flush writes any buffered events out immediately.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flush()
}

// Close flushes remaining events.
func (r *Recorder) Close() error {
	return r.Flush()
}

// flush writes the current buffer to a new Parquet file.
// Caller must hold the lock.
func (r *Recorder) flush() error {
	if len(r.buffer) == 0 {
		return nil
	}

	filename := fmt.Sprintf("query_events_%s_%d.parquet",
		time.Now().Format("20060102_150405"), time.Now().UnixNano())
	path := filepath.Join(r.outputDir, filename)

	if err := parquet.WriteFile(path, r.buffer); err != nil {
		return fmt.Errorf("failed to write telemetry parquet file: %w", err)
	}

	r.buffer = r.buffer[:0]
	return nil
}
