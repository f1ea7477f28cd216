package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"farcaster-analyzer/models"
)

// CSVWriter writes a sample of sanitized casts to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
	limit  int
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
// At most limit casts are written per call; limit <= 0 writes them all.
func NewCSVWriter(path string, limit int) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	// Write header
	if err := w.Write([]string{
		"hash", "author", "text", "likes", "recasts", "replies", "channel", "timestamp",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w, limit: limit}, nil
}

// WriteSample writes the first casts of the sample.
func (c *CSVWriter) WriteSample(casts []models.Cast) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.limit > 0 && len(casts) > c.limit {
		casts = casts[:c.limit]
	}

	for _, cast := range casts {
		row := []string{
			cast.Hash,
			cast.Username(),
			cast.Text,
			strconv.Itoa(cast.Likes()),
			strconv.Itoa(cast.Recasts()),
			strconv.Itoa(cast.ReplyCount()),
			cast.ChannelName(""),
			cast.TimestampString(),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
