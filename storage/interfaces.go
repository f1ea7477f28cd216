package storage

import "farcaster-analyzer/models"

// ReportWriter is the interface any report artifact must satisfy.
type ReportWriter interface {
	WriteReport(r *models.AggregateReport) error
}

// SampleWriter persists a sample of sanitized casts.
type SampleWriter interface {
	WriteSample(casts []models.Cast) error
	Close() error
}
