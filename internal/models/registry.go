package models

import (
	"context"
	"sync"
	"time"
)

// FileURLGenerator produces signed URLs for stored files (layout logos,
// invoice attachments).
type FileURLGenerator interface {
	GetSignedURL(ctx context.Context, path string, duration time.Duration) (string, error)
}

var (
	urlGenerator FileURLGenerator
	registryMu   sync.RWMutex
)

// RegisterFileURLGenerator sets the URL generator used by File.AfterFind
func RegisterFileURLGenerator(generator FileURLGenerator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	urlGenerator = generator
}
