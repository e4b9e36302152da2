package installer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	// downloadTimeout bounds a whole archive request.
	downloadTimeout = 60 * time.Second

	chunkSize = 8 * 1024
)

// Fetcher streams archives to disk, hashing them on the way.
type Fetcher struct {
	client *http.Client
	track  TrackerFactory
}

// NewFetcher creates a Fetcher. A nil client gets a 60s timeout; a nil
// factory disables progress reporting.
func NewFetcher(client *http.Client, track TrackerFactory) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: downloadTimeout}
	}
	if track == nil {
		track = NopTracker
	}
	return &Fetcher{client: client, track: track}
}

// Fetch downloads url into destPath and verifies its SHA-256 digest against
// expectedChecksum (hex, exact match). On a mismatch the file is left on disk
// and a *ChecksumMismatchError is returned; callers must not use it.
func (f *Fetcher) Fetch(ctx context.Context, url, expectedChecksum, destPath string) (err error) {
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to write file: %w", cerr)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransfer, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransfer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: download failed with status: %d", ErrTransfer, resp.StatusCode)
	}

	totalSize := resp.ContentLength
	if totalSize < 0 {
		return ErrContentLengthMissing
	}

	tracker := f.track("Downloading "+filepath.Base(destPath)+" ...", totalSize)
	hasher := sha256.New()

	written, err := io.CopyBuffer(io.MultiWriter(out, hasher, tracker), resp.Body, make([]byte, chunkSize))
	if err == nil && written != totalSize {
		err = fmt.Errorf("incomplete download: got %d bytes, expected %d", written, totalSize)
	}
	tracker.Close(err)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransfer, err)
	}

	actual := hex.EncodeToString(hasher.Sum(nil))
	if actual != expectedChecksum {
		return &ChecksumMismatchError{Expected: expectedChecksum, Actual: actual}
	}

	return nil
}
