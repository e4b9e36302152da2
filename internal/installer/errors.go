package installer

import (
	"errors"
	"fmt"

	"jlo/internal/env"
)

// Resolution failures
var (
	ErrUnsupportedPlatform = env.ErrUnsupportedPlatform
	ErrNoMatchingBuild     = errors.New("no matching JDK found for the specified version and system architecture")
	ErrMetadataIncomplete  = errors.New("incomplete metadata received from API")
	ErrCatalogUnreachable  = errors.New("could not reach the release catalog")
	ErrNoReleasesFound     = errors.New("no available releases found")
)

// Fetch failures
var (
	ErrContentLengthMissing = errors.New("server did not report a content length")
	ErrTransfer             = errors.New("transfer failed")
	ErrChecksumMismatch     = errors.New("checksum mismatch")
)

// Extraction failures
var (
	ErrUnsupportedFormat = errors.New("unsupported archive format, only .tar.gz and .zip are supported")
	ErrExtractionFailed  = errors.New("extraction failed")
)

// ChecksumMismatchError reports a downloaded archive whose digest differs
// from the catalog's. The file it refers to must not be installed.
type ChecksumMismatchError struct {
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected %s, got %s", e.Expected, e.Actual)
}

func (e *ChecksumMismatchError) Is(target error) bool {
	return target == ErrChecksumMismatch
}
