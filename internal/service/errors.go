package service

import (
	"errors"
	"fmt"

	"docmark/internal/grant"
	"docmark/internal/repository"
)

// Error taxonomy surfaced to the HTTP layer. Provider errors are wrapped, never returned bare.
var (
	// ErrValidation marks a malformed request. It is the caller's fault and never reaches storage.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound covers both missing and not-owned resources.
	ErrNotFound = errors.New("not found")
	// ErrUpstreamUnavailable means storage or persistence failed or timed out. Safe to retry.
	ErrUpstreamUnavailable = errors.New("temporarily unavailable")
	// ErrPayloadTooLarge is returned for uploads above the configured limit.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrUnsupportedMedia is returned for uploads that are not PDF documents.
	ErrUnsupportedMedia = errors.New("only PDF documents are accepted")

	ErrOwnerRequired = fmt.Errorf("%w: owner id is required", ErrValidation)
	ErrIDRequired    = fmt.Errorf("%w: id is required", ErrValidation)
	ErrReaderNil     = fmt.Errorf("%w: reader is nil", ErrValidation)
	ErrEmptyFile     = fmt.Errorf("%w: file is empty", ErrValidation)

	ErrDocumentNotFound  = fmt.Errorf("document %w", ErrNotFound)
	ErrHighlightNotFound = fmt.Errorf("highlight %w", ErrNotFound)
)

// IsUnavailable reports whether err should be shown as "temporarily unavailable".
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, grant.ErrGrant)
}

// upstream converts a repository or storage error into the service taxonomy.
func upstream(op string, err error, notFound error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, op, err)
}
