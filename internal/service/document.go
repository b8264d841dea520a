package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"docmark/internal/grant"
	"docmark/internal/model"
	"docmark/internal/repository"
	"docmark/internal/storage"
)

const (
	StatusReady   = "ready"
	StatusPending = "pending"

	grantUnavailableMsg = "document temporarily unavailable"
	sniffLen            = 512
)

var tracer = otel.Tracer("docmark/service")

// Granter mints access grants for storage keys.
type Granter interface {
	Issue(ctx context.Context, key string) (grant.Grant, error)
}

// DocumentView is a document as served to its owner: metadata plus a freshly minted grant,
// a pending marker, or a soft error when the grant could not be issued.
type DocumentView struct {
	model.Document
	Status       string     `json:"status"`
	SizeHuman    string     `json:"size_human"`
	URL          string     `json:"url,omitempty"`
	URLExpiresAt *time.Time `json:"url_expires_at,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []DocumentView `json:"data"`
	Total int            `json:"total"`
}

// DocumentService defines the use cases for handling documents. Every operation is owner scoped.
type DocumentService interface {
	// Create stores the PDF bytes, then records the document, and rolls back storage if the record write fails.
	Create(ctx context.Context, ownerID, title string, r io.Reader, size int64) (*DocumentView, error)

	// List returns the owner's documents using limit/offset and a total count, each with its own grant.
	List(ctx context.Context, ownerID string, limit, offset int) (*DocumentListResult, error)

	// Get returns a single owned document with its highlights and a fresh grant.
	Get(ctx context.Context, ownerID, id string) (*DocumentView, error)

	// Delete removes the storage object first and the record second.
	Delete(ctx context.Context, ownerID, id string) error
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store  storage.Storage
	repo   repository.DocumentRepository
	grants Granter
	settings
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, grants Granter, opts ...Option) DocumentService {
	return &documentService{store: store, repo: repo, grants: grants, settings: newSettings(opts)}
}

func (s *documentService) Create(ctx context.Context, ownerID, title string, r io.Reader, size int64) (*DocumentView, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Create")
	defer span.End()

	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if r == nil {
		return nil, ErrReaderNil
	}
	if size <= 0 {
		return nil, ErrEmptyFile
	}
	if size > s.maxSize {
		return nil, fmt.Errorf("%w: %s exceeds the %s limit", ErrPayloadTooLarge,
			humanize.Bytes(uint64(size)), humanize.Bytes(uint64(s.maxSize)))
	}

	body, err := sniffPDF(r)
	if err != nil {
		return nil, err
	}

	title = normalizeTitle(title)
	now := s.now().UTC()
	key := storageKey(ownerID, title, now)
	span.SetAttributes(attribute.String("storage.key", key))

	putCtx, cancel := s.bounded(ctx)
	objInfo, err := s.store.Put(putCtx, key, body, storage.PutObjectOptions{
		Size:        size,
		ContentType: model.DocumentContentType,
		Metadata: map[string]string{
			"original-filename": title,
			"owner-id":          ownerID,
		},
	})
	cancel()
	if err != nil {
		return nil, upstream("upload to storage", err, ErrUpstreamUnavailable)
	}
	if objInfo.Key == "" {
		objInfo.Key = key
	}
	if objInfo.Size <= 0 {
		objInfo.Size = size
	}

	doc := &model.Document{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		StorageKey:  objInfo.Key,
		Size:        objInfo.Size,
		ContentType: model.DocumentContentType,
		CreatedAt:   now,
	}
	dbCtx, cancel := s.bounded(ctx)
	stored, err := s.repo.Create(dbCtx, doc)
	cancel()
	if err != nil {
		// Rollback: delete the object from storage, even if the request was cancelled.
		rbCtx, cancel := s.bounded(context.WithoutCancel(ctx))
		defer cancel()
		if delErr := s.store.Delete(rbCtx, objInfo.Key); delErr != nil {
			s.log.Error().Err(delErr).Str("component", "service").Str("storage_key", objInfo.Key).Msg("upload_rollback_failed")
			return nil, fmt.Errorf("%w: db save failed: %v; rollback delete failed: %v", ErrUpstreamUnavailable, err, delErr)
		}
		return nil, fmt.Errorf("%w: db save failed: %w", ErrUpstreamUnavailable, err)
	}

	s.log.Info().Str("component", "service").Str("document_id", stored.ID).Str("owner_id", ownerID).
		Int64("size", stored.Size).Msg("document_created")

	view, err := s.decorate(ctx, *stored)
	if err != nil {
		view.Error = grantUnavailableMsg
	}
	return &view, nil
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, ownerID string, limit, offset int) (*DocumentListResult, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.List")
	defer span.End()

	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	dbCtx, cancel := s.bounded(ctx)
	res, err := s.repo.ListByOwner(dbCtx, ownerID, repository.PageQuery{Limit: limit, Offset: offset})
	cancel()
	if err != nil {
		return nil, upstream("list documents", err, ErrDocumentNotFound)
	}

	// A grant failure degrades its own item only.
	items := make([]DocumentView, len(res.Items))
	var g errgroup.Group
	g.SetLimit(grantConcurrency)
	for i, doc := range res.Items {
		g.Go(func() error {
			view, err := s.decorate(ctx, doc)
			if err != nil {
				view.Error = grantUnavailableMsg
			}
			items[i] = view
			return nil
		})
	}
	_ = g.Wait()

	return &DocumentListResult{Items: items, Total: res.Total}, nil
}

// Get returns a document by ID. A grant failure is reported as unavailable, never as missing.
func (s *documentService) Get(ctx context.Context, ownerID, id string) (*DocumentView, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Get")
	defer span.End()

	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if id == "" {
		return nil, ErrIDRequired
	}

	dbCtx, cancel := s.bounded(ctx)
	doc, err := s.repo.FindByOwner(dbCtx, ownerID, id)
	cancel()
	if err != nil {
		return nil, upstream("find document", err, ErrDocumentNotFound)
	}

	view, err := s.decorate(ctx, *doc)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Delete removes a document from storage, then deletes its record.
func (s *documentService) Delete(ctx context.Context, ownerID, id string) error {
	ctx, span := tracer.Start(ctx, "DocumentService.Delete")
	defer span.End()

	if ownerID == "" {
		return ErrOwnerRequired
	}
	if id == "" {
		return ErrIDRequired
	}

	dbCtx, cancel := s.bounded(ctx)
	doc, err := s.repo.FindByOwner(dbCtx, ownerID, id)
	cancel()
	if err != nil {
		return upstream("find document", err, ErrDocumentNotFound)
	}

	// Delete from storage first; if this fails, keep the record so the delete can be retried.
	if !doc.Pending() {
		stCtx, cancel := s.bounded(ctx)
		err := s.store.Delete(stCtx, doc.StorageKey)
		cancel()
		if err != nil {
			s.log.Warn().Err(err).Str("component", "service").Str("document_id", id).Msg("storage_delete_failed")
			return upstream("delete storage", err, ErrUpstreamUnavailable)
		}
	}

	dbCtx, cancel = s.bounded(ctx)
	defer cancel()
	if err := s.repo.Delete(dbCtx, ownerID, id); err != nil {
		return upstream("delete record", err, ErrDocumentNotFound)
	}

	s.log.Info().Str("component", "service").Str("document_id", id).Str("owner_id", ownerID).Msg("document_deleted")
	return nil
}

// decorate attaches a fresh grant to doc. Pending documents get no grant attempt.
func (s *documentService) decorate(ctx context.Context, doc model.Document) (DocumentView, error) {
	view := DocumentView{Document: doc, SizeHuman: humanize.Bytes(uint64(max(doc.Size, 0)))}
	if doc.Pending() {
		view.Status = StatusPending
		return view, nil
	}
	view.Status = StatusReady

	ctx, cancel := s.bounded(ctx)
	defer cancel()
	g, err := s.grants.Issue(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return view, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
		}
		return view, err
	}
	view.URL = g.URL
	expires := g.ExpiresAt
	view.URLExpiresAt = &expires
	return view, nil
}

// sniffPDF checks the leading bytes of r and returns a reader replaying them.
func sniffPDF(r io.Reader) (io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w: read upload: %v", ErrValidation, err)
	}
	head = head[:n]
	if n == 0 {
		return nil, ErrEmptyFile
	}
	if mt := mimetype.Detect(head); !mt.Is(model.DocumentContentType) {
		return nil, fmt.Errorf("%w: detected %s", ErrUnsupportedMedia, mt.String())
	}
	return io.MultiReader(bytes.NewReader(head), r), nil
}

func normalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "document.pdf"
	}
	return title
}

// storageKey namespaces objects by owner and a time-based discriminator: pdfs/<owner>/<unix-nanos>-<name>.
func storageKey(ownerID, title string, at time.Time) string {
	return fmt.Sprintf("pdfs/%s/%d-%s", sanitize(ownerID), at.UnixNano(), sanitize(title))
}

func sanitize(s string) string {
	const maxLen = 100
	var b strings.Builder
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
