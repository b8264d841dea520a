// Package grant mints short-lived, read-only URLs for stored documents.
//
// Grants are derived on every request and never cached or persisted.
package grant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"docmark/internal/model"
	"docmark/internal/storage"
)

const (
	// Expiry is the fixed validity window of every grant.
	Expiry = 3600 * time.Second
	// Disposition makes viewers render the object inline.
	Disposition = `inline; filename="document.pdf"`
)

var (
	// ErrEmptyKey is returned when asked to sign a document without a storage key.
	ErrEmptyKey = errors.New("storage key is empty")
	// ErrGrant means the signing capability failed. The document may still exist.
	ErrGrant = errors.New("access grant unavailable")
)

// Signer is the subset of storage.Storage the issuer depends on.
type Signer interface {
	PresignGet(ctx context.Context, key string, opt storage.PresignOptions) (string, error)
}

// Grant is a signed URL and the instant it stops working.
type Grant struct {
	StorageKey string    `json:"-"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Issuer mints grants. It holds no per-request state and is safe for concurrent use.
type Issuer struct {
	signer Signer
	log    zerolog.Logger
	now    func() time.Time
	issued *prometheus.CounterVec
}

// Option customizes an Issuer.
type Option func(*Issuer)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// WithLogger sets the logger used to report signing failures.
func WithLogger(log zerolog.Logger) Option {
	return func(i *Issuer) { i.log = log }
}

// WithRegisterer registers the issuance counter with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(i *Issuer) {
		if err := reg.Register(i.issued); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				if c, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
					i.issued = c
				}
			}
		}
	}
}

// NewIssuer returns an Issuer signing through s.
func NewIssuer(s Signer, opts ...Option) *Issuer {
	i := &Issuer{
		signer: s,
		log:    zerolog.Nop(),
		now:    time.Now,
		issued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docmark_grants_issued_total",
				Help: "Access grants issued, by result.",
			},
			[]string{"result"},
		),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue signs a read-only URL for key, valid for Expiry. The response content type is pinned
// to application/pdf whatever metadata the object was stored with. Existence is not checked.
func (i *Issuer) Issue(ctx context.Context, key string) (Grant, error) {
	if key == "" {
		return Grant{}, ErrEmptyKey
	}

	ctx, span := otel.Tracer("docmark/grant").Start(ctx, "grant.Issue")
	defer span.End()
	span.SetAttributes(attribute.String("storage.key", key))

	issuedAt := i.now()
	url, err := i.signer.PresignGet(ctx, key, storage.PresignOptions{
		Expiry:              Expiry,
		ResponseContentType: model.DocumentContentType,
		ResponseDisposition: Disposition,
	})
	if err != nil {
		i.issued.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "presign failed")
		i.log.Error().Err(err).Str("component", "grant").Str("storage_key", key).Msg("grant_issue_failed")
		return Grant{}, fmt.Errorf("%w: %v", ErrGrant, err)
	}

	i.issued.WithLabelValues("ok").Inc()
	return Grant{
		StorageKey: key,
		URL:        url,
		ExpiresAt:  issuedAt.Add(Expiry),
	}, nil
}
