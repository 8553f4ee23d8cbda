package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"mangashelf/internal/manga"
	"mangashelf/pkg/models"
)

// Resolver asks providers in order and returns the first match.
type Resolver struct {
	Providers []Provider
	Cache     Cache // optional
	TTL       time.Duration
	Log       *zap.Logger
}

func NewResolver(log *zap.Logger, providers ...Provider) *Resolver {
	return &Resolver{Providers: providers, Log: log}
}

// WithCache enables caching of successful lookups.
func (r *Resolver) WithCache(c Cache, ttl time.Duration) *Resolver {
	r.Cache = c
	r.TTL = ttl
	return r
}

// Resolve returns metadata for isbn. The result's ISBN echoes the input.
//
// It fails with manga.ErrNotFound only when every provider answered without
// a match; if any provider failed and none matched the error wraps
// manga.ErrUpstream. Nothing is retried.
func (r *Resolver) Resolve(ctx context.Context, isbn string) (*models.Metadata, error) {
	if strings.TrimSpace(isbn) == "" {
		return nil, manga.BadInput("ISBN is required")
	}

	if md, ok := r.cached(ctx, isbn); ok {
		return md, nil
	}

	var upstream []error
	for _, p := range r.Providers {
		md, err := p.Lookup(ctx, isbn)
		if err == nil {
			md.ISBN = isbn
			r.store(ctx, md)
			r.Log.Debug("isbn resolved", zap.String("isbn", isbn), zap.String("provider", p.Name()))
			return md, nil
		}
		if errors.Is(err, manga.ErrNotFound) {
			r.Log.Debug("isbn not found", zap.String("isbn", isbn), zap.String("provider", p.Name()))
			continue
		}
		r.Log.Warn("isbn provider failed", zap.String("isbn", isbn), zap.String("provider", p.Name()), zap.Error(err))
		upstream = append(upstream, err)
	}

	if len(upstream) > 0 {
		return nil, fmt.Errorf("resolve %s: %w", isbn, errors.Join(upstream...))
	}
	return nil, manga.ErrNotFound
}

// Refresh drops any cached entry for isbn and resolves it again.
func (r *Resolver) Refresh(ctx context.Context, isbn string) (*models.Metadata, error) {
	if r.Cache != nil && strings.TrimSpace(isbn) != "" {
		if err := r.Cache.Evict(ctx, isbn); err != nil {
			r.Log.Warn("metadata cache evict", zap.String("isbn", isbn), zap.Error(err))
		}
	}
	return r.Resolve(ctx, isbn)
}

func (r *Resolver) cached(ctx context.Context, isbn string) (*models.Metadata, bool) {
	if r.Cache == nil {
		return nil, false
	}
	md, ok, err := r.Cache.Load(ctx, isbn)
	if err != nil {
		r.Log.Warn("metadata cache load", zap.Error(err))
		return nil, false
	}
	return md, ok
}

func (r *Resolver) store(ctx context.Context, md *models.Metadata) {
	if r.Cache == nil {
		return
	}
	if err := r.Cache.Save(ctx, md, r.TTL); err != nil {
		r.Log.Warn("metadata cache save", zap.Error(err))
	}
}
