package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-workflow/internal/workflow"
)

const graphKeyPrefix = "workflow:graph:"

// CachedTemplateRepository caches compiled state graphs in Redis.
// Templates change rarely and every command loads the graph, so the
// cache takes most of that read load off Postgres. Cache failures fall
// through to the inner repository.
type CachedTemplateRepository struct {
	workflow.TemplateRepository

	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedTemplateRepository wraps inner with a Redis graph cache. A
// nil client disables caching.
func NewCachedTemplateRepository(inner workflow.TemplateRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedTemplateRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedTemplateRepository{
		TemplateRepository: inner,
		client:             client,
		ttl:                ttl,
		logger:             logger,
	}
}

// Graph returns the cached compiled graph, loading and storing it on a
// miss.
func (r *CachedTemplateRepository) Graph(ctx context.Context, templateID string) (*workflow.Graph, error) {
	if r.client == nil {
		return r.TemplateRepository.Graph(ctx, templateID)
	}

	key := graphKeyPrefix + templateID
	if cached, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var snapshot workflow.GraphSnapshot
		if err := json.Unmarshal(cached, &snapshot); err == nil {
			if graph, err := workflow.FromSnapshot(snapshot); err == nil {
				return graph, nil
			}
		}
		r.logger.Debug("discarding unreadable cached graph", zap.String("template_id", templateID))
	}

	graph, err := r.TemplateRepository.Graph(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(graph.Snapshot()); err == nil {
		if err := r.client.Set(ctx, key, encoded, r.ttl).Err(); err != nil {
			r.logger.Debug("graph cache write failed", zap.String("template_id", templateID), zap.Error(err))
		}
	}
	return graph, nil
}

// Invalidate drops the cached graph of one template.
func (r *CachedTemplateRepository) Invalidate(ctx context.Context, templateID string) {
	if r.client == nil {
		return
	}
	if err := r.client.Del(ctx, graphKeyPrefix+templateID).Err(); err != nil {
		r.logger.Debug("graph cache invalidation failed", zap.String("template_id", templateID), zap.Error(err))
	}
}
