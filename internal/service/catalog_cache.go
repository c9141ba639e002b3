package service

import (
	"context"
	"encoding/json"
	"math_quest_backend/internal/model"
	"math_quest_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const catalogCacheKey = "math_quest:catalog:v1"

// CatalogCache 课程目录缓存
type CatalogCache interface {
	Get(ctx context.Context) ([]model.Concept, bool)
	Set(ctx context.Context, concepts []model.Concept)
	Invalidate(ctx context.Context)
}

// NewCatalogCache rdb 为空时返回不缓存的实现
func NewCatalogCache(rdb *redis.Client, ttl time.Duration) CatalogCache {
	if rdb == nil {
		return nopCatalogCache{}
	}
	return &RedisCatalogCache{Redis: rdb, TTL: ttl}
}

type nopCatalogCache struct{}

func (nopCatalogCache) Get(context.Context) ([]model.Concept, bool) { return nil, false }
func (nopCatalogCache) Set(context.Context, []model.Concept)        {}
func (nopCatalogCache) Invalidate(context.Context)                  {}

type RedisCatalogCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

// cachedConcept 前置知识点在 API 中不直接序列化，缓存时需要单独保留
type cachedConcept struct {
	model.Concept
	Prerequisites string `json:"prerequisites"`
}

func (c *RedisCatalogCache) Get(ctx context.Context) ([]model.Concept, bool) {
	val, err := c.Redis.Get(ctx, catalogCacheKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Log.Warn("Catalog cache read failed", zap.Error(err))
		return nil, false
	}

	var cached []cachedConcept
	if err := json.Unmarshal(val, &cached); err != nil {
		logger.Log.Warn("Catalog cache entry is corrupt", zap.Error(err))
		c.Invalidate(ctx)
		return nil, false
	}

	concepts := make([]model.Concept, len(cached))
	for i, cc := range cached {
		concepts[i] = cc.Concept
		concepts[i].Prerequisites = cc.Prerequisites
	}
	return concepts, true
}

func (c *RedisCatalogCache) Set(ctx context.Context, concepts []model.Concept) {
	cached := make([]cachedConcept, len(concepts))
	for i, concept := range concepts {
		cached[i] = cachedConcept{Concept: concept, Prerequisites: concept.Prerequisites}
	}
	val, err := json.Marshal(cached)
	if err != nil {
		logger.Log.Warn("Catalog cache encode failed", zap.Error(err))
		return
	}
	if err := c.Redis.Set(ctx, catalogCacheKey, val, c.TTL).Err(); err != nil {
		logger.Log.Warn("Catalog cache write failed", zap.Error(err))
	}
}

func (c *RedisCatalogCache) Invalidate(ctx context.Context) {
	if err := c.Redis.Del(ctx, catalogCacheKey).Err(); err != nil {
		logger.Log.Warn("Catalog cache invalidate failed", zap.Error(err))
	}
}
