package service

import (
	"context"
	"errors"
	"math_quest_backend/internal/learning"
	"math_quest_backend/internal/model"
	"math_quest_backend/internal/util"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"gorm.io/datatypes"
)

func newRedisCache(t *testing.T) (*miniredis.Miniredis, CatalogCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, NewCatalogCache(rdb, 10*time.Minute)
}

func TestNewCatalogCacheWithoutRedis(t *testing.T) {
	cache := NewCatalogCache(nil, time.Minute)
	if _, ok := cache.(nopCatalogCache); !ok {
		t.Fatalf("cache = %T, want nopCatalogCache", cache)
	}
	cache.Set(context.Background(), []model.Concept{{Slug: "a"}})
	if _, ok := cache.Get(context.Background()); ok {
		t.Error("nop cache should always miss")
	}
}

func TestRedisCatalogCacheKeepsPrerequisites(t *testing.T) {
	mr, cache := newRedisCache(t)
	ctx := context.Background()

	if _, ok := cache.Get(ctx); ok {
		t.Fatal("empty cache should miss")
	}

	base := model.Concept{Slug: "number_systems", Name: "Number Systems", Order: 1}
	base.ID = 1
	gated := model.Concept{
		Slug:     "exponents_powers",
		Name:     "Exponents and Powers",
		Order:    2,
		Examples: datatypes.JSON(`[{"question":"2^3?","answer":"8"}]`),
	}
	gated.ID = 2
	gated.SetPrerequisites([]string{"number_systems"})

	cache.Set(ctx, []model.Concept{base, gated})
	if ttl := mr.TTL(catalogCacheKey); ttl != 10*time.Minute {
		t.Errorf("ttl = %v, want 10m", ttl)
	}

	got, ok := cache.Get(ctx)
	if !ok {
		t.Fatal("cache should hit after Set")
	}
	if len(got) != 2 {
		t.Fatalf("concepts = %d, want 2", len(got))
	}
	cached := got[1]
	if cached.ID != 2 || cached.Slug != "exponents_powers" {
		t.Errorf("cached concept = %+v", cached)
	}
	if slugs := cached.PrerequisiteSlugs(); len(slugs) != 1 || slugs[0] != "number_systems" {
		t.Errorf("prerequisites = %v, want [number_systems]", slugs)
	}
	if examples := cached.ExampleList(); len(examples) != 1 || examples[0].Answer != "8" {
		t.Errorf("examples = %+v", examples)
	}

	if learning.IsAvailable(&cached, learning.NewCompletedSet()) {
		t.Error("cached concept with unmet prerequisites should stay locked")
	}
	if !learning.IsAvailable(&cached, learning.NewCompletedSet("number_systems")) {
		t.Error("cached concept should unlock once prerequisites are complete")
	}
}

func TestRedisCatalogCacheInvalidate(t *testing.T) {
	mr, cache := newRedisCache(t)
	ctx := context.Background()

	cache.Set(ctx, []model.Concept{{Slug: "a"}})
	cache.Invalidate(ctx)
	if _, ok := cache.Get(ctx); ok {
		t.Error("cache should miss after Invalidate")
	}

	cache.Set(ctx, []model.Concept{{Slug: "a"}})
	mr.FastForward(11 * time.Minute)
	if _, ok := cache.Get(ctx); ok {
		t.Error("cache should miss after ttl")
	}
}

func TestRedisCatalogCacheDropsCorruptEntry(t *testing.T) {
	mr, cache := newRedisCache(t)
	ctx := context.Background()

	if err := mr.Set(catalogCacheKey, "{not json"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := cache.Get(ctx); ok {
		t.Fatal("corrupt entry should miss")
	}
	if mr.Exists(catalogCacheKey) {
		t.Error("corrupt entry should be deleted")
	}
}

func TestRedisCatalogCacheUnavailable(t *testing.T) {
	mr, cache := newRedisCache(t)
	mr.Close()

	ctx := context.Background()
	cache.Set(ctx, []model.Concept{{Slug: "a"}})
	if _, ok := cache.Get(ctx); ok {
		t.Error("unreachable redis should miss")
	}
}

func TestGatingThroughRedisCache(t *testing.T) {
	env := newTestEnv(t)
	_, cache := newRedisCache(t)
	concepts := NewConceptService(env.concepts.ConceptRepo, env.concepts.ProblemRepo, env.concepts.ProgressRepo, cache)
	ctx := context.Background()
	user := env.newUser(t, "nia")

	// 第一次从数据库加载并写入缓存，第二次命中缓存
	for i := 0; i < 2; i++ {
		if _, err := concepts.GetForUser(ctx, user.ID, "exponents_powers"); !errors.Is(err, util.ErrPrerequisitesUnmet) {
			t.Fatalf("round %d error = %v, want ErrPrerequisitesUnmet", i, err)
		}
	}
	if _, ok := cache.Get(ctx); !ok {
		t.Fatal("catalog should be cached")
	}

	if _, err := env.progress.CompleteConcept(ctx, user.ID, "number_systems"); err != nil {
		t.Fatalf("CompleteConcept: %v", err)
	}
	if _, err := concepts.GetForUser(ctx, user.ID, "exponents_powers"); err != nil {
		t.Errorf("GetForUser after completing prerequisite: %v", err)
	}
}
