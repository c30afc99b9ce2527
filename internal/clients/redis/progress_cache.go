package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dyslexifriend/backend/internal/logger"
	"github.com/dyslexifriend/backend/internal/types"
	"github.com/dyslexifriend/backend/internal/utils"
)

// ProgressCache caches aggregated progress reports per student. Every method
// is safe on a nil receiver, so callers can run without redis entirely.
type ProgressCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewProgressCache(log *logger.Logger) (*ProgressCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttlSec := utils.GetEnvAsInt("PROGRESS_CACHE_TTL_SECONDS", 60, log)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &ProgressCache{
		log: log.With("service", "ProgressCache"),
		rdb: rdb,
		ttl: time.Duration(ttlSec) * time.Second,
	}, nil
}

func cacheKey(studentID string) string {
	return "progress:" + studentID
}

func (c *ProgressCache) Get(ctx context.Context, studentID string) (*types.ProgressReport, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(studentID)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("Cache read failed", "student_id", studentID, "error", err)
		}
		return nil, false
	}
	var report types.ProgressReport
	if err := json.Unmarshal(raw, &report); err != nil {
		c.log.Warn("Cache entry unreadable, dropping", "student_id", studentID, "error", err)
		_ = c.rdb.Del(ctx, cacheKey(studentID)).Err()
		return nil, false
	}
	return &report, true
}

func (c *ProgressCache) Set(ctx context.Context, studentID string, report *types.ProgressReport) {
	if c == nil || c.rdb == nil || report == nil {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		c.log.Warn("Cache encode failed", "student_id", studentID, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(studentID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("Cache write failed", "student_id", studentID, "error", err)
	}
}

func (c *ProgressCache) Invalidate(ctx context.Context, studentID string) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, cacheKey(studentID)).Err(); err != nil {
		c.log.Warn("Cache invalidation failed", "student_id", studentID, "error", err)
	}
}

func (c *ProgressCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
