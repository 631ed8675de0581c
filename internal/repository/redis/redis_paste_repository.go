// Package redis provides a Redis-backed implementation of the paste repository.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/roguepikachu/vanish/internal/domain"
	"github.com/roguepikachu/vanish/internal/repository"
)

func keyPaste(id string) string { return "paste:" + id }

// Each paste is a hash. Optional limits are stored as empty strings when unset.
// Times are unix milliseconds.
//
// KEYS[1] paste key
// ARGV content, created_at, expires_at, max_views, pexpire ms (0 = keep forever)
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], 'content', ARGV[1], 'created_at', ARGV[2], 'expires_at', ARGV[3], 'max_views', ARGV[4], 'views', '0')
if tonumber(ARGV[5]) > 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[5])
end
return 1
`)

// Result codes: 0 not found, 1 expired, 2 view limit, 3 ok.
//
// KEYS[1] paste key
// ARGV now ms, retention ms applied once the last view is used (0 = keep)
var consumeScript = redis.NewScript(`
local f = redis.call('HMGET', KEYS[1], 'content', 'expires_at', 'max_views', 'views')
if not f[1] then
  return {0}
end
local now = tonumber(ARGV[1])
if f[2] ~= '' and now > tonumber(f[2]) then
  return {1}
end
if f[3] ~= '' and tonumber(f[4]) >= tonumber(f[3]) then
  return {2}
end
local views = redis.call('HINCRBY', KEYS[1], 'views', 1)
if f[3] ~= '' and views >= tonumber(f[3]) and tonumber(ARGV[2]) > 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {3, f[1], f[2], f[3], views}
`)

const (
	codeNotFound = iota
	codeExpired
	codeViewLimit
	codeOK
)

// PasteRepository implements repository.PasteRepository using Redis as backend.
// Eligibility check and view increment run inside one Lua script, so Redis
// serializes concurrent consumers of the same key.
type PasteRepository struct {
	client *redis.Client
	// retention is how long an unreadable paste is kept before Redis evicts it.
	retention time.Duration
}

// NewPasteRepository creates a new Redis-backed paste repository. A zero
// retention keeps keys until they are removed by hand.
func NewPasteRepository(client *redis.Client, retention time.Duration) *PasteRepository {
	return &PasteRepository{client: client, retention: retention}
}

// Insert adds a new paste to Redis.
func (r *PasteRepository) Insert(ctx context.Context, p domain.Paste) error {
	var expiresAt, maxViews string
	var keep time.Duration
	if p.ExpiresAt != nil {
		expiresAt = strconv.FormatInt(p.ExpiresAt.UnixMilli(), 10)
		if r.retention > 0 {
			keep = r.retention
			if ttl := p.ExpiresAt.Sub(p.CreatedAt); ttl > 0 {
				keep += ttl
			}
		}
	}
	if p.MaxViews != nil {
		maxViews = strconv.Itoa(*p.MaxViews)
	}
	created, err := insertScript.Run(ctx, r.client, []string{keyPaste(p.ID)},
		p.Content, p.CreatedAt.UnixMilli(), expiresAt, maxViews, keep.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("redis insert: %w", err)
	}
	if created == 0 {
		return repository.ErrDuplicateID
	}
	return nil
}

// Consume evaluates eligibility at now and counts one view atomically.
func (r *PasteRepository) Consume(ctx context.Context, id string, now time.Time) (domain.ConsumedPaste, error) {
	res, err := consumeScript.Run(ctx, r.client, []string{keyPaste(id)}, now.UnixMilli(), r.retention.Milliseconds()).Slice()
	if err != nil {
		return domain.ConsumedPaste{}, fmt.Errorf("redis consume: %w", err)
	}
	if len(res) == 0 {
		return domain.ConsumedPaste{}, fmt.Errorf("redis consume: empty script result")
	}
	code, ok := res[0].(int64)
	if !ok {
		return domain.ConsumedPaste{}, fmt.Errorf("redis consume: unexpected result code %T", res[0])
	}
	switch code {
	case codeNotFound:
		return domain.ConsumedPaste{}, domain.ErrPasteNotFound
	case codeExpired:
		return domain.ConsumedPaste{}, domain.ErrPasteExpired
	case codeViewLimit:
		return domain.ConsumedPaste{}, domain.ErrViewLimitExceeded
	case codeOK:
		return decodeConsumed(res)
	default:
		return domain.ConsumedPaste{}, fmt.Errorf("redis consume: unknown result code %d", code)
	}
}

func decodeConsumed(res []interface{}) (domain.ConsumedPaste, error) {
	if len(res) != 5 {
		return domain.ConsumedPaste{}, fmt.Errorf("redis consume: want 5 fields, got %d", len(res))
	}
	content, _ := res[1].(string)
	expiresRaw, _ := res[2].(string)
	maxViewsRaw, _ := res[3].(string)
	views, _ := res[4].(int64)

	p := domain.Paste{Content: content, Views: int(views)}
	if expiresRaw != "" {
		ms, err := strconv.ParseInt(expiresRaw, 10, 64)
		if err != nil {
			return domain.ConsumedPaste{}, fmt.Errorf("parse expires_at: %w", err)
		}
		exp := time.UnixMilli(ms).UTC()
		p.ExpiresAt = &exp
	}
	if maxViewsRaw != "" {
		mv, err := strconv.Atoi(maxViewsRaw)
		if err != nil {
			return domain.ConsumedPaste{}, fmt.Errorf("parse max_views: %w", err)
		}
		p.MaxViews = &mv
	}
	return p.Snapshot(), nil
}

var _ repository.PasteRepository = (*PasteRepository)(nil)
