package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultRedisPrefix = "shortlink:"

// putScript creates the link hash and indexes its code, refusing to
// overwrite an existing id.
var putScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV, 2))
redis.call('SADD', KEYS[2], ARGV[1])
return 1
`)

// incrementScript adds one click without ever creating a missing hash.
var incrementScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HINCRBY', KEYS[1], 'total_clicks', 1)
redis.call('HSET', KEYS[1], 'last_used_at', ARGV[1])
return 1
`)

// RedisStorage keeps each link in a hash and indexes ids by upper-cased code in a set.
type RedisStorage struct {
	client redis.UniversalClient
	prefix string
	logger *zap.Logger
}

func NewRedisStorage(client redis.UniversalClient, logger *zap.Logger) *RedisStorage {
	return &RedisStorage{
		client: client,
		prefix: defaultRedisPrefix,
		logger: logger,
	}
}

func (r *RedisStorage) linkKey(id string) string {
	return r.prefix + "link:" + id
}

func (r *RedisStorage) codeKey(code string) string {
	return r.prefix + "code:" + NormalizeCode(code)
}

func (r *RedisStorage) Put(ctx context.Context, link ShortLink) (*ShortLink, error) {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	args := []interface{}{link.ID}
	for field, value := range encodeLink(&link) {
		args = append(args, field, value)
	}

	created, err := putScript.Run(ctx, r.client, []string{r.linkKey(link.ID), r.codeKey(link.Code)}, args...).Int()
	if err != nil {
		return nil, fmt.Errorf("failed to put link: %w", err)
	}
	if created == 0 {
		return nil, ErrConflict
	}

	return link.Clone(), nil
}

func (r *RedisStorage) candidates(ctx context.Context, code string) ([]*ShortLink, error) {
	ids, err := r.client.SMembers(ctx, r.codeKey(code)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read code index: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	cmds, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.HGetAll(ctx, r.linkKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}

	links := make([]*ShortLink, 0, len(cmds))
	for _, cmd := range cmds {
		fields, err := cmd.(*redis.MapStringStringCmd).Result()
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			continue
		}
		link, err := decodeLink(fields)
		if err != nil {
			r.logger.Warn("skipping malformed link hash", zap.String("code", code), zap.Error(err))
			continue
		}
		links = append(links, link)
	}

	return links, nil
}

func (r *RedisStorage) FindResolvable(ctx context.Context, code string, now time.Time) (*ShortLink, error) {
	links, err := r.candidates(ctx, code)
	if err != nil {
		return nil, err
	}

	var best *ShortLink
	for _, link := range links {
		if link.IsActive && Prefer(link, best, now) {
			best = link
		}
	}

	if best == nil {
		return nil, ErrNotFound
	}
	return best, nil
}

func (r *RedisStorage) FindByCode(ctx context.Context, code string) (*ShortLink, error) {
	links, err := r.candidates(ctx, code)
	if err != nil {
		return nil, err
	}

	var latest *ShortLink
	for _, link := range links {
		if latest == nil || link.CreatedAt.After(latest.CreatedAt) ||
			(link.CreatedAt.Equal(latest.CreatedAt) && link.ID > latest.ID) {
			latest = link
		}
	}

	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (r *RedisStorage) IncrementClick(ctx context.Context, id string, at time.Time) error {
	updated, err := incrementScript.Run(ctx, r.client, []string{r.linkKey(id)}, at.UTC().Format(time.RFC3339Nano)).Int()
	if err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisStorage) PingContext(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func encodeLink(l *ShortLink) map[string]string {
	fields := map[string]string{
		"id":           l.ID,
		"code":         l.Code,
		"target_url":   l.TargetURL,
		"is_active":    strconv.FormatBool(l.IsActive),
		"total_clicks": strconv.FormatInt(l.TotalClicks, 10),
		"created_at":   l.CreatedAt.UTC().Format(time.RFC3339Nano),
		"expires_at":   "",
		"last_used_at": "",
	}
	if l.ExpiresAt != nil {
		fields["expires_at"] = l.ExpiresAt.UTC().Format(time.RFC3339Nano)
	}
	if l.LastUsedAt != nil {
		fields["last_used_at"] = l.LastUsedAt.UTC().Format(time.RFC3339Nano)
	}
	return fields
}

func decodeLink(fields map[string]string) (*ShortLink, error) {
	link := &ShortLink{
		ID:        fields["id"],
		Code:      fields["code"],
		TargetURL: fields["target_url"],
	}

	var err error
	if link.IsActive, err = strconv.ParseBool(fields["is_active"]); err != nil {
		return nil, fmt.Errorf("is_active: %w", err)
	}
	if link.TotalClicks, err = strconv.ParseInt(fields["total_clicks"], 10, 64); err != nil {
		return nil, fmt.Errorf("total_clicks: %w", err)
	}
	if link.CreatedAt, err = time.Parse(time.RFC3339Nano, fields["created_at"]); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	if link.ExpiresAt, err = parseOptionalTime(fields["expires_at"]); err != nil {
		return nil, fmt.Errorf("expires_at: %w", err)
	}
	if link.LastUsedAt, err = parseOptionalTime(fields["last_used_at"]); err != nil {
		return nil, fmt.Errorf("last_used_at: %w", err)
	}

	return link, nil
}

func parseOptionalTime(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
