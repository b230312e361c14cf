package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const translationTTL = time.Hour

func translationKey(objectType string, guid uuid.UUID) string {
	return "translation:" + objectType + ":" + guid.String()
}

var _ TranslationCache = (*RedisTranslationCache)(nil)

// RedisTranslationCache shares translations between processes of one server.
type RedisTranslationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTranslationCache(addr, password string, db int) *RedisTranslationCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		Protocol: 2,
	})

	return &RedisTranslationCache{client: client, ttl: translationTTL}
}

func (r *RedisTranslationCache) GetLocalID(ctx context.Context, objectType string, guid uuid.UUID) (int, error) {
	res := r.client.Get(ctx, translationKey(objectType, guid))
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return 0, ErrMiss
		}
		return 0, res.Err()
	}

	id, err := strconv.Atoi(res.Val())
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (r *RedisTranslationCache) SetLocalID(ctx context.Context, objectType string, guid uuid.UUID, id int) error {
	return r.client.Set(ctx, translationKey(objectType, guid), id, r.ttl).Err()
}

func (r *RedisTranslationCache) Forget(ctx context.Context, objectType string, guid uuid.UUID) error {
	return r.client.Del(ctx, translationKey(objectType, guid)).Err()
}

func (r *RedisTranslationCache) Close() error {
	return r.client.Close()
}
