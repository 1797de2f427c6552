// Package cache keeps hydrated single tweets in redis, in front of the
// detail endpoint. Every mutation of a tweet must call Invalidate, so the
// database stays the single source of truth and the cache only ever serves
// what a fresh read would have produced.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"chirper/domain"
)

const tweetKeyPrefix = "tweet:"

// TweetCache is a read-through cache for hydrated tweets.
type TweetCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTweetCache connects to redis at the given address.
func NewTweetCache(addr, password string, ttl time.Duration) *TweetCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &TweetCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached tweet, or nil on a cache miss.
func (c *TweetCache) Get(ctx context.Context, id int) (*domain.Tweet, error) {
	data, err := c.rdb.Get(ctx, tweetKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var tweet domain.Tweet
	if err := json.Unmarshal(data, &tweet); err != nil {
		return nil, err
	}
	return &tweet, nil
}

// Set stores a hydrated tweet for the configured ttl.
func (c *TweetCache) Set(ctx context.Context, tweet *domain.Tweet) error {
	data, err := json.Marshal(tweet)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, tweetKey(tweet.ID), data, c.ttl).Err()
}

// Invalidate drops a tweet from the cache.
func (c *TweetCache) Invalidate(ctx context.Context, id int) error {
	return c.rdb.Del(ctx, tweetKey(id)).Err()
}

func (c *TweetCache) Close() error {
	return c.rdb.Close()
}

func tweetKey(id int) string {
	return tweetKeyPrefix + strconv.Itoa(id)
}
