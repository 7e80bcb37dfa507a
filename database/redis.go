package database

import (
	"context"
	"fmt"
	"log"

	"github.com/cuotos/slackstorm/registry"
	"github.com/go-redis/redis/v8"
)

const (
	defaultKeyPrefix = "slackstorm"
	tokenField       = "token"
	aliasField       = "alias"

	maxPutRetries = 20
)

type Database interface {
	registry.Store
	Healthy(ctx context.Context) error
}

// RedisDatabase keeps channel configs in Redis so every editor on a machine (or
// a shared relay) sees the same channels. The channel order lives in a list and
// each channel's token/alias in its own hash.
type RedisDatabase struct {
	rdb       *redis.Client
	keyPrefix string
}

func NewRedisDatabase(addr string, password string, dbID int, keyPrefix string) (Database, error) {

	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}

	db := &RedisDatabase{
		keyPrefix: keyPrefix,
	}

	redisOptions := &redis.Options{
		Addr: addr,
		DB:   dbID,
	}

	if password != "" {
		redisOptions.Password = password
	}

	redisClient := redis.NewClient(redisOptions)

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	db.rdb = redisClient

	return db, nil
}

func (db *RedisDatabase) orderKey() string {
	return db.keyPrefix + ":channels"
}

func (db *RedisDatabase) channelKey(channelID string) string {
	return db.keyPrefix + ":channel:" + channelID
}

func (db *RedisDatabase) ListChannels(ctx context.Context) []string {
	ids, err := db.rdb.LRange(ctx, db.orderKey(), 0, -1).Result()
	if err != nil {
		log.Printf("[ERROR] failed to list channels from redis: %s", err)
		return []string{}
	}
	return ids
}

func (db *RedisDatabase) Lookup(ctx context.Context, channelID string) (registry.ChannelConfig, bool) {
	fields, err := db.rdb.HGetAll(ctx, db.channelKey(channelID)).Result()
	if err != nil {
		log.Printf("[ERROR] failed to read channel %s from redis: %s", channelID, err)
		return registry.ChannelConfig{}, false
	}
	if len(fields) == 0 {
		return registry.ChannelConfig{}, false
	}

	return registry.ChannelConfig{
		ChannelID:    channelID,
		WebhookToken: fields[tokenField],
		Alias:        fields[aliasField],
	}, true
}

func (db *RedisDatabase) Put(ctx context.Context, cfg registry.ChannelConfig) error {
	if cfg.ChannelID == "" {
		return registry.ErrEmptyChannelID
	}

	key := db.channelKey(cfg.ChannelID)

	// the existence check and the write run under WATCH, so two writers adding
	// the same new channel can't both append it to the order list
	put := func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, tokenField, cfg.WebhookToken, aliasField, cfg.Alias)
			// only new channels are appended, updates keep their menu position
			if exists == 0 {
				pipe.RPush(ctx, db.orderKey(), cfg.ChannelID)
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxPutRetries; i++ {
		err := db.rdb.Watch(ctx, put, key)
		if err != redis.TxFailedErr {
			return err
		}
		log.Printf("[DEBUG] channel %s changed during put, retrying", cfg.ChannelID)
	}
	return fmt.Errorf("failed to save channel %s: too many concurrent writes", cfg.ChannelID)
}

func (db *RedisDatabase) Remove(ctx context.Context, channelID string) error {
	pipe := db.rdb.TxPipeline()
	pipe.Del(ctx, db.channelKey(channelID))
	pipe.LRem(ctx, db.orderKey(), 0, channelID)

	_, err := pipe.Exec(ctx)
	return err
}

func (db *RedisDatabase) Healthy(ctx context.Context) error {
	return db.rdb.Ping(ctx).Err()
}
