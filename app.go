package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"

	"github.com/cuotos/slackstorm/config"
	"github.com/cuotos/slackstorm/database"
	"github.com/cuotos/slackstorm/dispatcher"
	"github.com/cuotos/slackstorm/registry"
	"github.com/hashicorp/logutils"
	"github.com/joho/godotenv"
)

var errReadOnlyStore = errors.New("channels from the config file are read only, edit the config file or use the redis store")

type app struct {
	cfg        *config.Config
	registry   registry.Registry
	store      registry.Store
	dispatcher *dispatcher.Dispatcher
}

// newApp loads .env and the config file and builds the channel registry and
// dispatcher every command works against.
func newApp(configPath string) (*app, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if configPath == "" {
		configPath = config.DefaultPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", configPath, err)
	}
	logFilter.SetMinLevel(logutils.LogLevel(cfg.LogLevel))

	a := &app{cfg: cfg}

	switch cfg.Store.Backend {
	case config.BackendRedis:
		log.Printf("[DEBUG] reading channels from redis at %s", cfg.Store.RedisAddr)
		db, err := database.NewRedisDatabase(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB, cfg.Store.KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		// channels listed in the file seed the store without overwriting it
		for _, ch := range cfg.Channels {
			if _, exists := db.Lookup(context.Background(), ch.ChannelID); exists {
				continue
			}
			if err := db.Put(context.Background(), ch); err != nil {
				return nil, fmt.Errorf("failed to seed channel %s: %w", ch.ChannelID, err)
			}
		}
		a.registry = db
		a.store = db
	default:
		log.Printf("[DEBUG] using %d channel(s) from %s", len(cfg.Channels), configPath)
		a.registry = registry.NewMemoryRegistry(cfg.Channels...)
	}

	client := &http.Client{Timeout: cfg.Timeout()}
	a.dispatcher = dispatcher.NewDispatcher(a.registry, client, cfg.Escaping())
	a.dispatcher.Endpoint = cfg.Slack.Endpoint

	return a, nil
}

func (a *app) editableStore() (registry.Store, error) {
	if a.store == nil {
		return nil, errReadOnlyStore
	}
	return a.store, nil
}
