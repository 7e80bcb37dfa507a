package registry

import (
	"context"
	"errors"
	"sync"
)

// DefaultAlias is the username used for messages when a channel has no alias.
const DefaultAlias = "SlackStorm"

var ErrEmptyChannelID = errors.New("channel id must not be empty")

type ChannelConfig struct {
	ChannelID    string `yaml:"id" json:"id"`
	WebhookToken string `yaml:"token" json:"-"`
	Alias        string `yaml:"alias,omitempty" json:"alias,omitempty"`
}

// DisplayAlias returns the alias to post as, falling back to DefaultAlias.
func (c ChannelConfig) DisplayAlias() string {
	if c.Alias == "" {
		return DefaultAlias
	}
	return c.Alias
}

// Registry is the read side of the channel configuration. Implementations
// never fail loudly: a store that cannot be read reports no channels.
type Registry interface {
	ListChannels(ctx context.Context) []string
	Lookup(ctx context.Context, channelID string) (ChannelConfig, bool)
}

// Store is a Registry that can also be edited from the settings surface.
type Store interface {
	Registry
	Put(ctx context.Context, cfg ChannelConfig) error
	Remove(ctx context.Context, channelID string) error
}

type MemoryRegistry struct {
	mu       sync.RWMutex
	order    []string
	channels map[string]ChannelConfig
}

func NewMemoryRegistry(channels ...ChannelConfig) *MemoryRegistry {
	r := &MemoryRegistry{
		channels: map[string]ChannelConfig{},
	}
	for _, c := range channels {
		// ids are validated by the config loader, anything empty is skipped
		_ = r.Put(context.Background(), c)
	}
	return r
}

func (r *MemoryRegistry) ListChannels(_ context.Context) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

func (r *MemoryRegistry) Lookup(_ context.Context, channelID string) (ChannelConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.channels[channelID]
	return c, ok
}

// Put inserts a channel, or replaces an existing one without moving it.
func (r *MemoryRegistry) Put(_ context.Context, cfg ChannelConfig) error {
	if cfg.ChannelID == "" {
		return ErrEmptyChannelID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.channels[cfg.ChannelID]; !exists {
		r.order = append(r.order, cfg.ChannelID)
	}
	r.channels[cfg.ChannelID] = cfg
	return nil
}

func (r *MemoryRegistry) Remove(_ context.Context, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.channels[channelID]; !exists {
		return nil
	}
	delete(r.channels, channelID)
	for i, id := range r.order {
		if id == channelID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
