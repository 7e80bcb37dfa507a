package main

import (
	"context"
	"net/http"
	"time"

	"github.com/alexliesenfeld/health"
	"github.com/cuotos/slackstorm/registry"
)

type healthChecker interface {
	Healthy(ctx context.Context) error
}

// HealthCheckHandler reports the channel store's health when the store can be
// checked (redis), otherwise it is always up.
func HealthCheckHandler(reg registry.Registry) http.HandlerFunc {
	checkerOpts := []health.CheckerOption{
		health.WithCacheDuration(time.Second),
		health.WithTimeout(5 * time.Second),
	}

	if hc, ok := reg.(healthChecker); ok {
		checkerOpts = append(checkerOpts, health.WithCheck(health.Check{
			Name:  "channel-store",
			Check: hc.Healthy,
		}))
	}

	return health.NewHandler(health.NewChecker(checkerOpts...))
}
