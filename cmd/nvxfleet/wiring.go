package main

import (
	"context"
	"time"

	"github.com/nerrad567/nvx-fleet/internal/api"
	"github.com/nerrad567/nvx-fleet/internal/endpoint"
	"github.com/nerrad567/nvx-fleet/internal/events"
	"github.com/nerrad567/nvx-fleet/internal/history"
	"github.com/nerrad567/nvx-fleet/internal/infrastructure/config"
	"github.com/nerrad567/nvx-fleet/internal/infrastructure/influxdb"
	"github.com/nerrad567/nvx-fleet/internal/infrastructure/logging"
	"github.com/nerrad567/nvx-fleet/internal/sinks"
)

// pruneInterval is how often expired event history is deleted.
const pruneInterval = time.Hour

// endpointConfigs converts the YAML fleet list into registry configs.
func endpointConfigs(list []config.EndpointConfig) []endpoint.Config {
	out := make([]endpoint.Config, 0, len(list))
	for _, ep := range list {
		out = append(out, endpoint.Config{
			ID:               endpoint.ID(ep.ID),
			Kind:             endpoint.Kind(ep.Kind),
			Model:            ep.Model,
			Name:             ep.Name,
			MulticastAddress: ep.MulticastAddress,
			HDMIInputs:       ep.HDMIInputs,
		})
	}
	return out
}

// sinkDeps are the optional outputs the dispatcher feeds. Nil members are
// skipped.
type sinkDeps struct {
	queueSize int
	logger    *logging.Logger
	mqtt      sinks.Publisher
	history   sinks.Recorder
	influx    *influxdb.Client
	api       *api.Server
}

// wireSinks subscribes every configured sink to the dispatcher. Sinks that
// do I/O run behind their own queue so a slow broker or disk never holds up
// a driver callback. The returned func releases the subscriptions and
// drains the queues.
func wireSinks(d *events.Dispatcher, deps sinkDeps) func() {
	var (
		subs   []*events.Subscription
		queues []*sinks.Async
	)
	add := func(s sinks.Sink) {
		subs = append(subs, d.OnEvent(s.Handle))
	}
	queued := func(name string, s sinks.Sink) {
		q := sinks.NewAsync(name, s, deps.queueSize, deps.logger.With("sink", name))
		queues = append(queues, q)
		add(q)
	}

	add(sinks.NewLogSink(deps.logger.With("component", "events")))
	if deps.mqtt != nil {
		queued("mqtt", sinks.NewMQTTSink(deps.mqtt, deps.logger))
	}
	if deps.history != nil {
		queued("history", sinks.NewHistorySink(deps.history, deps.logger))
	}
	if deps.influx != nil {
		queued("metrics", sinks.NewMetricsSink(deps.influx))
	}
	if deps.api != nil {
		subs = append(subs, d.OnEvent(deps.api.Hub().HandleEvent))
	}

	return func() {
		for _, s := range subs {
			s.Release()
		}
		for _, q := range queues {
			q.Close()
			if n := q.Dropped(); n > 0 {
				deps.logger.Warn("event sink dropped records", "sink", q.Name(), "dropped", n)
			}
		}
	}
}

// pruneHistory deletes history older than retention now and then every
// pruneInterval until ctx is cancelled.
func pruneHistory(ctx context.Context, repo history.Repository, retention time.Duration, log *logging.Logger) {
	prune := func() {
		n, err := repo.Prune(ctx, retention)
		if err != nil {
			if ctx.Err() == nil {
				log.Error("event history prune failed", "error", err)
			}
			return
		}
		if n > 0 {
			log.Info("event history pruned", "deleted", n, "retention", retention.String())
		}
	}

	prune()
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}
