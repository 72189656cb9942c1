// Package poller implements the background loop that checks every
// subscription's feed and delivers newly discovered videos.
package poller

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"mediathek_bot/internal/feed"
	"mediathek_bot/internal/filter"
	"mediathek_bot/internal/model"
	"mediathek_bot/internal/storage"
)

// Sender is the interface for delivering a video notification to a chat.
// Delivery is best-effort; implementations log failures and do not retry.
type Sender interface {
	SendVideoNotification(chatID int64, video model.Video)
}

// Poller periodically scans all subscriptions, fetches the feed for each
// query, and notifies owners about videos not yet in their seen set.
type Poller struct {
	store       storage.Storage
	feed        *feed.Client
	sender      Sender
	log         *slog.Logger
	interval    time.Duration
	cycleJitter time.Duration
	subPause    time.Duration
}

// New creates a Poller with the given base interval between cycles.
func New(store storage.Storage, f *feed.Client, sender Sender, log *slog.Logger, interval time.Duration) *Poller {
	return &Poller{
		store:       store,
		feed:        f,
		sender:      sender,
		log:         log,
		interval:    interval,
		cycleJitter: 10 * time.Second,
		subPause:    time.Second,
	}
}

// SetJitter overrides the random pauses added after each cycle and between
// subscriptions (useful for testing).
func (p *Poller) SetJitter(cycle, subPause time.Duration) {
	p.cycleJitter = cycle
	p.subPause = subPause
}

// Run starts the poll loop, blocking until ctx is cancelled. Each cycle is
// followed by a sleep of the base interval plus a random jitter so multiple
// deployments do not hit the feed source in lockstep.
func (p *Poller) Run(ctx context.Context) {
	for {
		p.pollAll(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.interval + jitter(p.cycleJitter)):
		}
	}
}

func (p *Poller) pollAll(ctx context.Context) {
	subs, err := p.store.ListAllSubscriptions(ctx)
	if err != nil {
		p.log.Error("list subscriptions", "error", err)
		return
	}

	for i, sub := range subs {
		if ctx.Err() != nil {
			return
		}
		p.pollOne(ctx, sub)

		// Spread requests to the feed source.
		if i < len(subs)-1 {
			sleepCtx(ctx, jitter(p.subPause))
		}
	}
}

// pollOne processes a single subscription. Failures are contained here so
// one broken feed or chat never affects the rest of the cycle.
func (p *Poller) pollOne(ctx context.Context, sub model.Subscription) {
	p.log.Debug("checking subscription", "subscription_id", sub.ID, "query", sub.Query)

	videos, err := p.feed.Search(ctx, sub.Query)
	if err != nil {
		p.log.Debug("fetch feed", "subscription_id", sub.ID, "query", sub.Query, "error", err)
		return
	}

	filters, err := p.store.ListFilters(ctx, sub.ID)
	if err != nil {
		p.log.Error("list filters", "subscription_id", sub.ID, "error", err)
		return
	}

	known := make(map[string]struct{}, len(sub.Seen))
	for _, id := range sub.Seen {
		known[id] = struct{}{}
	}

	updated := sub.Seen
	added, sent := 0, 0
	for _, v := range videos {
		if _, ok := known[v.ID]; ok {
			continue
		}
		if filter.Match(v, filters) {
			p.sender.SendVideoNotification(sub.ChatID, v)
			sent++
		}
		// Attempted or filtered out, either way the video is now seen and
		// will not be considered again next cycle.
		known[v.ID] = struct{}{}
		updated = append(updated, v.ID)
		added++
	}

	if added == 0 {
		return
	}

	ok, err := p.store.UpdateSeen(ctx, sub.ID, updated)
	if err != nil {
		p.log.Error("update seen", "subscription_id", sub.ID, "error", err)
		return
	}
	if !ok {
		// Subscription was removed while the cycle was running.
		p.log.Debug("subscription gone", "subscription_id", sub.ID)
		return
	}

	if sent > 0 {
		p.log.Info("sent notifications", "subscription_id", sub.ID, "chat_id", sub.ChatID, "count", sent)
	}
}

func jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
