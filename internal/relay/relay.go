// Package relay implements the §4.7 fan-out adapter: the core depends
// only on Source (an inbound stream of validated events) and Sink (a
// best-effort outbound publisher). Adapter backs both with
// github.com/nbd-wtf/go-nostr's relay pool; this is the one package
// that speaks the wire protocol, confining exposure to that library's
// concrete API surface to the smallest boundary that can reasonably
// own it.
package relay

import (
	"context"
	"sync"

	"github.com/nbd-wtf/go-nostr"

	"github.com/xeruf/mostr-go/internal/events"
)

// Source is an asynchronous stream of validated inbound events.
type Source interface {
	Events() <-chan *events.Event
}

// Sink is a best-effort outbound publisher.
type Sink interface {
	Publish(ctx context.Context, e *events.Event) error
}

// Adapter dials a set of relay URLs and exposes them as a single
// Source/Sink pair. Disconnects are transparent to callers: the
// underlying pool reconnects and resubscribes on its own, and events
// missed during the gap re-arrive and are re-applied idempotently by
// the core's apply() entrypoint.
type Adapter struct {
	pool *nostr.SimplePool
	urls []string

	mu  sync.Mutex
	out chan *events.Event
}

// Dial opens a relay pool over urls and begins streaming every event
// kind the core recognizes (and tolerates all others as inert, per
// §6). Subscriptions restart automatically on reconnect; ctx
// cancellation tears the pool down.
func Dial(ctx context.Context, urls []string) *Adapter {
	a := &Adapter{
		pool: nostr.NewSimplePool(ctx),
		urls: urls,
		out:  make(chan *events.Event, 256),
	}
	if len(urls) == 0 {
		return a // ephemeral session, no relay set configured
	}
	filter := nostr.Filter{
		Kinds: []int{
			int(events.KindNote), int(events.KindTaskCreate), int(events.KindTaskComment),
			int(events.KindStatusOpen), int(events.KindStatusDone),
			int(events.KindStatusClosed), int(events.KindStatusPend),
			int(events.KindTracking),
		},
	}
	go a.subscribe(ctx, filter)
	return a
}

func (a *Adapter) subscribe(ctx context.Context, filter nostr.Filter) {
	for ie := range a.pool.SubscribeMany(ctx, a.urls, filter) {
		if ie.Event == nil {
			continue
		}
		if e := fromWire(ie.Event); e != nil {
			select {
			case a.out <- e:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Events implements Source.
func (a *Adapter) Events() <-chan *events.Event {
	return a.out
}

// Sign computes e's id and signature with privateKeyHex, per NIP-01's
// canonical serialization (delegated to go-nostr, since ComputeID
// only fixes identity and leaves signing to this adapter per its own
// doc comment). It mutates and returns e for chaining at call sites.
func Sign(e *events.Event, privateKeyHex string) (*events.Event, error) {
	wire := toWire(e)
	wire.ID = ""
	wire.Sig = ""
	if err := wire.Sign(privateKeyHex); err != nil {
		return nil, err
	}
	e.ID = wire.ID
	e.Sig = wire.Sig
	e.Author = wire.PubKey
	return e, nil
}

// Publish implements Sink: it signs nothing itself (key lifecycle is
// an external adapter's concern per §1) and expects e.Sig already set
// by the caller's signer before publishing.
func (a *Adapter) Publish(ctx context.Context, e *events.Event) error {
	wire := toWire(e)
	var lastErr error
	for _, url := range a.urls {
		relay, err := a.pool.EnsureRelay(url)
		if err != nil {
			lastErr = err
			continue
		}
		if err := relay.Publish(ctx, *wire); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// toWire converts a core event to the wire representation.
func toWire(e *events.Event) *nostr.Event {
	tags := make(nostr.Tags, 0, len(e.Tags))
	for _, t := range e.Tags {
		tags = append(tags, nostr.Tag(t))
	}
	return &nostr.Event{
		ID:        e.ID,
		PubKey:    e.Author,
		CreatedAt: nostr.Timestamp(e.CreatedAt),
		Kind:      int(e.Kind),
		Tags:      tags,
		Content:   e.Content,
		Sig:       e.Sig,
	}
}

// fromWire converts a wire event to the core representation, or nil
// if it carries no id (malformed).
func fromWire(w *nostr.Event) *events.Event {
	if w == nil || w.ID == "" {
		return nil
	}
	tags := make(events.Tags, 0, len(w.Tags))
	for _, t := range w.Tags {
		tags = append(tags, events.Tag(t))
	}
	return &events.Event{
		ID:        w.ID,
		Author:    w.PubKey,
		CreatedAt: int64(w.CreatedAt),
		Kind:      events.Kind(w.Kind),
		Tags:      tags,
		Content:   w.Content,
		Sig:       w.Sig,
	}
}
