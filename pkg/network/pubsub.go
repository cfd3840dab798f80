package network

import (
	"sync"

	"github.com/goldrelay/goldrelay/pkg/wire/payload"
)

// NotificationKind tags the event kinds the Node Context publishes
// (spec.md §6, "Notification channel").
type NotificationKind string

const (
	// NotifyConnection fires on every connect/disconnect transition.
	NotifyConnection NotificationKind = "connection"
	// NotifyAddr fires whenever a new address record is learned.
	NotifyAddr NotificationKind = "addr"
)

// ConnEvent distinguishes the two connection-transition notifications.
type ConnEvent string

const (
	ConnConnected    ConnEvent = "connected"
	ConnDisconnected ConnEvent = "disconnected"
)

// Notification is one event on the Node Context's publish channel.
type Notification struct {
	Kind NotificationKind

	// Populated when Kind == NotifyConnection.
	Event ConnEvent
	Host  string
	Port  uint16

	// Populated when Kind == NotifyAddr.
	Addr payload.NetAddr
}

// subscriberCap bounds each subscriber's backlog; a slow subscriber
// loses its oldest unread notification rather than stalling the
// publisher (spec.md §9, "bounded broadcast ... drop-oldest").
const subscriberCap = 64

type pubsub struct {
	mu   sync.Mutex
	subs []chan Notification
}

// Subscribe returns a channel receiving every future notification.
func (p *pubsub) Subscribe() <-chan Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan Notification, subscriberCap)
	p.subs = append(p.subs, ch)
	return ch
}

// publish fans n out to every subscriber, dropping that subscriber's
// oldest pending notification instead of blocking if its buffer is full.
func (p *pubsub) publish(n Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.subs {
		select {
		case ch <- n:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- n:
			default:
			}
		}
	}
}
