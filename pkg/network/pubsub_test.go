package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPubSubDeliversNotification(t *testing.T) {
	var p pubsub
	ch := p.Subscribe()

	p.publish(Notification{Kind: NotifyConnection, Event: ConnConnected, Host: "203.0.113.5"})

	select {
	case n := <-ch:
		assert.Equal(t, NotifyConnection, n.Kind)
		assert.Equal(t, ConnConnected, n.Event)
		assert.Equal(t, "203.0.113.5", n.Host)
	default:
		t.Fatal("expected a buffered notification")
	}
}

// TestPubSubDropsOldestWhenFull grounds the bounded, drop-oldest
// broadcast policy: a subscriber that never drains still receives the
// most recent notifications once its buffer fills.
func TestPubSubDropsOldestWhenFull(t *testing.T) {
	var p pubsub
	ch := p.Subscribe()

	for i := 0; i < subscriberCap+10; i++ {
		p.publish(Notification{Kind: NotifyConnection, Host: string(rune('a' + i%26))})
	}

	require.Len(t, ch, subscriberCap)

	var last Notification
	for len(ch) > 0 {
		last = <-ch
	}
	expected := string(rune('a' + (subscriberCap+9)%26))
	assert.Equal(t, expected, last.Host)
}
