package stall

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/goldrelay/goldrelay/pkg/wire/command"
)

func TestAddRemoveMessage(t *testing.T) {
	d := NewDetector(time.Minute, time.Second)
	d.AddMessage(command.GetAddr)
	mp := d.GetMessages()

	assert.Equal(t, 1, len(mp))
	assert.NotEmpty(t, mp[command.GetAddr])

	d.RemoveMessage(command.GetAddr)
	mp = d.GetMessages()

	assert.Equal(t, 0, len(mp))
	assert.Empty(t, mp[command.GetAddr])
}

func TestDeadline(t *testing.T) {
	responseTime := 2 * time.Second
	tickerInterval := 500 * time.Millisecond
	d := NewDetector(responseTime, tickerInterval)
	defer d.Close()
	d.Run(func(command.Type) {})
	d.AddMessage(command.GetAddr)
	time.Sleep(responseTime + time.Second)

	assert.Equal(t, 0, len(d.GetMessages()))
}

func TestDeadlineShouldNotBeEmptyYet(t *testing.T) {
	responseTime := 10 * time.Second
	tickerInterval := time.Second
	d := NewDetector(responseTime, tickerInterval)
	defer d.Close()
	d.Run(func(command.Type) {})
	d.AddMessage(command.GetAddr)
	time.Sleep(time.Second)

	assert.Equal(t, 1, len(d.GetMessages()))
}

func TestStallCallback(t *testing.T) {
	responseTime := 200 * time.Millisecond
	tickerInterval := 50 * time.Millisecond
	d := NewDetector(responseTime, tickerInterval)
	defer d.Close()

	fired := make(chan command.Type, 1)
	d.Run(func(cmd command.Type) { fired <- cmd })
	d.AddMessage(command.Ping)

	select {
	case cmd := <-fired:
		assert.Equal(t, command.Ping, cmd)
	case <-time.After(2 * time.Second):
		t.Fatal("stall callback never fired")
	}
}
