package app_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goldrelay/goldrelay/cli/app"
)

func TestVersionFlag(t *testing.T) {
	ctl := app.New()
	var out bytes.Buffer
	ctl.Writer = &out

	require.NoError(t, ctl.Run([]string{"goldrelayd", "--version"}))
	require.Contains(t, out.String(), "goldrelayd")
	require.Contains(t, out.String(), "Version:")
}

func TestNodeCommandRegistered(t *testing.T) {
	ctl := app.New()
	var found bool
	for _, c := range ctl.Commands {
		if c.Name == "node" {
			found = true
		}
	}
	require.True(t, found, "expected a node command")
}
