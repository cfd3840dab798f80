// Package app assembles the goldrelayd command-line application,
// following the teacher's own cli/app: a cli.App whose Commands are
// contributed by per-subsystem packages.
package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli"

	"github.com/goldrelay/goldrelay/cli/node"
)

const version = "0.1.0"

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "goldrelayd\nVersion: %s\nGoVersion: %s\n",
		version, runtime.Version())
}

// New creates the goldrelayd [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "goldrelayd"
	ctl.Version = version
	ctl.Usage = "a peer-to-peer goldrelay node"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, node.NewCommands()...)
	return ctl
}
