// Package node implements goldrelayd's only subcommand: start a
// peer-to-peer node. Grounded on the teacher's cli/server package's
// shape (a NewCommands() []cli.Command entrypoint wired into cli/app),
// rewritten for urfave/cli v1 (the version actually pinned in go.mod)
// and this system's own configuration and startup sequence.
package node

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/goldrelay/goldrelay/config"
	"github.com/goldrelay/goldrelay/pkg/logging"
	"github.com/goldrelay/goldrelay/pkg/metrics"
	"github.com/goldrelay/goldrelay/pkg/network"
	"github.com/goldrelay/goldrelay/pkg/store"
	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
)

// maintainPeersInterval is how often the connection count is checked
// against MinPeers.
const maintainPeersInterval = 30 * time.Second

// NewCommands returns the "node" command.
func NewCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "node",
			Usage: "run a goldrelay peer-to-peer node",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "config, c", Usage: "path to a YAML config file"},
				cli.BoolFlag{Name: "debug, d", Usage: "force debug-level logging"},
			},
			Action: runNode,
		},
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadEmbeddedDefault()
}

func runNode(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	log, err := logging.New(cfg.Application, c.Bool("debug"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer log.Sync() //nolint:errcheck

	genesisHash, err := binutil.Hash256FromString(cfg.Protocol.GenesisHash)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("node: parse genesisHash: %w", err), 1)
	}

	chainStore, err := openStore(cfg.Application.DBPath)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if closer, ok := chainStore.(interface{ Close() error }); ok {
		defer closer.Close() //nolint:errcheck
	}

	n, err := network.NewNode(cfg, log, chainStore, genesisHash)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Application.Prometheus.Enabled {
		ms := metrics.NewServer(cfg.Application.Prometheus.Address)
		go func() {
			if err := ms.Start(ctx); err != nil {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		go sampleMetrics(ctx, n)
	}

	listener, err := net.Listen("tcp", cfg.Application.ListenAddress)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	go acceptLoop(ctx, listener, n, log)

	for _, seed := range cfg.Protocol.SeedList {
		go dialWithRetry(ctx, n, seed, log)
	}
	go maintainPeers(ctx, n, cfg.Application, log)

	log.Info("goldrelayd started", zap.String("listen", cfg.Application.ListenAddress))
	<-ctx.Done()
	log.Info("shutting down")
	_ = listener.Close()
	for _, s := range n.Connections() {
		s.Close()
	}
	return nil
}

// openStore picks bbolt when a DB path is configured, and falls back to
// an in-memory store for quick demos/tests (spec.md §6, `dbPath`).
func openStore(path string) (store.Store, error) {
	if path == "" {
		return store.NewMem(), nil
	}
	return store.OpenBoltDBStore(path)
}

func acceptLoop(ctx context.Context, l net.Listener, n *network.Node, log *zap.Logger) {
	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				log.Warn("accept failed", zap.Error(err))
				return
			}
		}
		if _, err := n.AcceptInbound(conn); err != nil {
			log.Debug("inbound rejected", zap.Error(err))
		}
	}
}

// dialWithRetry keeps attempting addr until it connects or ctx ends,
// backing the Node Context's seed-list bootstrap (spec.md §6).
func dialWithRetry(ctx context.Context, n *network.Node, addr string, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if _, err := n.DialOutbound(addr); err != nil {
			log.Debug("dial failed, retrying", zap.String("addr", addr), zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Second):
			}
			continue
		}
		return
	}
}

// maintainPeers keeps the connection count (inbound and outbound
// sessions together) at or above MinPeers, dialing up to
// AttemptConnPeers addresses sampled from the address book whenever it
// drops below that floor.
func maintainPeers(ctx context.Context, n *network.Node, cfg config.ApplicationConfig, log *zap.Logger) {
	if cfg.MinPeers <= 0 {
		return
	}
	ticker := time.NewTicker(maintainPeersInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if len(n.Connections()) >= cfg.MinPeers {
				continue
			}
			for _, a := range n.SampleAddrs(cfg.AttemptConnPeers) {
				if _, err := n.DialOutbound(a.String()); err != nil {
					log.Debug("maintain-peers dial failed", zap.String("addr", a.String()), zap.Error(err))
				}
			}
		}
	}
}

func sampleMetrics(ctx context.Context, n *network.Node) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.SetPeerCount(len(n.Connections()))
			metrics.SetInvQueueDepth(n.InvQueueLen())
			metrics.SetIngestQueueDepth(n.IngestQueueLen())
			metrics.SetChainHeight(n.Height())
		}
	}
}
