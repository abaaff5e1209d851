package p2p

import (
	"context"
	"fmt"
	"time"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/peerstore"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/gossipnode/pkg/config"
	"github.com/DeBrosOfficial/gossipnode/pkg/logging"
)

const dialTimeout = 10 * time.Second

// Topic names a gossip topic
type Topic string

const (
	TopicMessages Topic = "messages"
	TopicBlocks   Topic = "blocks"
)

// Host is the gossip interface endpoint
type Host struct {
	logger   *logging.ColoredLogger
	config   config.P2PConfig
	publicID string
	host     host.Host
}

// NewHost prepares a host for cfg. Nothing listens until Start.
func NewHost(logger *logging.ColoredLogger, cfg config.P2PConfig) *Host {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Host{
		logger:   logger,
		config:   cfg,
		publicID: PublicID(cfg),
	}
}

// PublicID returns the node id announced to peers.
func (h *Host) PublicID() string {
	return h.publicID
}

// Interest returns the configured eagerness for topic.
func (h *Host) Interest(topic Topic) (config.InterestLevel, bool) {
	switch topic {
	case TopicMessages:
		return h.config.TopicsOfInterest.Messages, true
	case TopicBlocks:
		return h.config.TopicsOfInterest.Blocks, true
	}
	return 0, false
}

// Libp2p returns the underlying host, nil before Start.
func (h *Host) Libp2p() host.Host {
	return h.host
}

// Start creates the libp2p host and dials every trusted peer that carries
// a peer id once. Failed dials are logged and do not fail Start.
func (h *Host) Start(ctx context.Context) error {
	if h.host != nil {
		return fmt.Errorf("p2p host already started")
	}

	opts, err := HostOptions(h.config)
	if err != nil {
		return err
	}

	lh, err := libp2p.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create libp2p host: %w", err)
	}
	h.host = lh

	h.logger.ComponentInfo(logging.ComponentP2P, "P2P host started",
		zap.String("public_id", h.publicID),
		zap.String("peer_id", lh.ID().String()),
		zap.Any("addrs", lh.Addrs()),
		zap.String("messages", h.config.TopicsOfInterest.Messages.String()),
		zap.String("blocks", h.config.TopicsOfInterest.Blocks.String()),
	)

	infos, addrOnly := BootstrapPeers(h.config)
	for _, ma := range addrOnly {
		h.logger.ComponentDebug(logging.ComponentP2P, "Trusted peer without peer id, not dialed",
			zap.String("addr", ma.String()))
	}
	h.connectToPeers(ctx, infos)

	return nil
}

func (h *Host) connectToPeers(ctx context.Context, infos []peer.AddrInfo) {
	for _, info := range infos {
		if info.ID == h.host.ID() {
			continue
		}
		h.host.Peerstore().AddAddrs(info.ID, info.Addrs, peerstore.PermanentAddrTTL)

		dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		err := h.host.Connect(dialCtx, info)
		cancel()
		if err != nil {
			h.logger.ComponentWarn(logging.ComponentP2P, "Failed to connect to trusted peer",
				zap.String("peer", info.ID.String()),
				zap.Error(err))
			continue
		}
		h.logger.ComponentInfo(logging.ComponentP2P, "Connected to trusted peer",
			zap.String("peer", info.ID.String()))
	}
}

// Close shuts the libp2p host down.
func (h *Host) Close() error {
	if h.host == nil {
		return nil
	}
	err := h.host.Close()
	h.host = nil
	h.logger.ComponentInfo(logging.ComponentP2P, "P2P host stopped")
	return err
}
