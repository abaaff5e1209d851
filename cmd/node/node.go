package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/gossipnode/pkg/config"
	"github.com/DeBrosOfficial/gossipnode/pkg/logging"
	"github.com/DeBrosOfficial/gossipnode/pkg/p2p"
	"github.com/DeBrosOfficial/gossipnode/pkg/rest"
)

// runNode starts both interfaces and blocks until ctx is cancelled. The
// REST server is prepared first so that a bad certificate bundle fails
// before the P2P host opens its listener.
func runNode(ctx context.Context, logger *logging.ColoredLogger, cfg *config.Config) error {
	host := p2p.NewHost(logger, cfg.P2P)

	srv, err := rest.NewServer(logger, cfg.Rest, statusRouter(cfg, host))
	if err != nil {
		logger.ComponentError(logging.ComponentREST, "Failed to prepare REST interface", zap.Error(err))
		return err
	}

	if err := host.Start(ctx); err != nil {
		logger.ComponentError(logging.ComponentP2P, "Failed to start P2P interface", zap.Error(err))
		return err
	}
	defer host.Close()

	logger.ComponentInfo(logging.ComponentNode, "Node started",
		zap.String("public_id", host.PublicID()))

	if err := srv.Start(ctx); err != nil {
		logger.ComponentError(logging.ComponentREST, "REST interface stopped with error", zap.Error(err))
		return err
	}

	logger.ComponentInfo(logging.ComponentNode, "Node stopped")
	return nil
}

type nodeStatus struct {
	PublicID       string            `json:"public_id"`
	PeerID         string            `json:"peer_id,omitempty"`
	PublicAddress  string            `json:"public_address"`
	Topics         map[string]string `json:"topics_of_interest"`
	ConnectedPeers int               `json:"connected_peers"`
}

func statusRouter(cfg *config.Config, host *p2p.Host) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/v0/node/status", func(w http.ResponseWriter, req *http.Request) {
		status := nodeStatus{
			PublicID:      host.PublicID(),
			PublicAddress: cfg.P2P.PublicAddress.String(),
			Topics:        make(map[string]string, 2),
		}
		for _, topic := range []p2p.Topic{p2p.TopicMessages, p2p.TopicBlocks} {
			if level, ok := host.Interest(topic); ok {
				status.Topics[string(topic)] = level.String()
			}
		}
		if lh := host.Libp2p(); lh != nil {
			status.PeerID = lh.ID().String()
			status.ConnectedPeers = len(lh.Network().Peers())
		}

		rest.WriteJSON(w, http.StatusOK, status)
	})
	return r
}
