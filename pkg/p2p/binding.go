// Package p2p turns a validated config.P2PConfig into the libp2p host
// settings of the gossip interface.
package p2p

import (
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/peer"
	noise "github.com/libp2p/go-libp2p/p2p/security/noise"
	"github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"

	"github.com/DeBrosOfficial/gossipnode/pkg/config"
)

// ListenMultiaddr returns the address the host binds to. A DNS public
// address is not resolved; the host binds the wildcard address of its port.
func ListenMultiaddr(cfg config.P2PConfig) (multiaddr.Multiaddr, error) {
	a := cfg.PublicAddress
	if a.IsZero() {
		return nil, fmt.Errorf("public address is not set")
	}
	if a.IsIP() {
		return manet.FromNetAddr(&net.TCPAddr{IP: net.ParseIP(a.Host()), Port: a.Port()})
	}
	return manet.FromNetAddr(&net.TCPAddr{IP: net.IPv4zero, Port: a.Port()})
}

// AdvertisedMultiaddr returns the public address without any /p2p suffix.
func AdvertisedMultiaddr(cfg config.P2PConfig) (multiaddr.Multiaddr, error) {
	ma, err := cfg.PublicAddress.Multiaddr()
	if err != nil {
		return nil, fmt.Errorf("invalid public address: %w", err)
	}
	transport, _ := peer.SplitAddr(ma)
	if transport == nil {
		return nil, fmt.Errorf("public address %s has no transport part", ma)
	}
	return transport, nil
}

// BootstrapPeers splits trusted peers into dialable peers (those carrying a
// /p2p id, merged per id in configuration order) and address-only entries.
func BootstrapPeers(cfg config.P2PConfig) ([]peer.AddrInfo, []multiaddr.Multiaddr) {
	var (
		infos   []peer.AddrInfo
		addrs   []multiaddr.Multiaddr
		indexOf = make(map[peer.ID]int)
	)

	for _, tp := range cfg.TrustedPeers {
		ma, err := tp.Multiaddr()
		if err != nil {
			continue
		}
		if tp.PeerID() == "" {
			addrs = append(addrs, ma)
			continue
		}

		info, err := peer.AddrInfoFromP2pAddr(ma)
		if err != nil {
			continue
		}
		if i, ok := indexOf[info.ID]; ok {
			infos[i].Addrs = append(infos[i].Addrs, info.Addrs...)
			continue
		}
		indexOf[info.ID] = len(infos)
		infos = append(infos, *info)
	}

	return infos, addrs
}

// PublicID returns the configured node id, or a fresh one.
func PublicID(cfg config.P2PConfig) string {
	if cfg.PublicID != nil {
		return *cfg.PublicID
	}
	return uuid.NewString()
}

// HostOptions builds the libp2p options for cfg: bind on ListenMultiaddr
// and advertise only AdvertisedMultiaddr.
func HostOptions(cfg config.P2PConfig) ([]libp2p.Option, error) {
	listen, err := ListenMultiaddr(cfg)
	if err != nil {
		return nil, err
	}
	advertised, err := AdvertisedMultiaddr(cfg)
	if err != nil {
		return nil, err
	}

	opts := []libp2p.Option{
		libp2p.ListenAddrs(listen),
		libp2p.Security(noise.ID, noise.New),
		libp2p.DefaultMuxers,
		libp2p.AddrsFactory(func([]multiaddr.Multiaddr) []multiaddr.Multiaddr {
			return []multiaddr.Multiaddr{advertised}
		}),
	}
	return opts, nil
}
