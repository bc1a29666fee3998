// Package static 实现配置驱动的静态发现源
//
// 运营方在配置里写明已知节点的地址（云服务器、私有网络等
// 地址固定的场景），这些节点无需 mDNS 或 DHT 即可进入解析
// 循环。条目在 Start 时一次性全部上报，之后不再产生事件。
package static

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dep2p/go-peersh/config"
	"github.com/dep2p/go-peersh/internal/util/addrutil"
	"github.com/dep2p/go-peersh/pkg/interfaces"
	"github.com/dep2p/go-peersh/pkg/lib/log"
	"github.com/dep2p/go-peersh/pkg/types"
)

var logger = log.Logger("discovery/static")

var (
	// ErrNoPeers 没有可用的静态节点
	ErrNoPeers = errors.New("static: no known peers configured")

	// ErrInvalidPeer 静态节点条目无效
	ErrInvalidPeer = errors.New("static: invalid peer entry")

	// ErrAlreadyStarted 发现源已启动
	ErrAlreadyStarted = errors.New("static: already started")

	// ErrAlreadyClosed 发现源已关闭
	ErrAlreadyClosed = errors.New("static: already closed")
)

// Source 静态已知节点发现源
//
// 实现 interfaces.PeerSource。事件通道容量等于节点数，
// Start 的一次性上报不会阻塞。
type Source struct {
	peers  []types.PeerInfo
	events chan types.PeerInfo

	started atomic.Bool
	closed  atomic.Bool
}

var _ interfaces.PeerSource = (*Source)(nil)

// New 创建静态发现源
//
// 配置条目在这里完成校验：节点 ID 必须可解析，地址必须是
// 合法 multiaddr；地址自带 /p2p/ 后缀时必须与条目 ID 一致
// （随后剥掉，缓存只存拨号部分）。指向本节点的条目跳过。
func New(known []config.KnownPeer, ownID types.NodeID) (*Source, error) {
	if len(known) == 0 {
		return nil, ErrNoPeers
	}

	var peers []types.PeerInfo
	for i, kp := range known {
		id, err := types.ParseNodeID(kp.PeerID)
		if err != nil {
			return nil, fmt.Errorf("%w: known_peers[%d]: bad peer_id %q: %v",
				ErrInvalidPeer, i, kp.PeerID, err)
		}
		if id.Equal(ownID) {
			logger.Debug("跳过指向本节点的条目", "index", i)
			continue
		}

		var addrs []types.Multiaddr
		for _, raw := range kp.Addrs {
			embedded, err := addrutil.ExtractPeerID(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: known_peers[%d]: bad addr %q: %v",
					ErrInvalidPeer, i, raw, err)
			}
			if !embedded.IsEmpty() && !embedded.Equal(id) {
				return nil, fmt.Errorf("%w: known_peers[%d]: addr %q names a different peer",
					ErrInvalidPeer, i, raw)
			}

			dial := addrutil.StripPeerID(raw)
			addr, err := types.ParseMultiaddr(dial)
			if err != nil {
				return nil, fmt.Errorf("%w: known_peers[%d]: bad addr %q: %v",
					ErrInvalidPeer, i, raw, err)
			}
			addrs = append(addrs, addr)
		}
		if len(addrs) == 0 {
			return nil, fmt.Errorf("%w: known_peers[%d]: no addrs", ErrInvalidPeer, i)
		}

		peers = append(peers, types.NewPeerInfo(id, addrs, types.SourceStatic))
	}

	if len(peers) == 0 {
		return nil, ErrNoPeers
	}

	return &Source{
		peers:  peers,
		events: make(chan types.PeerInfo, len(peers)),
	}, nil
}

// Name 实现 interfaces.PeerSource
func (s *Source) Name() string {
	return types.SourceStatic
}

// Events 实现 interfaces.PeerSource
func (s *Source) Events() <-chan types.PeerInfo {
	return s.events
}

// Start 一次性上报全部静态节点
func (s *Source) Start(_ context.Context) error {
	if s.closed.Load() {
		return ErrAlreadyClosed
	}
	if s.started.Swap(true) {
		return ErrAlreadyStarted
	}

	for _, p := range s.peers {
		s.events <- p
	}
	logger.Info("静态节点已上报", "count", len(s.peers))
	return nil
}

// Stop 关闭事件通道
//
// 幂等。已缓冲但未消费的事件仍可被读完，之后通道关闭。
func (s *Source) Stop(_ context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.events)
	return nil
}
