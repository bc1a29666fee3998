package dhtadapter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-peersh/config"
	"github.com/dep2p/go-peersh/pkg/interfaces"
	"github.com/dep2p/go-peersh/pkg/lib/log"
	"github.com/dep2p/go-peersh/pkg/types"
)

var logger = log.Logger("discovery/dhtadapter")

var (
	// ErrClosed 表已关闭
	ErrClosed = errors.New("dhtadapter: closed")

	// ErrEmptyPeerID 节点 ID 为空
	ErrEmptyPeerID = errors.New("dhtadapter: empty peer ID")

	// ErrEmptyAddr 地址为空
	ErrEmptyAddr = errors.New("dhtadapter: empty address")
)

// eventBuffer 事件通道容量
const eventBuffer = 64

// Table 内存种子表 DHT
//
// 实现 interfaces.DHT。查询按精确命中回报：目标在表里就回报
// 其全部地址，不在就回报一条空事件（表示查询结束，解析器据此
// 进入冷却重试）。线程安全。
type Table struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	entries map[types.NodeID][]types.Multiaddr

	events chan interfaces.DHTEvent
	closed atomic.Bool
	wg     sync.WaitGroup

	// queryTimeout 单次查询事件的投递上限，0 表示不限
	queryTimeout time.Duration
}

var _ interfaces.DHT = (*Table)(nil)

// New 创建种子表
//
// seeds 预先写入表项；后续地址通过 AddAddress 注入。
func New(cfg config.DHTConfig, seeds ...types.PeerInfo) *Table {
	ctx, cancel := context.WithCancel(context.Background())

	t := &Table{
		ctx:          ctx,
		cancel:       cancel,
		entries:      make(map[types.NodeID][]types.Multiaddr),
		events:       make(chan interfaces.DHTEvent, eventBuffer),
		queryTimeout: cfg.QueryTimeout.Duration(),
	}
	for _, seed := range seeds {
		for _, addr := range seed.Addrs {
			_ = t.AddAddress(seed.ID, addr)
		}
	}
	return t
}

// Events 实现 interfaces.DHT
func (t *Table) Events() <-chan interfaces.DHTEvent {
	return t.events
}

// AddAddress 实现 interfaces.DHT
//
// 同一节点的重复地址只存一份。
func (t *Table) AddAddress(id types.NodeID, addr types.Multiaddr) error {
	if t.closed.Load() {
		return ErrClosed
	}
	if id.IsEmpty() {
		return ErrEmptyPeerID
	}
	if addr.IsEmpty() {
		return ErrEmptyAddr
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, existing := range t.entries[id] {
		if existing.Equal(addr) {
			return nil
		}
	}
	t.entries[id] = append(t.entries[id], addr)

	logger.Debug("表项已更新",
		"peer", id.ShortString(),
		"addr", addr.String(),
		"total", len(t.entries[id]))
	return nil
}

// GetClosestPeers 实现 interfaces.DHT
//
// 即发即弃：结果作为 DHTEvent 异步送达。命中回报全部已知
// 地址（状态 pending），未命中回报空地址事件（状态 unknown）。
func (t *Table) GetClosestPeers(ctx context.Context, target types.NodeID) error {
	if t.closed.Load() {
		return ErrClosed
	}
	if target.IsEmpty() {
		return ErrEmptyPeerID
	}

	t.mu.RLock()
	addrs := append([]types.Multiaddr(nil), t.entries[target]...)
	t.mu.RUnlock()

	status := interfaces.RoutingPending
	if len(addrs) == 0 {
		status = interfaces.RoutingUnknown
	}

	logger.Debug("发起查询",
		"target", target.ShortString(),
		"hit", len(addrs) > 0)

	t.deliver(ctx, interfaces.DHTEvent{
		Peer:   types.NewPeerInfo(target, addrs, types.SourceDHT),
		Status: status,
	})
	return nil
}

// Bootstrap 实现 interfaces.DHT
//
// 把整表作为事件重播一遍。AddAddress 注入新引导点后调用，
// 让消费方立即看到新表项。
func (t *Table) Bootstrap(ctx context.Context) error {
	if t.closed.Load() {
		return ErrClosed
	}

	t.mu.RLock()
	snapshot := make([]types.PeerInfo, 0, len(t.entries))
	for id, addrs := range t.entries {
		snapshot = append(snapshot, types.NewPeerInfo(id, append([]types.Multiaddr(nil), addrs...), types.SourceDHT))
	}
	t.mu.RUnlock()

	logger.Debug("重新引导", "entries", len(snapshot))

	for _, peer := range snapshot {
		t.deliver(ctx, interfaces.DHTEvent{
			Peer:   peer,
			Status: interfaces.RoutingUnknown,
		})
	}
	return nil
}

// deliver 异步投递事件
//
// 投递受调用方 ctx、表生命周期和 queryTimeout 三者约束，
// 消费方长期不取时事件被丢弃而非永久挂起。
func (t *Table) deliver(ctx context.Context, ev interfaces.DHTEvent) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		var timeout <-chan time.Time
		if t.queryTimeout > 0 {
			timer := time.NewTimer(t.queryTimeout)
			defer timer.Stop()
			timeout = timer.C
		}

		select {
		case t.events <- ev:
		case <-ctx.Done():
		case <-t.ctx.Done():
		case <-timeout:
			logger.Warn("事件投递超时，已丢弃", "peer", ev.Peer.ID.ShortString())
		}
	}()
}

// Len 返回表项数量
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Addrs 返回节点的已知地址副本
func (t *Table) Addrs(id types.NodeID) []types.Multiaddr {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]types.Multiaddr(nil), t.entries[id]...)
}

// Close 关闭表并释放事件通道
//
// 幂等。等待在途投递退出后关闭通道。
func (t *Table) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	t.cancel()
	t.wg.Wait()
	close(t.events)
	return nil
}
