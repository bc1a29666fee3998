package mdns

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dep2p/go-peersh/internal/util/addrutil"
	"github.com/dep2p/go-peersh/pkg/lib/zeroconf"
	"github.com/dep2p/go-peersh/pkg/types"
)

// logger 在 mdns.go 中定义

const (
	// seenSize 去重缓存容量
	seenSize = 1024

	// seenTTL 去重窗口
	//
	// 同一节点的周期性重播在窗口内只上报一次；窗口过后重新上报，
	// 让消费方有机会看到地址变更。
	seenTTL = time.Minute
)

// peerNotifee 把 zeroconf 服务记录转换为发现事件
//
// 单 goroutine 调用 handleEntry；close 与 safeSend 可能并发。
type peerNotifee struct {
	ctx    context.Context
	selfID types.NodeID
	peerCh chan<- types.PeerInfo
	seen   *expirable.LRU[string, struct{}]

	mu     sync.Mutex
	closed bool
}

// newPeerNotifee 创建 notifee
func newPeerNotifee(ctx context.Context, selfID types.NodeID, peerCh chan<- types.PeerInfo) *peerNotifee {
	return &peerNotifee{
		ctx:    ctx,
		selfID: selfID,
		peerCh: peerCh,
		seen:   expirable.NewLRU[string, struct{}](seenSize, nil, seenTTL),
	}
}

// close 截断事件投递
//
// 通道本身由处理 goroutine 在退出时关闭，这里只做标记。
func (n *peerNotifee) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
}

// safeSend 投递发现事件
//
// 返回 false 表示已关闭或 ctx 已取消，调用方应停止投递。
func (n *peerNotifee) safeSend(peerInfo types.PeerInfo) bool {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return false
	}
	n.mu.Unlock()

	select {
	case <-n.ctx.Done():
		return false
	case n.peerCh <- peerInfo:
		return true
	}
}

// handleEntry 处理一条 zeroconf 服务记录
//
// TXT 记录里的 dnsaddr 条目解析为完整地址，按节点分组后
// 逐个上报。自身节点与去重窗口内已见过的节点跳过。
func (n *peerNotifee) handleEntry(entry *zeroconf.ServiceEntry) {
	if entry == nil {
		return
	}

	logger.Debug("收到服务记录",
		"instance", entry.Instance,
		"service", entry.Service,
		"txt", len(entry.Text))

	peerAddrs := make(map[types.NodeID][]types.Multiaddr)
	for _, txt := range entry.Text {
		if !strings.HasPrefix(txt, DNSAddrPrefix) {
			continue
		}
		full := txt[len(DNSAddrPrefix):]

		id, dial, err := addrutil.ParseFullAddr(full)
		if err != nil {
			logger.Debug("无效的通告地址", "addr", full, "error", err)
			continue
		}
		peerAddrs[id] = append(peerAddrs[id], types.Multiaddr(dial))
	}

	if len(peerAddrs) == 0 {
		return
	}

	for id, addrs := range peerAddrs {
		if id.Equal(n.selfID) {
			continue
		}

		key := id.String()
		if n.seen.Contains(key) {
			logger.Debug("去重窗口内已上报", "peer", id.ShortString())
			continue
		}
		n.seen.Add(key, struct{}{})

		logger.Info("发现局域网节点",
			"peer", id.ShortString(),
			"addrs", len(addrs))

		if !n.safeSend(types.NewPeerInfo(id, addrs, sourceName)) {
			return
		}
	}
}
