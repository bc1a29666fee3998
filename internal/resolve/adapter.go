package resolve

import (
	"github.com/dep2p/go-peersh/pkg/interfaces"
	"github.com/dep2p/go-peersh/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              事件泵
// ════════════════════════════════════════════════════════════════════════════
// 每个协作方的事件流由独立 goroutine 汇入缓存。
// 泵只做三件事：写缓存、回灌 DHT、唤醒解析循环。

// pumpSource 汇入一个发现源的事件
func (r *Resolver) pumpSource(src interfaces.PeerSource) {
	defer r.wg.Done()
	for {
		select {
		case <-r.runCtx.Done():
			return
		case info, ok := <-src.Events():
			if !ok {
				logger.Debug("发现源事件通道已关闭", "source", src.Name())
				return
			}
			r.handleDiscovered(info)
		}
	}
}

// pumpDHT 汇入 DHT 路由事件
func (r *Resolver) pumpDHT() {
	defer r.wg.Done()
	for {
		select {
		case <-r.runCtx.Done():
			return
		case ev, ok := <-r.dht.Events():
			if !ok {
				logger.Debug("DHT 事件通道已关闭")
				return
			}
			r.handleDHTEvent(ev)
		}
	}
}

// pumpDispatch 汇入连接调度结果
func (r *Resolver) pumpDispatch() {
	defer r.wg.Done()
	for {
		select {
		case <-r.runCtx.Done():
			return
		case res, ok := <-r.dispatcher.Done():
			if !ok {
				return
			}
			r.completeDispatch(res)
		}
	}
}

// handleDiscovered 处理本地发现源的节点事件
//
// 任何命中目标的事件都结算在途查询（markSettled），
// 无论事件来自哪个源。
func (r *Resolver) handleDiscovered(info types.PeerInfo) {
	if info.ID.IsEmpty() || info.ID.Equal(r.self) {
		return
	}
	r.metrics.RecordDiscovery(info.Source)

	now := r.clk.Now()
	added := 0
	for _, addr := range info.Addrs {
		if r.cache.record(info.ID, addr, info.Source, now) {
			added++
		}
	}

	// 本地发现的地址回灌 DHT，帮助其他节点经路由找到它
	if r.dht != nil && info.Source != types.SourceDHT {
		for _, addr := range info.Addrs {
			if err := r.dht.AddAddress(info.ID, addr); err != nil {
				logger.Warn("向 DHT 回灌地址失败",
					"peer", info.ID.ShortString(), "error", err)
			}
		}
		if err := r.dht.Bootstrap(r.runCtx); err != nil {
			logger.Warn("触发 DHT 引导失败", "error", err)
		}
	}

	if info.ID.Equal(r.target) {
		r.throttle.markSettled()
		r.metrics.SetCachedAddresses(r.cache.size(r.target))
		logger.Info("发现目标节点",
			"target", info.ID.ShortString(),
			"source", info.Source,
			"addrs", len(info.Addrs),
			"new", added)
		r.waker.Wake()
		return
	}
	logger.Debug("发现节点",
		"peer", info.ID.ShortString(), "source", info.Source, "new", added)
}

// handleDHTEvent 处理 DHT 路由事件
//
// 路由状态只记录日志，地址有没有用由状态机读缓存时裁决。
func (r *Resolver) handleDHTEvent(ev interfaces.DHTEvent) {
	info := ev.Peer
	if info.ID.IsEmpty() || info.ID.Equal(r.self) {
		return
	}
	r.metrics.RecordDiscovery(types.SourceDHT)

	now := r.clk.Now()
	for _, addr := range info.Addrs {
		r.cache.record(info.ID, addr, types.SourceDHT, now)
	}
	logger.Debug("DHT 路由事件",
		"peer", info.ID.ShortString(),
		"status", ev.Status.String(),
		"addrs", len(info.Addrs))

	if info.ID.Equal(r.target) {
		r.throttle.markSettled()
		r.metrics.SetCachedAddresses(r.cache.size(r.target))
		r.waker.Wake()
	}
}

// completeDispatch 记录调度结果并唤醒解析循环
func (r *Resolver) completeDispatch(res interfaces.DispatchResult) {
	r.mu.Lock()
	r.result = &res
	r.mu.Unlock()
	r.waker.Wake()
}
