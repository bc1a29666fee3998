package resolve

import (
	"sort"
	"sync"
	"time"

	"github.com/dep2p/go-peersh/pkg/types"
)

// addressCache 地址缓存
//
// 按节点聚合发现到的地址。两条不变量：
//   - 条目永不淘汰（一次性工具，解析窗口内地址不过期）
//   - 永不存储、永不返回自身节点的地址
//
// 同一地址被多个来源重复上报时保留首次记录（首写来源优先）。
type addressCache struct {
	mu      sync.RWMutex
	self    types.NodeID
	records map[types.NodeID][]types.AddrRecord
}

// newAddressCache 创建地址缓存
func newAddressCache(self types.NodeID) *addressCache {
	return &addressCache{
		self:    self,
		records: make(map[types.NodeID][]types.AddrRecord),
	}
}

// record 记录一条发现地址
//
// 返回是否新增。自身节点与空地址直接丢弃；
// 已存在的地址保持原有的来源与时间标签。
func (c *addressCache) record(id types.NodeID, addr types.Multiaddr, source string, now time.Time) bool {
	if id.Equal(c.self) || id.IsEmpty() || addr.IsEmpty() {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, rec := range c.records[id] {
		if rec.Addr.Equal(addr) {
			return false
		}
	}
	c.records[id] = append(c.records[id], types.AddrRecord{
		Addr:         addr,
		Source:       source,
		DiscoveredAt: now,
	})
	return true
}

// addressesOf 返回节点的全部缓存地址
//
// 返回副本，按候选偏好排序：本地来源优先（SourceRank 小者在前），
// 同来源按发现时间先后。
func (c *addressCache) addressesOf(id types.NodeID) []types.AddrRecord {
	if id.Equal(c.self) {
		return nil
	}

	c.mu.RLock()
	stored := c.records[id]
	out := make([]types.AddrRecord, len(stored))
	copy(out, stored)
	c.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := types.SourceRank(out[i].Source), types.SourceRank(out[j].Source)
		if ri != rj {
			return ri < rj
		}
		return out[i].DiscoveredAt.Before(out[j].DiscoveredAt)
	})
	return out
}

// size 返回节点的缓存地址数
func (c *addressCache) size(id types.NodeID) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records[id])
}
