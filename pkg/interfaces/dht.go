// Package interfaces 定义 peersh 公共接口
//
// 本文件定义 DHT 接口，对应 internal/discovery/dhtadapter/ 实现。
package interfaces

import (
	"context"

	"github.com/dep2p/go-peersh/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
// DHT 接口
// ════════════════════════════════════════════════════════════════════════════

// DHT 定义解析器消费的分布式哈希表查询接口
//
// 解析器不关心 DHT 的路由、存储和网络协议，只使用三类操作：
//   - 发起最近节点查询（结果异步经 Events 通道返回）
//   - 向路由表注入已知地址（本地发现的节点成为 DHT 引导点）
//   - 触发重新引导
//
// 架构位置：Discovery Layer
// 实现位置：internal/discovery/dhtadapter/
type DHT interface {
	// GetClosestPeers 发起针对目标节点的最近节点查询
	//
	// 即发即弃：调用立即返回，查询结果作为 DHTEvent 异步送达。
	// 返回错误仅表示查询无法发起（如 DHT 未启动）。
	GetClosestPeers(ctx context.Context, target types.NodeID) error

	// AddAddress 向路由表注入节点地址
	//
	// 用于将本地发现的节点注册为 DHT 候选路由项。
	AddAddress(id types.NodeID, addr types.Multiaddr) error

	// Bootstrap 触发重新引导
	//
	// 在注入新地址后调用，促使路由表吸收新的引导点。
	Bootstrap(ctx context.Context) error

	// Events 返回 DHT 发现事件通道
	//
	// 通道在 DHT 关闭时关闭。
	Events() <-chan DHTEvent
}

// ════════════════════════════════════════════════════════════════════════════
// DHT 事件
// ════════════════════════════════════════════════════════════════════════════

// RoutingStatus 表示 DHT 报告节点时的路由状态
//
// 仅用于日志，不参与解析决策。
type RoutingStatus int

const (
	// RoutingUnknown 路由状态未知
	RoutingUnknown RoutingStatus = iota

	// RoutingRoutable 节点地址已验证可路由
	RoutingRoutable

	// RoutingPending 节点地址待验证
	RoutingPending

	// RoutingUnroutable 节点地址不可路由
	RoutingUnroutable
)

// String 返回路由状态的字符串表示
func (s RoutingStatus) String() string {
	switch s {
	case RoutingRoutable:
		return "routable"
	case RoutingPending:
		return "pending"
	case RoutingUnroutable:
		return "unroutable"
	default:
		return "unknown"
	}
}

// DHTEvent 表示一次 DHT 发现
//
// 一个事件携带一个节点的完整地址列表（可能为空）。
type DHTEvent struct {
	// Peer 被发现的节点及其地址
	Peer types.PeerInfo

	// Status 报告时的路由状态（仅日志用途）
	Status RoutingStatus
}
