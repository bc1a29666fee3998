// Package interfaces 定义 peersh 公共接口
//
// 本文件定义发现源接口，对应 internal/discovery/ 下的各实现。
package interfaces

import (
	"context"

	"github.com/dep2p/go-peersh/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
// PeerSource 接口
// ════════════════════════════════════════════════════════════════════════════

// PeerSource 定义被动发现源接口
//
// 发现源在后台产生"节点 P 位于地址 A"事件，解析器的发现适配器
// 消费这些事件并写入地址簿。同一节点地址对可能重复送达，消费方
// 负责去重。
//
// 实现位置：
//   - internal/discovery/mdns/   局域网多播发现
//   - internal/discovery/static/ 静态已知节点表
//
// 使用示例:
//
//	src, err := mdns.New(cfg, ownID, announceAddrs)
//	if err != nil {
//	    return err
//	}
//	if err := src.Start(ctx); err != nil {
//	    return err
//	}
//	defer src.Stop(ctx)
//
//	for peer := range src.Events() {
//	    adapter.HandleDiscovered(peer)
//	}
type PeerSource interface {
	// Start 启动发现源
	//
	// 返回后 Events 通道开始产生事件。重复调用返回错误。
	Start(ctx context.Context) error

	// Stop 停止发现源并关闭事件通道
	Stop(ctx context.Context) error

	// Events 返回发现事件通道
	//
	// 每个事件携带节点 ID、地址列表和来源标签。
	// 通道在 Stop 后关闭。
	Events() <-chan types.PeerInfo

	// Name 返回发现源名称（用于日志和指标）
	Name() string
}
