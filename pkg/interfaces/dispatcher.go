package interfaces

import (
	"context"

	"github.com/dep2p/go-peersh/pkg/types"
)

// ============================================================================
//                              连接调度接口
// ============================================================================

// Dispatcher 连接调度器
//
// 接收一批候选主机后并发启动连接尝试并竞速，
// 不阻塞解析循环。结果通过 Done 通道送回。
type Dispatcher interface {
	// Dispatch 启动一轮并发连接尝试
	//
	// 非阻塞：尝试在后台进行，结果经 Done 送达。
	// 一个调度器同一时刻只承载一轮尝试，重复调用返回错误。
	Dispatch(ctx context.Context, target types.NodeID, candidates []types.Candidate) error

	// Done 返回完成通知通道
	//
	// 每轮 Dispatch 恰好产生一个 DispatchResult。
	Done() <-chan DispatchResult
}

// DispatchResult 一轮连接尝试的结果
type DispatchResult struct {
	// Target 目标节点
	Target types.NodeID

	// Winner 获胜的候选主机（nil 表示本轮没有尝试成功）
	Winner *types.Candidate

	// Proc 获胜的进程句柄
	//
	// zero-exit 策略下进程已经退出，Wait 立即返回缓存结果；
	// any-spawn 策略下进程仍在运行，调用方负责等待它结束。
	Proc Process

	// Err 失败时聚合的各主机原因
	Err error
}

// Succeeded 返回本轮是否建立了连接
func (r DispatchResult) Succeeded() bool {
	return r.Winner != nil && r.Err == nil
}