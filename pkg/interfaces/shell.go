// Package interfaces 定义 peersh 公共接口
//
// 本文件定义外部连接命令的进程接口，对应 internal/connector/ 实现。
package interfaces

import (
	"context"
)

// ════════════════════════════════════════════════════════════════════════════
// Runner 接口
// ════════════════════════════════════════════════════════════════════════════

// Runner 定义外部连接命令的执行接口
//
// 连接调度器对每个候选主机执行一次外部命令（如 ssh），主机名作为
// 唯一追加参数。Runner 只负责进程生命周期，不解释命令语义。
//
// 实现位置：internal/connector/（基于 os/exec）
// 测试时可替换为进程内伪实现。
type Runner interface {
	// Spawn 启动外部命令
	//
	// 命令继承调用方的标准输入输出。启动失败（可执行文件不存在、
	// 权限不足等）返回错误；启动成功后通过 Process 观察退出状态。
	// ctx 取消时进程被终止。
	Spawn(ctx context.Context, name string, args ...string) (Process, error)
}

// Process 表示一个已启动的外部进程
type Process interface {
	// Wait 等待进程退出
	//
	// 进程以非零状态退出时返回错误（*exec.ExitError 语义）。
	// 可重复调用，进程退出后返回缓存的结果。
	Wait() error

	// Kill 强制终止进程
	Kill() error

	// PID 返回进程号（用于日志）
	PID() int
}
