package peersh

import (
	"errors"

	"github.com/dep2p/go-peersh/internal/resolve"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 会话生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrMissingTarget 未指定目标节点
	ErrMissingTarget = errors.New("peersh: target peer is required")

	// ErrInvalidTarget 目标节点标识无法解析
	ErrInvalidTarget = errors.New("peersh: invalid target")

	// ErrAlreadyRunning 会话已在运行
	ErrAlreadyRunning = errors.New("peersh: session already running")

	// ErrSessionClosed 会话已关闭
	//
	// Session 是一次性的：Run 返回或 Close 调用后不能再次 Run。
	ErrSessionClosed = errors.New("peersh: session closed")

	// ────────────────────────────────────────────────────────────────────────
	// 解析错误（内部哨兵的再导出，errors.Is 可直接匹配）
	// ────────────────────────────────────────────────────────────────────────

	// ErrNoConnection 解析结束但没有建立连接
	//
	// 所有候选主机的连接尝试均失败时返回，错误链中包含各主机的失败原因。
	ErrNoConnection = resolve.ErrNoConnection

	// ErrTargetIsSelf 目标节点就是本节点
	ErrTargetIsSelf = resolve.ErrTargetIsSelf
)
