package mdns

import "errors"

// ════════════════════════════════════════════════════════════════════════════
// 错误定义
// ════════════════════════════════════════════════════════════════════════════

var (
	// ErrAlreadyStarted 发现源已启动
	ErrAlreadyStarted = errors.New("mdns: already started")

	// ErrAlreadyClosed 发现源已关闭
	ErrAlreadyClosed = errors.New("mdns: already closed")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("mdns: invalid config")

	// ErrEmptyOwnID 本节点 ID 为空
	ErrEmptyOwnID = errors.New("mdns: own node ID is empty")

	// ErrResolverStart 浏览端创建失败
	//
	// 组播套接字打开失败属于环境问题（无网络接口、权限不足），
	// 在构造阶段直接暴露，不做静默降级。
	ErrResolverStart = errors.New("mdns: failed to create resolver")

	// ErrNoValidAddresses 没有可通告的本机地址
	ErrNoValidAddresses = errors.New("mdns: no valid addresses to advertise")
)
