package resolve

import "errors"

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrEmptyTarget 目标节点为空
	ErrEmptyTarget = errors.New("resolve: target peer is empty")

	// ErrTargetIsSelf 目标节点是自身
	//
	// 地址缓存永不服务自身节点，定位自己没有意义，构造时即拒绝。
	ErrTargetIsSelf = errors.New("resolve: target peer is self")

	// ErrNilDispatcher 缺少连接调度器
	ErrNilDispatcher = errors.New("resolve: dispatcher is required")

	// ErrNoHostInAddress 地址中没有承载主机的组件
	ErrNoHostInAddress = errors.New("resolve: no host component in address")

	// ErrAmbiguousAddress 地址中承载主机的组件不唯一
	ErrAmbiguousAddress = errors.New("resolve: multiple host components in address")

	// ErrNoConnection 解析结束但未建立连接（终态，不自动重试）
	ErrNoConnection = errors.New("resolve: resolution finished without connection")

	// ErrAlreadyStarted 解析器已启动
	ErrAlreadyStarted = errors.New("resolve: already started")

	// ErrClosed 解析器已关闭
	ErrClosed = errors.New("resolve: already closed")
)
