package connector

import (
	"errors"
	"fmt"
)

// 调度相关错误
var (
	// ErrDispatchInFlight 上一轮调度尚未结束
	ErrDispatchInFlight = errors.New("connector: dispatch already in flight")

	// ErrNoCandidates 没有候选主机
	ErrNoCandidates = errors.New("connector: no candidates to dispatch")
)

// SpawnError 单个主机的连接尝试失败
//
// 携带主机名与底层原因，聚合进整轮的失败结果。
type SpawnError struct {
	// Host 尝试连接的主机
	Host string

	// Err 底层原因（启动失败或非零退出）
	Err error
}

// Error 实现 error 接口
func (e *SpawnError) Error() string {
	return fmt.Sprintf("connector: host %s: %v", e.Host, e.Err)
}

// Unwrap 返回底层原因
func (e *SpawnError) Unwrap() error {
	return e.Err
}
