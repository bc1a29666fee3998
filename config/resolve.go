package config

import (
	"errors"
	"time"
)

// ResolveConfig 解析循环配置
//
// 控制目标节点的定位过程：
//   - DHT 查询节流（冷却时间内最多发起一次查询）
//   - 整体解析超时
type ResolveConfig struct {
	// QueryCooldown DHT 查询冷却时间
	//
	// 两次 DHT 查询之间的最小间隔。查询在途时不会发起新查询。
	// 默认值: 2s
	QueryCooldown Duration `json:"query_cooldown,omitempty"`

	// Timeout 整体解析超时
	//
	// 从会话启动到成功建立连接的最长等待时间。
	// 0 表示不限。
	Timeout Duration `json:"timeout,omitempty"`
}

// DefaultResolveConfig 返回默认的解析循环配置
func DefaultResolveConfig() ResolveConfig {
	return ResolveConfig{
		QueryCooldown: Duration(2 * time.Second),
		Timeout:       0,
	}
}

// Validate 验证解析循环配置的有效性
func (c *ResolveConfig) Validate() error {
	if c.QueryCooldown.Duration() <= 0 {
		return errors.New("resolve: query cooldown must be positive")
	}
	if c.Timeout.Duration() < 0 {
		return errors.New("resolve: timeout cannot be negative")
	}
	return nil
}
