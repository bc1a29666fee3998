package config

import (
	"errors"
	"fmt"
)

// 成功判定策略
const (
	// PolicyZeroExit 命令以零状态退出才算成功（默认）
	PolicyZeroExit = "zero-exit"

	// PolicyAnySpawn 命令成功启动即算成功
	PolicyAnySpawn = "any-spawn"
)

// ShellConfig 远程连接命令配置
//
// 解析出候选主机后，每个主机各启动一个连接命令进程，
// 并发竞速，第一个按策略判定成功的进程获胜。
type ShellConfig struct {
	// Command 连接命令
	// 候选主机名追加为最后一个参数。
	// 默认值: "ssh"
	Command string `json:"command"`

	// Args 额外参数
	// 置于命令与主机名之间，例如 ["-p", "2222"]。
	Args []string `json:"args,omitempty"`

	// Policy 成功判定策略
	// 可选值: "zero-exit"（命令退出码为零）、"any-spawn"（启动即成功）
	// 默认值: "zero-exit"
	Policy string `json:"policy"`

	// MaxConcurrent 并发连接尝试上限
	// 默认值: 4
	MaxConcurrent int `json:"max_concurrent,omitempty"`

	// SpawnTimeout 单次连接尝试的超时
	// 0 表示不限（交给整体解析超时控制）。
	SpawnTimeout Duration `json:"spawn_timeout,omitempty"`
}

// DefaultShellConfig 返回默认的连接命令配置
func DefaultShellConfig() ShellConfig {
	return ShellConfig{
		Command:       "ssh",
		Policy:        PolicyZeroExit,
		MaxConcurrent: 4,
		SpawnTimeout:  0,
	}
}

// Validate 验证连接命令配置的有效性
func (c *ShellConfig) Validate() error {
	if c.Command == "" {
		return errors.New("shell: command cannot be empty")
	}
	switch c.Policy {
	case PolicyZeroExit, PolicyAnySpawn:
	default:
		return fmt.Errorf("shell: invalid policy %q (must be %q or %q)", c.Policy, PolicyZeroExit, PolicyAnySpawn)
	}
	if c.MaxConcurrent <= 0 {
		return errors.New("shell: max concurrent must be positive")
	}
	if c.SpawnTimeout.Duration() < 0 {
		return errors.New("shell: spawn timeout cannot be negative")
	}
	return nil
}
