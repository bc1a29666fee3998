// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载和保存配置
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Discovery.EnableMDNS = false
//	cfg.Shell.Command = "mosh"
//
//	// 从 JSON 文件加载
//	cfg, err := config.LoadFile("peersh.json")
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// KnownPeer 已知节点配置
//
// 用于配置无需发现即可直连的节点。适用于云服务器部署、
// 私有网络等地址已知的场景。
type KnownPeer struct {
	// PeerID 目标节点的 Node ID（Base58 编码）
	PeerID string `json:"peer_id"`

	// Addrs 目标节点的地址列表
	// 格式为 multiaddr，例如 "/ip4/192.168.1.5/tcp/22"
	Addrs []string `json:"addrs"`
}

// Config 是 peersh 的完整配置结构
//
// 该结构体嵌入了所有组件的子配置，提供统一的配置接口。
// 配置按照功能模块组织：
//   - Identity: 身份和密钥管理
//   - Discovery: 节点发现（mDNS/DHT/静态）
//   - Resolve: 解析循环（查询节流、整体超时）
//   - Shell: 远程连接命令
//   - Metrics: Prometheus 指标
type Config struct {
	// Identity 身份配置
	Identity IdentityConfig `json:"identity"`

	// Discovery 节点发现配置
	Discovery DiscoveryConfig `json:"discovery"`

	// Resolve 解析循环配置
	Resolve ResolveConfig `json:"resolve"`

	// Shell 远程连接命令配置
	Shell ShellConfig `json:"shell"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`

	// KnownPeers 已知节点列表
	//
	// 这些节点无需 mDNS 或 DHT 发现即可作为候选地址，
	// 作为静态发现源注入解析循环。
	KnownPeers []KnownPeer `json:"known_peers,omitempty"`
}

// NewConfig 创建默认配置
//
// 返回的配置使用所有组件的默认值，适用于大多数场景。
func NewConfig() *Config {
	return &Config{
		Identity:  DefaultIdentityConfig(),
		Discovery: DefaultDiscoveryConfig(),
		Resolve:   DefaultResolveConfig(),
		Shell:     DefaultShellConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}

// Validate 验证配置的有效性
//
// 检查所有子配置是否有效，如果发现无效配置则返回错误。
// 建议在使用配置前调用此方法。
func (c *Config) Validate() error {
	if err := c.Identity.Validate(); err != nil {
		return err
	}
	if err := c.Discovery.Validate(); err != nil {
		return err
	}
	if err := c.Resolve.Validate(); err != nil {
		return err
	}
	if err := c.Shell.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	for i, kp := range c.KnownPeers {
		if kp.PeerID == "" {
			return fmt.Errorf("known_peers[%d]: peer_id cannot be empty", i)
		}
		if len(kp.Addrs) == 0 {
			return fmt.Errorf("known_peers[%d]: addrs cannot be empty", i)
		}
	}
	return nil
}

// FromJSON 从 JSON 数据创建配置
//
// 未出现在 JSON 中的字段保持默认值。
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的配置文件路径是预期行为
	if err != nil {
		return nil, err
	}
	return FromJSON(data)
}

// SaveFile 保存配置到 JSON 文件
//
// 输出带缩进的 JSON，文件权限 0600（配置可能含敏感路径）。
func (c *Config) SaveFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
