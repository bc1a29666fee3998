package config

import (
	"errors"
	"time"
)

// DiscoveryConfig 节点发现配置
//
// 配置节点发现机制：
//   - mDNS: 本地网络发现（树内实现）
//   - DHT: 分布式哈希表（外部协作方）
//
// 静态已知节点通过顶层 Config.KnownPeers 配置。
type DiscoveryConfig struct {
	// EnableMDNS 是否启用 mDNS
	EnableMDNS bool `json:"enable_mdns"`

	// EnableDHT 是否启用 DHT
	EnableDHT bool `json:"enable_dht"`

	// MDNS mDNS 配置
	MDNS MDNSConfig `json:"mdns,omitempty"`

	// DHT DHT 适配配置
	DHT DHTConfig `json:"dht,omitempty"`
}

// MDNSConfig mDNS 配置
type MDNSConfig struct {
	// ServiceTag mDNS 服务标签
	// 默认值: "_peersh._udp"
	ServiceTag string `json:"service_tag,omitempty"`

	// Interval 广播间隔
	// 默认值: 10s
	Interval Duration `json:"interval,omitempty"`

	// AdvertisePort 对外通告的连接端口
	//
	// 本节点在 mDNS 中通告的地址会带上此端口，
	// 对端据此建立远程连接（默认 SSH 端口 22）。
	AdvertisePort int `json:"advertise_port,omitempty"`
}

// DHTConfig DHT 适配配置
type DHTConfig struct {
	// QueryTimeout 单次查询的超时
	// 默认值: 30s
	QueryTimeout Duration `json:"query_timeout,omitempty"`
}

// DefaultDiscoveryConfig 返回默认的节点发现配置
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		EnableMDNS: true,
		EnableDHT:  true,
		MDNS: MDNSConfig{
			ServiceTag:    "_peersh._udp",
			Interval:      Duration(10 * time.Second),
			AdvertisePort: 22,
		},
		DHT: DHTConfig{
			QueryTimeout: Duration(30 * time.Second),
		},
	}
}

// Validate 验证节点发现配置的有效性
func (c *DiscoveryConfig) Validate() error {
	if c.EnableMDNS {
		if c.MDNS.ServiceTag == "" {
			return errors.New("discovery: mdns service tag cannot be empty")
		}
		if c.MDNS.Interval.Duration() <= 0 {
			return errors.New("discovery: mdns interval must be positive")
		}
		if c.MDNS.AdvertisePort < 0 || c.MDNS.AdvertisePort > 65535 {
			return errors.New("discovery: mdns advertise port out of range")
		}
	}
	if c.EnableDHT && c.DHT.QueryTimeout.Duration() < 0 {
		return errors.New("discovery: dht query timeout cannot be negative")
	}
	return nil
}
