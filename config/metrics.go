package config

import (
	"errors"
	"strings"
)

// MetricsConfig 指标配置
//
// 配置 Prometheus 指标端点。
type MetricsConfig struct {
	// ListenAddr 指标 HTTP 端点监听地址
	//
	// 例如 "127.0.0.1:9090"。为空时不启动端点，
	// 指标仍在进程内采集。
	ListenAddr string `json:"listen_addr,omitempty"`
}

// DefaultMetricsConfig 返回默认的指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		ListenAddr: "",
	}
}

// Enabled 返回是否启动指标端点
func (c *MetricsConfig) Enabled() bool {
	return c.ListenAddr != ""
}

// Validate 验证指标配置的有效性
func (c *MetricsConfig) Validate() error {
	if c.ListenAddr != "" && !strings.Contains(c.ListenAddr, ":") {
		return errors.New("metrics: listen addr must be host:port")
	}
	return nil
}
