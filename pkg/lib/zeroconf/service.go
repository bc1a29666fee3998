package zeroconf

import (
	"fmt"
	"net"
	"strings"
)

// ServiceEntry 一个 mDNS 服务实例
//
// 浏览过程中记录逐步集齐：PTR 建立实例，SRV 落定主机与端口，
// TXT 与 A/AAAA 补充内容和地址。
type ServiceEntry struct {
	// Instance 实例名（不含服务后缀）
	Instance string

	// Service 服务类型，如 "_peersh._udp"
	Service string

	// Domain 域，通常为 "local"
	Domain string

	// HostName SRV 目标主机名（FQDN）
	HostName string

	// Port SRV 端口
	Port int

	// Text TXT 记录内容
	Text []string

	// TTL 记录存活期（秒），0 表示实例下线
	TTL uint32

	// AddrIPv4 A 记录地址
	AddrIPv4 []net.IP

	// AddrIPv6 AAAA 记录地址
	AddrIPv6 []net.IP
}

func newServiceEntry(instance, service, domain string) *ServiceEntry {
	return &ServiceEntry{
		Instance: instance,
		Service:  service,
		Domain:   domain,
	}
}

// ServiceName 服务查询名（FQDN），如 "_peersh._udp.local."
func (e *ServiceEntry) ServiceName() string {
	return fmt.Sprintf("%s.%s.", trimDot(e.Service), trimDot(e.Domain))
}

// ServiceInstanceName 实例全名（FQDN），如 "ab12._peersh._udp.local."
func (e *ServiceEntry) ServiceInstanceName() string {
	return fmt.Sprintf("%s.%s", trimDot(e.Instance), e.ServiceName())
}

// complete 实例是否已集齐定位所需的记录
func (e *ServiceEntry) complete() bool {
	return e.HostName != "" && e.Port > 0
}

// trimDot 去除名字两端的点
func trimDot(s string) string {
	return strings.Trim(s, ".")
}

// instanceFromFQDN 从实例全名中剥出实例名
func instanceFromFQDN(fqdn, serviceName string) string {
	name := trimDot(fqdn)
	suffix := "." + trimDot(serviceName)
	if strings.HasSuffix(strings.ToLower(name), strings.ToLower(suffix)) {
		return name[:len(name)-len(suffix)]
	}
	return name
}
