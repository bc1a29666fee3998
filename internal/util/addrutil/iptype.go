// Package addrutil 提供地址解析工具
package addrutil

import (
	"net"
	"strings"
)

// ============================================================================
//                              IP 类型判断工具
// ============================================================================

// IsLoopbackAddr 判断 multiaddr 字符串是否是回环地址
//
// 支持格式：
//   - /ip4/127.0.0.1/...
//   - /ip6/::1/...
//   - /ip4/127.x.x.x/...
func IsLoopbackAddr(addr string) bool {
	ip := ExtractIP(addr)
	if ip == nil {
		return false
	}
	return ip.IsLoopback()
}

// IsPrivateAddr 判断 multiaddr 字符串是否是私网地址
//
// 私网地址范围：
//   - 10.0.0.0/8
//   - 172.16.0.0/12
//   - 192.168.0.0/16
//   - fc00::/7 (IPv6 ULA)
//   - fe80::/10 (IPv6 链路本地)
func IsPrivateAddr(addr string) bool {
	ip := ExtractIP(addr)
	if ip == nil {
		return false
	}
	return ip.IsPrivate() || ip.IsLinkLocalUnicast()
}

// IsPublicAddr 判断 multiaddr 字符串是否是公网地址
//
// 公网地址：非回环、非私网、非链路本地的有效单播地址
func IsPublicAddr(addr string) bool {
	ip := ExtractIP(addr)
	if ip == nil {
		return false
	}
	return ip.IsGlobalUnicast() && !ip.IsPrivate() && !ip.IsLoopback()
}

// IsLoopbackHost 判断裸主机标识是否指向本机
//
// 发现源可能合法上报本机的回环可见地址，这些主机绝不应被拨号。
// 识别 "localhost"、回环 IP 字面量（127.x.x.x、::1）和
// 链路本地未指定地址。DNS 名称无法在不解析的情况下判断，返回 false。
func IsLoopbackHost(host string) bool {
	if host == "" {
		return false
	}

	if strings.EqualFold(host, "localhost") {
		return true
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsUnspecified()
}

// ExtractIP 从地址字符串中提取 IP 地址
//
// 支持格式：
//   - multiaddr: /ip4/<ip>/..., /ip6/<ip>/...
//   - host:port: 1.2.3.4:4001
//   - [ipv6]:port: [::1]:4001
//   - 纯 IP: 1.2.3.4 / ::1
//
// 对于 /dns4/ /dns6/ /dnsaddr/ 这类无法直接得到 IP 的地址，返回 nil。
func ExtractIP(addr string) net.IP {
	if addr == "" {
		return nil
	}

	// multiaddr 格式（以 / 开头）
	if strings.HasPrefix(addr, "/") {
		parts := strings.Split(addr, "/")
		for i, part := range parts {
			switch part {
			case "ip4", "ip6":
				if i+1 < len(parts) {
					return net.ParseIP(parts[i+1])
				}
			case "dns", "dns4", "dns6", "dnsaddr":
				// DNS 地址无法直接判断 IP 类型
				return nil
			}
		}
		return nil
	}

	// 传统 host:port 格式
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		// 可能不是 host:port 格式，尝试直接解析为 IP
		return net.ParseIP(addr)
	}
	return net.ParseIP(host)
}

// AddrType 返回地址类型描述
//
// 返回值：
//   - "loopback" - 回环地址
//   - "private" - 私网地址
//   - "public" - 公网地址
//   - "dns" - DNS 地址（无法判断 IP 类型）
//   - "unknown" - 未知类型
func AddrType(addr string) string {
	if addr == "" {
		return "unknown"
	}

	if strings.Contains(addr, "/dns/") || strings.Contains(addr, "/dns4/") ||
		strings.Contains(addr, "/dns6/") || strings.Contains(addr, "/dnsaddr/") {
		return "dns"
	}

	if IsLoopbackAddr(addr) {
		return "loopback"
	}
	if IsPrivateAddr(addr) {
		return "private"
	}
	if IsPublicAddr(addr) {
		return "public"
	}

	return "unknown"
}
