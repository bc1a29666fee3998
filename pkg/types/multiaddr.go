package types

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ============================================================================
//                              Multiaddr - 统一地址类型
// ============================================================================

// Multiaddr 统一地址类型（值对象）
//
// Multiaddr 是 peersh 内部唯一的地址表示形式。
// 发现事件、地址缓存、候选主机提取的输入都是 Multiaddr 类型。
//
// 约束：
//   - String() 必须始终返回 canonical multiaddr（以 "/" 开头）
//   - 组件级遍历（协议代码、取值）使用 pkg/lib/multiaddr
//
// 格式示例：
//   - /ip4/192.168.1.5/tcp/4001
//   - /ip6/::1/tcp/4001
//   - /dns4/example.com/tcp/22
//   - /ip4/1.2.3.4/udp/4001/quic-v1
//   - /ip4/1.2.3.4/tcp/4001/p2p/QmNodeID
type Multiaddr string

// Multiaddr 错误定义
var (
	// ErrInvalidMultiaddr 无效的 multiaddr 格式
	ErrInvalidMultiaddr = errors.New("invalid multiaddr format")

	// ErrEmptyMultiaddr 空 multiaddr
	ErrEmptyMultiaddr = errors.New("empty multiaddr")

	// ErrNotMultiaddrFormat 不是 multiaddr 格式（不以 / 开头）
	ErrNotMultiaddrFormat = errors.New("not multiaddr format: must start with /")
)

// ============================================================================
//                              解析/构建
// ============================================================================

// ParseMultiaddr 解析并规范化 multiaddr
//
// 仅接受 multiaddr 格式输入（以 "/" 开头）。
// host:port 格式应在 CLI 边界层使用 FromHostPort 转换后再进入 core。
//
// 示例：
//   - "/ip4/1.2.3.4/tcp/4001" → Multiaddr
//   - "/ip4/1.2.3.4/tcp/4001/p2p/QmNode" → Multiaddr
//   - "1.2.3.4:4001" → error（不是 multiaddr 格式）
func ParseMultiaddr(s string) (Multiaddr, error) {
	if s == "" {
		return "", ErrEmptyMultiaddr
	}

	s = strings.TrimSpace(s)

	// 必须以 / 开头
	if !strings.HasPrefix(s, "/") {
		return "", ErrNotMultiaddrFormat
	}

	// 基本格式校验：检查是否包含有效的协议组件
	parts := strings.Split(s, "/")
	if len(parts) < 3 {
		return "", ErrInvalidMultiaddr
	}

	// 验证第一个组件是有效的网络类型
	firstComponent := parts[1]
	switch firstComponent {
	case "ip4", "ip6", "dns", "dns4", "dns6", "dnsaddr", "p2p":
		// 有效的起始组件
	default:
		return "", fmt.Errorf("%w: unknown protocol %q", ErrInvalidMultiaddr, firstComponent)
	}

	return Multiaddr(s), nil
}

// MustParseMultiaddr 解析 multiaddr，失败时 panic
//
// 仅用于常量初始化或测试代码，生产代码应使用 ParseMultiaddr。
func MustParseMultiaddr(s string) Multiaddr {
	ma, err := ParseMultiaddr(s)
	if err != nil {
		panic(fmt.Sprintf("MustParseMultiaddr(%q): %v", s, err))
	}
	return ma
}

// FromHostPort 从 host:port 创建 multiaddr
//
// 仅供 CLI 边界层使用。需要显式指定传输协议（避免默认值导致歧义）。
//
// 示例：
//   - FromHostPort("1.2.3.4", 22, "tcp") → "/ip4/1.2.3.4/tcp/22"
//   - FromHostPort("::1", 22, "tcp") → "/ip6/::1/tcp/22"
//   - FromHostPort("example.com", 22, "tcp") → "/dns4/example.com/tcp/22"
func FromHostPort(host string, port int, transport string) (Multiaddr, error) {
	if host == "" {
		return "", errors.New("empty host")
	}
	if port <= 0 || port > 65535 {
		return "", fmt.Errorf("invalid port: %d", port)
	}
	if transport == "" {
		return "", errors.New("missing transport protocol")
	}

	// 判断 IP 类型
	var networkType string
	ip := net.ParseIP(host)
	if ip == nil {
		// 可能是域名
		networkType = "dns4"
	} else if ip.To4() != nil {
		networkType = "ip4"
	} else {
		networkType = "ip6"
	}

	var addr string
	if strings.Contains(transport, "/") {
		// 复合传输，如 "udp/quic-v1"
		tparts := strings.SplitN(transport, "/", 2)
		addr = fmt.Sprintf("/%s/%s/%s/%d/%s", networkType, host, tparts[0], port, tparts[1])
	} else {
		// 单一传输，如 "tcp"
		addr = fmt.Sprintf("/%s/%s/%s/%d", networkType, host, transport, port)
	}

	return Multiaddr(addr), nil
}

// ============================================================================
//                              访问方法
// ============================================================================

// String 返回 canonical multiaddr 字符串
func (m Multiaddr) String() string {
	return string(m)
}

// HostPort 返回可展示的 host:port 格式
//
// 仅用于日志展示，不应用于拨号输入。
// 无法提取 IP:Port 时返回空字符串。
func (m Multiaddr) HostPort() string {
	if m.IsEmpty() {
		return ""
	}

	ip := m.IP()
	port := m.Port()
	if ip == nil || port == 0 {
		return ""
	}

	// IPv6 需要用方括号包裹
	if ip.To4() == nil {
		return fmt.Sprintf("[%s]:%d", ip.String(), port)
	}
	return fmt.Sprintf("%s:%d", ip.String(), port)
}

// IP 返回 IP 地址（如果可用）
func (m Multiaddr) IP() net.IP {
	if m.IsEmpty() {
		return nil
	}

	parts := strings.Split(string(m), "/")
	for i := 1; i < len(parts)-1; i++ {
		switch parts[i] {
		case "ip4", "ip6":
			return net.ParseIP(parts[i+1])
		}
	}
	return nil
}

// Port 返回端口号（如果可用）
func (m Multiaddr) Port() int {
	if m.IsEmpty() {
		return 0
	}

	parts := strings.Split(string(m), "/")
	for i := 1; i < len(parts)-1; i++ {
		switch parts[i] {
		case "tcp", "udp":
			port, err := strconv.Atoi(parts[i+1])
			if err == nil {
				return port
			}
		}
	}
	return 0
}

// PeerID 返回嵌入的 NodeID（如果有 /p2p/<nodeID> 组件）
func (m Multiaddr) PeerID() NodeID {
	if m.IsEmpty() {
		return NodeID{}
	}

	parts := strings.Split(string(m), "/")
	for i := 1; i < len(parts)-1; i++ {
		if parts[i] == "p2p" {
			nodeID, err := ParseNodeID(parts[i+1])
			if err == nil {
				return nodeID
			}
		}
	}
	return NodeID{}
}

// Transport 返回传输协议
//
// 返回值: "quic-v1", "tcp", "udp", ""
func (m Multiaddr) Transport() string {
	if m.IsEmpty() {
		return ""
	}

	parts := strings.Split(string(m), "/")
	for i := len(parts) - 1; i >= 1; i-- {
		switch parts[i] {
		case "quic-v1", "quic", "tcp", "udp":
			return parts[i]
		}
	}
	return ""
}

// Bytes 返回地址的字节表示
func (m Multiaddr) Bytes() []byte {
	return []byte(m)
}

// ============================================================================
//                              判断方法
// ============================================================================

// IsPublic 是否是公网地址
func (m Multiaddr) IsPublic() bool {
	ip := m.IP()
	if ip == nil {
		return false
	}
	// 排除私网、回环、链路本地等
	return !ip.IsLoopback() &&
		!ip.IsPrivate() &&
		!ip.IsUnspecified() &&
		!ip.IsLinkLocalUnicast() &&
		!ip.IsLinkLocalMulticast()
}

// IsPrivate 是否是私网地址
func (m Multiaddr) IsPrivate() bool {
	ip := m.IP()
	if ip == nil {
		return false
	}
	return ip.IsPrivate()
}

// IsLoopback 是否是回环地址
//
// 发现源可能上报本机的回环可见地址（127.0.0.1、::1、localhost），
// 这类地址永远不应被拨号。
func (m Multiaddr) IsLoopback() bool {
	ip := m.IP()
	if ip == nil {
		// 域名组件按 localhost 判断
		return strings.Contains(string(m), "/localhost")
	}
	return ip.IsLoopback()
}

// IsEmpty 是否为空
func (m Multiaddr) IsEmpty() bool {
	return m == ""
}

// Equal 比较两个 Multiaddr 是否相等
func (m Multiaddr) Equal(other Multiaddr) bool {
	return m == other
}
