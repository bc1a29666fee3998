package types

import "time"

// ============================================================================
//                              地址来源
// ============================================================================

// 地址来源标签
//
// 每条缓存地址携带其发现来源，候选排序时本地发现优先于 DHT。
const (
	// SourceMDNS 本地网络 mDNS 发现
	SourceMDNS = "mdns"

	// SourceDHT DHT 查询结果
	SourceDHT = "dht"

	// SourceStatic 配置文件中的已知节点
	SourceStatic = "static"
)

// SourceRank 返回来源的偏好权重（越小越优先）
//
// 本地网络可见的地址几乎总是比 DHT 上报的地址更可达，
// 静态配置介于两者之间。未知来源排在最后。
func SourceRank(source string) int {
	switch source {
	case SourceMDNS:
		return 0
	case SourceStatic:
		return 1
	case SourceDHT:
		return 2
	default:
		return 3
	}
}

// ============================================================================
//                              PeerInfo - 节点信息
// ============================================================================

// PeerInfo 节点信息
// 发现源上报的节点及其地址
type PeerInfo struct {
	// ID 节点 ID
	ID NodeID

	// Addrs 地址列表（Multiaddr 格式）
	Addrs []Multiaddr

	// Source 发现来源（SourceMDNS / SourceDHT / SourceStatic）
	Source string

	// DiscoveredAt 发现时间
	DiscoveredAt time.Time
}

// HasAddrs 检查是否有地址
func (pi PeerInfo) HasAddrs() bool {
	return len(pi.Addrs) > 0
}

// AddrsToStrings 返回地址的字符串切片
func (pi PeerInfo) AddrsToStrings() []string {
	strs := make([]string, len(pi.Addrs))
	for i, ma := range pi.Addrs {
		strs[i] = ma.String()
	}
	return strs
}

// NewPeerInfo 创建 PeerInfo
func NewPeerInfo(id NodeID, addrs []Multiaddr, source string) PeerInfo {
	return PeerInfo{
		ID:           id,
		Addrs:        addrs,
		Source:       source,
		DiscoveredAt: time.Now(),
	}
}

// NewPeerInfoFromStrings 从字符串地址创建 PeerInfo
//
// 忽略无法解析的地址。
func NewPeerInfoFromStrings(id NodeID, addrStrs []string, source string) PeerInfo {
	addrs := make([]Multiaddr, 0, len(addrStrs))
	for _, s := range addrStrs {
		ma, err := ParseMultiaddr(s)
		if err == nil {
			addrs = append(addrs, ma)
		}
	}
	return PeerInfo{
		ID:           id,
		Addrs:        addrs,
		Source:       source,
		DiscoveredAt: time.Now(),
	}
}

// ============================================================================
//                              AddrRecord - 带来源的地址
// ============================================================================

// AddrRecord 带来源标签的缓存地址
//
// 地址缓存中的条目形式：地址本身加上首次发现它的来源和时间。
// 同一地址被多个来源重复上报时保留首次记录。
type AddrRecord struct {
	// Addr 地址
	Addr Multiaddr

	// Source 首次发现来源
	Source string

	// DiscoveredAt 首次发现时间
	DiscoveredAt time.Time
}

// ============================================================================
//                              Candidate - 候选主机
// ============================================================================

// Candidate 连接候选主机
//
// 从缓存地址中提取出的可连接主机（IP 或 DNS 名），
// 保留来源地址与其发现来源，用于排序和日志。
type Candidate struct {
	// Host 主机名或 IP（连接命令的最后一个参数）
	Host string

	// Addr 提取来源地址
	Addr Multiaddr

	// Source 发现来源
	Source string
}
