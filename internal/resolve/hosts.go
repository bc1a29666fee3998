package resolve

import (
	"fmt"

	"github.com/dep2p/go-peersh/internal/util/addrutil"
	"github.com/dep2p/go-peersh/pkg/lib/multiaddr"
	"github.com/dep2p/go-peersh/pkg/types"
)

// isHostProtocol 判定承载主机的协议组件
//
// 仅 ip4/ip6/dns/dns4/dns6 承载可连接的主机；
// 端口（tcp/udp）、传输（quic-v1/ws）与 /p2p/ 组件不算。
func isHostProtocol(code int) bool {
	switch code {
	case multiaddr.P_IP4, multiaddr.P_IP6, multiaddr.P_DNS, multiaddr.P_DNS4, multiaddr.P_DNS6:
		return true
	default:
		return false
	}
}

// ExtractHost 从地址中提取唯一主机
//
// 地址必须恰好包含一个承载主机的组件：
//   - 零个 → ErrNoHostInAddress（如 /p2p/<id> 单独出现）
//   - 多个 → ErrAmbiguousAddress（如 /dns4/a/ip4/1.2.3.4）
func ExtractHost(addr types.Multiaddr) (string, error) {
	ma, err := multiaddr.NewMultiaddr(addr.String())
	if err != nil {
		return "", fmt.Errorf("解析地址失败: %w", err)
	}

	var host string
	count := 0
	multiaddr.ForEach(ma, func(c multiaddr.Component) bool {
		if isHostProtocol(c.Protocol().Code) {
			count++
			if count == 1 {
				host = c.Value()
			}
		}
		return true
	})

	switch {
	case count == 0:
		return "", fmt.Errorf("%w: %s", ErrNoHostInAddress, addr)
	case count > 1:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousAddress, addr)
	}
	return host, nil
}

// Candidates 从缓存记录提取候选主机
//
// 记录需按偏好排好序（addressesOf 的输出）。提取失败的地址
// 告警后跳过；回环与未指定主机过滤掉；重复主机保留首条
// （即排序更优的那条，保住其来源标签）。
func Candidates(records []types.AddrRecord) []types.Candidate {
	seen := make(map[string]struct{}, len(records))
	out := make([]types.Candidate, 0, len(records))

	for _, rec := range records {
		host, err := ExtractHost(rec.Addr)
		if err != nil {
			logger.Warn("跳过无法提取主机的地址", "addr", rec.Addr.String(), "error", err)
			continue
		}
		if addrutil.IsLoopbackHost(host) {
			logger.Debug("过滤回环主机", "host", host, "addr", rec.Addr.String())
			continue
		}
		if _, dup := seen[host]; dup {
			continue
		}
		seen[host] = struct{}{}
		out = append(out, types.Candidate{
			Host:   host,
			Addr:   rec.Addr,
			Source: rec.Source,
		})
	}
	return out
}
