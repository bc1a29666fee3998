// Package addrutil 提供地址解析工具
//
// 本包提供完整地址（含 /p2p/<NodeID>）的解析和构建能力，
// 用于静态节点配置、mDNS 通告记录、用户间地址分享等场景。
package addrutil

import (
	"errors"
	"strings"

	"github.com/dep2p/go-peersh/pkg/types"
)

// ============================================================================
//                              错误定义
// ============================================================================

var (
	// ErrInvalidFullAddr 无效的完整地址
	ErrInvalidFullAddr = errors.New("invalid full address: must contain /p2p/<NodeID>")

	// ErrMissingPeerID 缺少 /p2p/<NodeID> 后缀
	ErrMissingPeerID = errors.New("missing /p2p/<NodeID> suffix")

	// ErrInvalidPeerID 无效的 PeerID
	ErrInvalidPeerID = errors.New("invalid peer ID in address")

	// ErrPeerIDNotAtEnd /p2p/<NodeID> 不在地址末尾
	ErrPeerIDNotAtEnd = errors.New("/p2p/<NodeID> must be at the end of address")

	// ErrEmptyAddress 空地址
	ErrEmptyAddress = errors.New("empty address")
)

// ============================================================================
//                              完整地址解析
// ============================================================================

// ParseFullAddr 解析完整地址（含 /p2p/<NodeID>）
//
// 完整地址格式：
//
//	/ip4/<ip>/tcp/<port>/p2p/<NodeID>
//	/dns4/<domain>/tcp/<port>/p2p/<NodeID>
//
// 返回：
//   - peerID: 目标节点 ID（地址末尾的 /p2p/<NodeID>）
//   - dialAddr: 可拨号地址（去掉最后的 /p2p/<NodeID>）
//   - err: 解析错误
//
// 示例：
//
//	id, addr, _ := ParseFullAddr("/ip4/1.2.3.4/tcp/22/p2p/5Q2STW...")
//	// id = 5Q2STW..., addr = "/ip4/1.2.3.4/tcp/22"
func ParseFullAddr(fullAddr string) (peerID types.NodeID, dialAddr string, err error) {
	if fullAddr == "" {
		return types.EmptyNodeID, "", ErrEmptyAddress
	}

	// 查找最后一个 /p2p/
	lastP2P := strings.LastIndex(fullAddr, "/p2p/")
	if lastP2P == -1 {
		return types.EmptyNodeID, "", ErrMissingPeerID
	}

	// 提取 NodeID 字符串，跳过 "/p2p/"
	afterP2P := fullAddr[lastP2P+5:]

	// /p2p/<NodeID> 必须是最后一个组件
	if strings.Contains(afterP2P, "/") {
		return types.EmptyNodeID, "", ErrPeerIDNotAtEnd
	}

	peerID, err = types.ParseNodeID(afterP2P)
	if err != nil {
		return types.EmptyNodeID, "", ErrInvalidPeerID
	}

	// 提取可拨号地址
	dialAddr = fullAddr[:lastP2P]
	if dialAddr == "" {
		return types.EmptyNodeID, "", ErrInvalidFullAddr
	}

	return peerID, dialAddr, nil
}

// BuildFullAddr 构建完整地址（地址 + /p2p/<NodeID>）
//
// 如果地址已经包含 /p2p/<NodeID>：
//   - 若与提供的 peerID 一致，直接返回原地址
//   - 若不一致，返回错误
func BuildFullAddr(addr string, peerID types.NodeID) (string, error) {
	if addr == "" {
		return "", ErrEmptyAddress
	}
	if peerID.IsEmpty() {
		return "", ErrInvalidPeerID
	}

	if strings.Contains(addr, "/p2p/") {
		existingID, _, err := ParseFullAddr(addr)
		if err != nil {
			return "", err
		}
		if !existingID.Equal(peerID) {
			return "", errors.New("address already contains different peer ID")
		}
		return addr, nil
	}

	return addr + "/p2p/" + peerID.String(), nil
}

// ExtractPeerID 从地址中提取 PeerID（如果存在）
//
// 如果地址不包含 /p2p/<NodeID>，返回 EmptyNodeID 和 nil 错误。
// 如果地址包含无效的 NodeID，返回 EmptyNodeID 和错误。
func ExtractPeerID(addr string) (types.NodeID, error) {
	if !strings.Contains(addr, "/p2p/") {
		return types.EmptyNodeID, nil
	}

	peerID, _, err := ParseFullAddr(addr)
	return peerID, err
}

// StripPeerID 从地址中移除 /p2p/<NodeID> 后缀
//
// 如果地址不包含末尾的 /p2p/<NodeID>，返回原地址。
func StripPeerID(addr string) string {
	lastP2P := strings.LastIndex(addr, "/p2p/")
	if lastP2P == -1 {
		return addr
	}

	// 检查 /p2p/ 后面是否还有路径组件
	afterP2P := addr[lastP2P+5:]
	if strings.Contains(afterP2P, "/") {
		return addr
	}

	return addr[:lastP2P]
}

// HasPeerID 检查地址是否包含 /p2p/<NodeID>
func HasPeerID(addr string) bool {
	return strings.Contains(addr, "/p2p/")
}

// MustParseNodeID 解析 NodeID，失败时 panic
//
// 仅用于测试或初始化已知有效的 NodeID。
func MustParseNodeID(s string) types.NodeID {
	id, err := types.ParseNodeID(s)
	if err != nil {
		panic("invalid NodeID: " + s + ": " + err.Error())
	}
	return id
}
