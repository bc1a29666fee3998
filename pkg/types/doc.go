// Package types 定义 peersh 的基础类型
//
// 这是整个系统的最底层包，不依赖任何其他 peersh 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - ids.go       - NodeID 节点标识
//   - multiaddr.go - Multiaddr 多地址类型（字符串形式）
//   - discovery.go - PeerInfo, AddrRecord 及地址来源常量
//
// 结构化多地址的二进制解析（协议组件遍历）在 pkg/lib/multiaddr 中实现；
// 本包的 Multiaddr 是跨模块传递的规范字符串形式。
package types
