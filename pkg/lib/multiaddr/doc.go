// Package multiaddr 提供多地址（Multiaddr）的实现
//
// Multiaddr 是一种自描述的网络地址格式，支持多种传输协议和地址类型。
// 本包只注册节点定位所需的协议子集。
//
// # 基本用法
//
//	// 创建多地址
//	ma, err := multiaddr.NewMultiaddr("/ip4/127.0.0.1/tcp/4001")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// 获取字符串表示
//	fmt.Println(ma.String()) // /ip4/127.0.0.1/tcp/4001
//
//	// 获取二进制表示
//	bytes := ma.Bytes()
//
//	// 封装节点 ID 组件
//	p2p, _ := multiaddr.NewMultiaddr("/p2p/8fGk3vQm2ZpWxYhN5tRc7sLdAe9uBjD4nEwPqKzT6VaH")
//	full := ma.Encapsulate(p2p)
//
// # 支持的协议
//
//   - IP4/IP6: IPv4 和 IPv6 地址
//   - TCP/UDP: 传输层端口
//   - QUIC/QUIC-V1: QUIC 传输
//   - P2P: 节点 ID（base58 编码的 32 字节摘要）
//   - DNS/DNS4/DNS6/DNSADDR: DNS 名称
//   - WS: WebSocket
//
// # 地址格式
//
// 字符串格式：
//
//	/ip4/127.0.0.1/tcp/4001
//	/ip6/::1/tcp/8080
//	/ip4/192.168.1.1/udp/4001/quic-v1
//	/dns4/peer.example.com/tcp/22
//
// 二进制格式：
//
//	[varint:protocol_code][varint:length][data_bytes]...
//
// 协议代码与 multiformats/multicodec 对齐，varint 编码由
// github.com/multiformats/go-varint 提供。
//
// # 与标准网络类型转换
//
//	// 从 net.TCPAddr 创建
//	tcpAddr := &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 4001}
//	ma, err := multiaddr.FromTCPAddr(tcpAddr)
//
//	// 转换为 net.TCPAddr
//	ma, _ := multiaddr.NewMultiaddr("/ip4/127.0.0.1/tcp/4001")
//	tcpAddr, err := ma.ToTCPAddr()
//
// # 工具函数
//
//	// 分离传输地址和节点 ID 组件
//	transport, peerID := multiaddr.Split(ma)
//
//	// 合并传输地址和节点 ID 组件
//	full := multiaddr.Join(transport, peerID)
//
//	// 逐组件遍历
//	multiaddr.ForEach(ma, func(c multiaddr.Component) bool {
//	    fmt.Println(c.Protocol().Name, c.Value())
//	    return true
//	})
package multiaddr
