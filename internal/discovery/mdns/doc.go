// Package mdns 实现局域网多播 DNS 节点发现
//
// mdns 使用 mDNS (Multicast DNS) 协议在局域网内自动发现节点，
// 无需中心服务器或互联网连接。目标节点与本机同网段时，这是
// 延迟最低的定位途径。
//
// # 核心功能
//
// 1. 服务通告
//   - 使用 zeroconf 注册 mDNS 服务，实例名为随机字符串
//   - TXT 记录携带 dnsaddr=<完整地址> 条目
//   - 本机无可用地址时进入等待状态，地址就绪后自动开播
//
// 2. 节点发现
//   - 监听同一服务标签下其他节点的通告
//   - 解析 TXT 记录还原节点 ID 与拨号地址
//   - 通过 Events 通道上报，消费方为解析器的发现适配器
//
// 3. 地址过滤
//   - 只通告局域网可达的地址（IP4/IP6，.local DNS）
//   - 跳过虚拟网桥接口（docker0、veth* 等）与 VPN 虚拟地址段
//
// # 使用示例
//
//	src, err := mdns.New(cfg.Discovery.MDNS, ownID, nil)
//	if err != nil {
//	    return err
//	}
//	if err := src.Start(ctx); err != nil {
//	    return err
//	}
//	defer src.Stop(ctx)
//
//	for peer := range src.Events() {
//	    fmt.Printf("发现节点: %s, 地址: %v\n", peer.ID.ShortString(), peer.Addrs)
//	}
//
// # 架构说明
//
// 通告端与浏览端相互独立：
//
//   - 通告端: zeroconf.RegisterProxy() 注册服务并应答查询
//   - 浏览端: zeroconf.Browse() 监听网络，送出服务记录
//   - peerNotifee: 把服务记录转换为 types.PeerInfo 事件
//
// 浏览端套接字在 New 中打开，组播环境不可用时构造直接失败；
// 通告端则允许降级，拿不到地址时周期性重试。
//
// # 并发安全
//
//   - atomic.Bool 保护 started/closed
//   - sync.Mutex 保护 server 实例
//   - sync.WaitGroup 同步后台 goroutine
//   - context.Context 控制生命周期
//
// # 限制
//
//   - 仅限局域网发现，跨网段节点走 DHT
//   - 依赖网络支持多播（部分企业网络禁用）
package mdns
