// Package peersh 按节点身份定位目标并建立远程连接
//
// peersh 用 NodeID 代替主机名：目标节点可能在局域网、云上或
// 私有网络里，peersh 通过多条发现路径找到它的候选地址，对每个
// 候选主机并发启动连接命令（默认 ssh）竞速，第一个成功的获胜。
//
// # 核心概念
//
// peersh 围绕三个核心概念构建：
//
//   - Session: 一次定位并连接的会话，用户交互的主入口
//   - 发现路径: mDNS（局域网）、DHT（广域网）、已知节点（静态配置）
//   - 连接竞速: 候选主机并发尝试，按策略判定首个成功者
//
// # 快速开始
//
//	import "github.com/dep2p/go-peersh"
//
//	// 一步连接：定位目标并执行 ssh，交互会话结束后返回
//	err := peersh.Connect(ctx, targetID,
//	    peersh.WithCommand("ssh", "-p", "2222"),
//	    peersh.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// 需要更多控制时分步使用：
//
//	sess, err := peersh.New(targetID,
//	    peersh.WithKnownPeer(targetID, "/ip4/203.0.113.7/tcp/22"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close()
//
//	if err := sess.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("winner:", sess.Result().Winner.Host)
//
// # 定位流程
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  1. API Layer                                               │
//	│     peersh.New(), peersh.Connect()                          │
//	│     用户入口，配置选项                                        │
//	├─────────────────────────────────────────────────────────────┤
//	│  2. Resolve Layer                                           │
//	│     Resolver, AddressCache, QueryThrottle                   │
//	│     解析循环：聚合发现事件，节流 DHT 查询                      │
//	├─────────────────────────────────────────────────────────────┤
//	│  3. Discovery Layer                                         │
//	│     mDNS, DHT, Static                                       │
//	│     多路径并行发现目标节点地址                                 │
//	├─────────────────────────────────────────────────────────────┤
//	│  4. Connector Layer                                         │
//	│     Dispatcher, Runner                                      │
//	│     候选主机并发连接竞速                                       │
//	└─────────────────────────────────────────────────────────────┘
//
// # 文件组织
//
// 本包按功能领域组织代码：
//
//	peersh/
//	├── peersh.go             # 版本信息
//	├── doc.go                # 包文档
//	├── session.go            # Session 结构、New()、Run()、Connect()
//	├── fx.go                 # 组件装配（条件加载发现模块）
//	├── options.go            # WithXxx 配置选项
//	└── errors.go             # 错误定义
//
// # 成功判定策略
//
// 连接命令的获胜条件由策略决定：
//
//	peersh.PolicyZeroExit  命令退出码为零才算成功（默认）
//	peersh.PolicyAnySpawn  命令成功启动即算成功，适合交互式会话
//
// # 更多资源
//
//   - 使用示例: examples/
//   - 命令行工具: cmd/peersh
//
// # 版本
//
// 当前版本: v0.1.0
//
// 更多信息请访问: https://github.com/dep2p/go-peersh
package peersh
