// Package interfaces 定义 peersh 公共接口
//
// 接口按文件组织（一个接口文件 = 一个实现目录）：
//   - dht.go        - DHT 查询接口（internal/discovery/dhtadapter 适配）
//   - discovery.go  - 发现源接口（internal/discovery/mdns、internal/discovery/static）
//   - dispatcher.go - 连接调度接口（internal/connector 实现）
//   - shell.go      - 外部连接命令的进程接口（internal/connector 消费）
//
// 核心解析器（internal/resolve）只消费这些接口，不依赖任何具体实现，
// 测试时可以用进程内伪实现替换全部协作方。
package interfaces
