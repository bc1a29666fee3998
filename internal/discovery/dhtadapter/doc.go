// Package dhtadapter 把 DHT 接入解析循环
//
// 解析器只通过 pkg/interfaces.DHT 消费分布式哈希表：发起最近
// 节点查询、注入本地发现的地址、触发重新引导。真实的 Kademlia
// 网络属于外部协作方，不在本仓库实现。
//
// 本包提供 Table：一个内存种子表实现。它维护 NodeID 到地址
// 列表的映射，查询命中时异步回报事件，未命中回报空事件表示
// 本轮查询结束。解析器把本地发现的地址通过 AddAddress 写回，
// Bootstrap 把整表重播一遍，局域网可见的节点因此兼任引导点。
//
// 适用场景：
//   - 库用法与示例（预先播种已知地址）
//   - 测试（确定性的查询结果）
//   - 无外部 DHT 的部署（静态地址簿充当查询后端）
//
// 接入真实 DHT 时实现 interfaces.DHT 并在装配时替换即可。
package dhtadapter
