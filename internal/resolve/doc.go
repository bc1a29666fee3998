// Package resolve 实现目标节点的解析循环
//
// 解析器围绕一个目标 NodeID 工作，将各发现源（mDNS、DHT、静态配置）
// 上报的地址汇入地址缓存，在缓存命中后提取候选主机并交给连接调度器。
// 整个过程是一个轮询驱动的状态机：
//
//	NoInfo ──查询──▶ Querying ──发现──▶ Ready ──调度──▶ Connecting ──▶ Done
//
// 轮询步骤的顺序是关键不变量：
//  1. 注册唤醒通道（单槽、注册即替换），先于一切读取
//  2. 读取目标的缓存地址
//  3. 缓存为空且允许查询：发起 DHT 查询并挂起
//  4. 缓存为空且冷却中：挂起（附带冷却定时器）
//  5. 缓存非空：提取主机、过滤回环、启动连接调度
//
// 先注册后读取保证了事件在读取与挂起之间到达时不会丢失唤醒。
// DHT 查询受节流控制：冷却期内最多一次；在途查询经过一个完整
// 冷却期仍无答复即视为已结算，下一次轮询重发。
// 地址缓存从不淘汰条目（一次性工具），并且永不存储自身节点的地址。
package resolve
