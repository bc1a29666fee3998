// Package connector 实现连接调度与外部命令执行
//
// 调度器（Dispatcher）接收一批候选主机，在并发上限内为每个主机
// 启动一个连接命令进程并竞速。成功判定由策略决定：
//
//   - zero-exit: 进程以零状态退出才算成功（默认）
//   - any-spawn: 进程成功启动即算成功
//
// 第一个按策略胜出的尝试定胜负，其余在途尝试随即撤销；
// 单个主机启动失败不终止本轮，只记入聚合原因。所有候选耗尽
// 仍无胜者时，本轮以聚合错误收场。
//
// 每轮 Dispatch 恰好产生一个结果，经 Done 通道送回解析循环。
package connector
