// Package zeroconf 实现 mDNS 服务注册与浏览（RFC 6762 / DNS-SD）
//
// 提供两个入口：
//
//   - RegisterProxy 注册一个服务实例并在组播组内应答查询、
//     周期通告，用于让局域网内其他节点发现自己
//   - NewResolver + Browse 浏览指定服务类型，把发现的实例
//     送入调用方提供的通道
//
// 报文编解码基于 github.com/miekg/dns，组播套接字基于
// golang.org/x/net 的 ipv4/ipv6 控制层。服务实例按
// <instance>.<service>.<domain>. 命名，地址通告依靠
// TXT 记录承载，内容由上层约定。
package zeroconf
