package mdns

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-peersh/config"
	"github.com/dep2p/go-peersh/internal/util/addrutil"
	"github.com/dep2p/go-peersh/pkg/interfaces"
	"github.com/dep2p/go-peersh/pkg/lib/log"
	"github.com/dep2p/go-peersh/pkg/lib/multiaddr"
	"github.com/dep2p/go-peersh/pkg/lib/zeroconf"
	"github.com/dep2p/go-peersh/pkg/types"
)

var logger = log.Logger("discovery/mdns")

const (
	// DNSAddrPrefix TXT 记录中地址条目的前缀
	DNSAddrPrefix = "dnsaddr="

	// MDNSDomain mDNS 固定域名
	MDNSDomain = "local"

	// sourceName 发现事件的来源标签
	sourceName = types.SourceMDNS

	// eventBuffer 发现事件通道容量
	eventBuffer = 100

	// entryBuffer 原始 mDNS 记录通道容量
	//
	// 局域网内节点较多时 浏览端短时间内可能收到大量记录，
	// 缓冲避免阻塞底层接收循环。
	entryBuffer = 1000
)

// 通告端状态
const (
	StateWaiting int32 = iota // 等待可用地址
	StateRunning              // 广播中
	StateStopped              // 已停止
)

// MDNS 局域网多播发现源
//
// 同时承担两个角色：
//   - 通告端：把本机地址编码进 TXT 记录，以随机实例名注册 mDNS 服务
//   - 浏览端：监听同一服务标签下其他节点的通告，产出发现事件
//
// 实现 interfaces.PeerSource。
type MDNS struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg   config.MDNSConfig
	ownID types.NodeID

	// announceAddrs 显式指定的通告地址（不含 /p2p/ 后缀）
	// 为空时扫描本机网络接口自动生成
	announceAddrs []string

	resolver *zeroconf.Resolver
	server   *zeroconf.Server
	peerName string

	events  chan types.PeerInfo
	notifee *peerNotifee

	started atomic.Bool
	closed  atomic.Bool
	state   atomic.Int32
	mu      sync.Mutex
	wg      sync.WaitGroup
}

var _ interfaces.PeerSource = (*MDNS)(nil)

// New 创建 mDNS 发现源
//
// 浏览端套接字在此处立即打开：组播环境不可用时（无网络接口、
// 权限不足）构造直接失败，调用方据此决定是否降级到其他发现源。
//
// announceAddrs 为额外通告地址；为空时自动扫描本机接口，
// 按 /ip4/<ip>/tcp/<AdvertisePort> 生成。
func New(cfg config.MDNSConfig, ownID types.NodeID, announceAddrs []string) (*MDNS, error) {
	if ownID.IsEmpty() {
		return nil, ErrEmptyOwnID
	}
	if cfg.ServiceTag == "" || cfg.Interval.Duration() <= 0 {
		return nil, fmt.Errorf("%w: service_tag=%q interval=%v",
			ErrInvalidConfig, cfg.ServiceTag, cfg.Interval.Duration())
	}
	if cfg.AdvertisePort < 0 || cfg.AdvertisePort > 65535 {
		return nil, fmt.Errorf("%w: advertise_port=%d", ErrInvalidConfig, cfg.AdvertisePort)
	}

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolverStart, err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &MDNS{
		ctx:           ctx,
		cancel:        cancel,
		cfg:           cfg,
		ownID:         ownID,
		announceAddrs: announceAddrs,
		resolver:      resolver,
		peerName:      randomString(32 + rand.Intn(32)), //nolint:gosec // G404: 实例名不需要加密级随机
		events:        make(chan types.PeerInfo, eventBuffer),
	}
	m.notifee = newPeerNotifee(ctx, ownID, m.events)

	return m, nil
}

// Name 实现 interfaces.PeerSource
func (m *MDNS) Name() string {
	return sourceName
}

// Events 实现 interfaces.PeerSource
//
// 通道在 Stop 完成后关闭。
func (m *MDNS) Events() <-chan types.PeerInfo {
	return m.events
}

// Start 启动通告端与浏览端
//
// 通告端拿不到可用地址时进入等待状态并周期性重试，
// 浏览端始终启动。重复调用返回 ErrAlreadyStarted。
func (m *MDNS) Start(_ context.Context) error {
	if m.closed.Load() {
		return ErrAlreadyClosed
	}
	if m.started.Swap(true) {
		return ErrAlreadyStarted
	}

	logger.Info("mDNS 发现源启动中",
		"serviceTag", m.cfg.ServiceTag,
		"interval", m.cfg.Interval.Duration(),
		"peerName", m.peerName[:8])

	if err := m.startServer(); err != nil {
		logger.Warn("mDNS 通告端启动失败", "error", err)
	}

	entryCh := make(chan *zeroconf.ServiceEntry, entryBuffer)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		// Browse 阻塞到 ctx 取消，返回前关闭 entryCh
		if err := m.resolver.Browse(m.ctx, m.cfg.ServiceTag, MDNSDomain, entryCh); err != nil && m.ctx.Err() == nil {
			logger.Warn("mDNS 浏览端退出", "error", err)
		}
	}()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer close(m.events)
		for entry := range entryCh {
			m.notifee.handleEntry(entry)
		}
	}()

	// 通告端处于等待状态时按 Interval 重试，本机拿到地址后自动转入广播
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.serverRetryLoop()
	}()

	logger.Info("mDNS 发现源已启动", "state", stateString(m.state.Load()))
	return nil
}

// Stop 停止发现源并关闭事件通道
//
// 幂等。注销 mDNS 服务（发送 goodbye 报文）、取消浏览端，
// 最多等待 2 秒让后台 goroutine 退出。
func (m *MDNS) Stop(_ context.Context) error {
	if m.closed.Swap(true) {
		return nil
	}

	m.state.Store(StateStopped)
	m.notifee.close()
	m.cancel()

	m.mu.Lock()
	if m.server != nil {
		m.server.Shutdown()
		m.server = nil
	}
	m.mu.Unlock()

	if !m.started.Load() {
		// 从未启动：没有 goroutine 持有 events，这里直接关闭
		close(m.events)
		return nil
	}

	// Browse 在 ctx 取消后可能需要数秒退出，限时等待避免拖住关闭流程
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Debug("mDNS 全部 goroutine 已退出")
	case <-time.After(2 * time.Second):
		logger.Debug("mDNS 停止等待超时，goroutine 在后台继续清理")
	}

	return nil
}

// State 返回通告端状态
func (m *MDNS) State() int32 {
	return m.state.Load()
}

// IsWaiting 返回通告端是否在等待可用地址
func (m *MDNS) IsWaiting() bool {
	return m.state.Load() == StateWaiting
}

func stateString(s int32) string {
	switch s {
	case StateWaiting:
		return "waiting_for_addr"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ════════════════════════════════════════════════════════════════════════════
// 通告端
// ════════════════════════════════════════════════════════════════════════════

// startServer 启动 mDNS 通告
//
// 优雅降级：没有可通告地址时进入 Waiting 状态而非报错，
// serverRetryLoop 之后周期性重试。
func (m *MDNS) startServer() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.server != nil {
		return nil
	}
	if m.state.Load() == StateStopped {
		return ErrAlreadyClosed
	}

	dialAddrs := m.collectDialAddrs()
	if len(dialAddrs) == 0 {
		logger.Debug("无可通告地址，进入等待状态")
		m.state.Store(StateWaiting)
		return nil
	}

	// 补全 /p2p/<nodeID> 后缀并过滤不适合多播通告的形式
	var fullAddrs []string
	for _, addr := range dialAddrs {
		full := addr
		if !addrutil.HasPeerID(addr) {
			built, err := addrutil.BuildFullAddr(addr, m.ownID)
			if err != nil {
				logger.Debug("跳过无法补全的地址", "addr", addr, "error", err)
				continue
			}
			full = built
		}
		if !isSuitableForMDNS(full) {
			logger.Debug("跳过不适合通告的地址", "addr", full)
			continue
		}
		fullAddrs = append(fullAddrs, full)
	}
	if len(fullAddrs) == 0 {
		m.state.Store(StateWaiting)
		return nil
	}

	txts := make([]string, 0, len(fullAddrs))
	for _, addr := range fullAddrs {
		txts = append(txts, DNSAddrPrefix+addr)
	}

	ips := extractAnnounceIPs(dialAddrs)
	if len(ips) == 0 {
		m.state.Store(StateWaiting)
		return nil
	}

	server, err := zeroconf.RegisterProxy(
		m.peerName,
		m.cfg.ServiceTag,
		MDNSDomain,
		m.cfg.AdvertisePort,
		m.peerName,
		ips,
		txts,
		nil, // nil = 所有组播接口
	)
	if err != nil {
		return err
	}

	m.server = server
	m.state.Store(StateRunning)
	logger.Info("mDNS 通告已注册",
		"addrs", len(fullAddrs),
		"port", m.cfg.AdvertisePort)
	return nil
}

// serverRetryLoop 在 Waiting 状态下按 Interval 重试通告端
//
// 场景：节点启动时网线未插或 DHCP 未完成，地址就绪后自动开播。
func (m *MDNS) serverRetryLoop() {
	ticker := time.NewTicker(m.cfg.Interval.Duration())
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if m.state.Load() != StateWaiting {
				continue
			}
			if err := m.startServer(); err != nil {
				logger.Debug("mDNS 通告重试失败", "error", err)
			}
		}
	}
}

// collectDialAddrs 汇总要通告的拨号地址（不含 /p2p/ 后缀）
//
// 显式地址中的通配符按本机接口展开；
// 没有显式地址时按接口 IP 生成 /ip4/<ip>/tcp/<AdvertisePort>。
func (m *MDNS) collectDialAddrs() []string {
	if len(m.announceAddrs) > 0 {
		return expandWildcardAddrs(m.announceAddrs)
	}

	localIPs := getLocalInterfaceIPs()
	if len(localIPs) == 0 {
		return nil
	}

	addrs := make([]string, 0, len(localIPs))
	for _, ip := range localIPs {
		if ip.To4() != nil {
			addrs = append(addrs, fmt.Sprintf("/ip4/%s/tcp/%d", ip, m.cfg.AdvertisePort))
		} else {
			addrs = append(addrs, fmt.Sprintf("/ip6/%s/tcp/%d", ip, m.cfg.AdvertisePort))
		}
	}
	return addrs
}

// extractAnnounceIPs 从拨号地址中提取注册用 IP（首个 IPv4 与首个 IPv6）
func extractAnnounceIPs(addrs []string) []string {
	var v4, v6 string
	for _, addr := range addrs {
		ip := addrutil.ExtractIP(addr)
		if ip == nil {
			continue
		}
		if ip.To4() != nil {
			if v4 == "" {
				v4 = ip.String()
			}
		} else if v6 == "" {
			v6 = ip.String()
		}
	}

	var ips []string
	if v4 != "" {
		ips = append(ips, v4)
	}
	if v6 != "" {
		ips = append(ips, v6)
	}
	return ips
}

// expandWildcardAddrs 把 0.0.0.0 / :: 通配地址展开为本机接口地址
//
// 例如 /ip4/0.0.0.0/tcp/22 展开为：
//   - /ip4/192.168.1.100/tcp/22
//   - /ip4/10.0.0.5/tcp/22
func expandWildcardAddrs(addrs []string) []string {
	var localIPs []net.IP
	needLocal := false
	for _, addr := range addrs {
		if strings.Contains(addr, "/ip4/0.0.0.0/") || strings.Contains(addr, "/ip6/::/") {
			needLocal = true
			break
		}
	}
	if needLocal {
		localIPs = getLocalInterfaceIPs()
	}

	var result []string
	for _, addr := range addrs {
		switch {
		case strings.Contains(addr, "/ip4/0.0.0.0/"):
			for _, ip := range localIPs {
				if ip.To4() != nil {
					result = append(result, strings.Replace(addr, "/ip4/0.0.0.0/", "/ip4/"+ip.String()+"/", 1))
				}
			}
		case strings.Contains(addr, "/ip6/::/"):
			for _, ip := range localIPs {
				if ip.To4() == nil && ip.To16() != nil {
					result = append(result, strings.Replace(addr, "/ip6/::/", "/ip6/"+ip.String()+"/", 1))
				}
			}
		default:
			result = append(result, addr)
		}
	}
	return result
}

// getLocalInterfaceIPs 获取本机适合对外通告的接口 IP
//
// 过滤回环、链路本地、未指定地址，以及只对本机容器可达的
// 虚拟网桥接口地址。
func getLocalInterfaceIPs() []net.IP {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}

	var ips []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if isVirtualBridgeInterface(iface.Name) {
			logger.Debug("跳过虚拟网桥接口", "interface", iface.Name)
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil {
				continue
			}
			if ip.IsLoopback() {
				continue
			}
			if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
				continue
			}
			if ip.IsUnspecified() {
				continue
			}
			if !isValidAnnounceIP(ip) {
				continue
			}
			ips = append(ips, ip)
		}
	}
	return ips
}

// isVirtualBridgeInterface 判断接口是否为容器/虚拟化网桥
//
//   - docker0 / docker_gwbridge: Docker 网桥
//   - br-*: Docker 自定义网络网桥
//   - veth*: 容器虚拟以太网设备
//   - cni* / flannel* / calico* / weave*: Kubernetes 网络插件接口
//   - virbr*: libvirt/KVM 虚拟网桥
//   - lxcbr* / lxdbr*: LXC/LXD 容器网桥
//
// 这些接口的地址只对本机容器或虚拟机可达，通告出去没有意义。
func isVirtualBridgeInterface(name string) bool {
	if name == "docker0" || name == "docker_gwbridge" {
		return true
	}
	for _, prefix := range []string{
		"br-", "veth",
		"cni", "flannel", "calico", "weave",
		"virbr", "lxcbr", "lxdbr",
	} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// isValidAnnounceIP 判断 IP 是否适合对外通告
//
//   - 198.18.0.0/15: RFC 2544 基准测试地址，VPN/代理软件
//     （Surge、Clash 等）常用作虚拟接口，只在本机有效
//   - 100.64.0.0/10: RFC 6598 运营商级 NAT 地址，对局域网节点不可达
func isValidAnnounceIP(ip net.IP) bool {
	ip4 := ip.To4()
	if ip4 == nil {
		return true
	}
	if ip4[0] == 198 && (ip4[1] == 18 || ip4[1] == 19) {
		return false
	}
	if ip4[0] == 100 && ip4[1] >= 64 && ip4[1] <= 127 {
		return false
	}
	return true
}

// isSuitableForMDNS 判断地址是否适合放进 mDNS TXT 记录
//
// IP 地址直接放行；DNS 名称仅限 .local 域（mDNS 语境下其他
// 域名无法保证局域网可解析）；websocket 等派生传输不通告。
func isSuitableForMDNS(addr string) bool {
	ma, err := multiaddr.NewMultiaddr(addr)
	if err != nil {
		return false
	}

	hasHost := false
	suitable := true
	multiaddr.ForEach(ma, func(c multiaddr.Component) bool {
		switch c.Protocol().Code {
		case multiaddr.P_IP4, multiaddr.P_IP6:
			hasHost = true
		case multiaddr.P_DNS, multiaddr.P_DNS4, multiaddr.P_DNS6:
			if !strings.HasSuffix(c.Value(), ".local") {
				suitable = false
				return false
			}
			hasHost = true
		case multiaddr.P_WS:
			suitable = false
			return false
		}
		return true
	})
	return hasHost && suitable
}

// randomString 生成小写字母加数字的随机实例名
func randomString(l int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, l)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))] //nolint:gosec // G404
	}
	return string(b)
}
