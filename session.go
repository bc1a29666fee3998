package peersh

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-peersh/config"
	"github.com/dep2p/go-peersh/internal/core/identity"
	"github.com/dep2p/go-peersh/internal/resolve"
	"github.com/dep2p/go-peersh/internal/util/addrutil"
	"github.com/dep2p/go-peersh/pkg/interfaces"
	"github.com/dep2p/go-peersh/pkg/lib/log"
	"github.com/dep2p/go-peersh/pkg/types"
)

var logger = log.Logger("peersh")

// ════════════════════════════════════════════════════════════════════════════
//                              会话状态
// ════════════════════════════════════════════════════════════════════════════

// SessionState 会话状态
//
// 表示会话在生命周期中的当前阶段。
type SessionState int

const (
	// StateIdle 空闲状态（已创建，未运行）
	StateIdle SessionState = iota

	// StateResolving 解析中（定位目标节点并尝试连接）
	StateResolving

	// StateConnected 已连接（连接命令获胜，交互会话进行中）
	StateConnected

	// StateClosed 已关闭（Run 返回或 Close 调用后）
	StateClosed
)

// String 返回状态的字符串表示
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// 生命周期超时配置
const (
	// startTimeout 组件启动超时（Fx App Start）
	startTimeout = 15 * time.Second

	// stopTimeout 组件停止超时（Fx App Stop）
	stopTimeout = 5 * time.Second
)

// ════════════════════════════════════════════════════════════════════════════
//                              会话
// ════════════════════════════════════════════════════════════════════════════

// Session 一次定位并连接目标节点的会话
//
// Session 是用户与 peersh 交互的主入口。
// 它是一个门面（Facade），聚合了所有内部组件。
//
// 架构层次：
//   - API Layer: Session (本层，用户直接交互)
//   - Resolve Layer: Resolver（解析循环、地址缓存、查询节流）
//   - Discovery Layer: mDNS、DHT、静态节点
//   - Connector Layer: Dispatcher（并发连接竞速）、Runner（进程执行）
//
// Session 是一次性的：Run 返回或 Close 调用后不能再次运行。
//
// 使用示例：
//
//	sess, err := peersh.New(targetID,
//	    peersh.WithCommand("ssh", "-p", "2222"),
//	    peersh.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close()
//
//	// 定位目标并连接，交互会话结束后返回
//	if err := sess.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
type Session struct {
	// ────────────────────────────────────────────────────────────────────────
	// 配置
	// ────────────────────────────────────────────────────────────────────────

	// target 目标节点 ID
	target types.NodeID

	// cfg 统一配置
	cfg *config.Config

	// app Fx 应用
	app *fx.App

	// ────────────────────────────────────────────────────────────────────────
	// 核心组件（由 Fx 注入）
	// ────────────────────────────────────────────────────────────────────────

	// identity 本节点身份
	identity *identity.Identity

	// resolver 解析循环
	resolver *resolve.Resolver

	// ────────────────────────────────────────────────────────────────────────
	// 生命周期状态
	// ────────────────────────────────────────────────────────────────────────

	mu        sync.Mutex
	state     SessionState
	started   bool
	closed    bool
	runCancel context.CancelFunc
	result    *interfaces.DispatchResult
}

// ════════════════════════════════════════════════════════════════════════════
//                              构造函数
// ════════════════════════════════════════════════════════════════════════════

// New 创建会话
//
// 创建会话但不启动，需要调用 Run() 执行定位和连接。
// target 接受两种形式：
//   - 裸 NodeID（Base58 编码）
//   - 以 /p2p/<NodeID> 结尾的完整地址，地址部分自动作为已知地址使用
//
// 示例：
//
//	sess, err := peersh.New("4Xa9...pQz",
//	    peersh.WithCommand("ssh"),
//	    peersh.WithKnownPeer("4Xa9...pQz", "/ip4/203.0.113.7/tcp/22"),
//	)
func New(target string, opts ...Option) (*Session, error) {
	if target == "" {
		return nil, ErrMissingTarget
	}

	// 应用选项
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	// 解析目标标识
	id, dialAddr, err := parseTarget(target)
	if err != nil {
		return nil, err
	}

	// 合并配置
	cfg, err := o.toConfig()
	if err != nil {
		return nil, err
	}
	if dialAddr != "" {
		cfg.KnownPeers = append(cfg.KnownPeers, config.KnownPeer{
			PeerID: id.String(),
			Addrs:  []string{dialAddr},
		})
	}

	// 创建 Session 实例
	sess := &Session{
		target: id,
		cfg:    cfg,
		state:  StateIdle,
	}

	// 构建 Fx 应用（组件在此阶段构造，构造失败立即返回）
	app, err := buildApp(cfg, id, o, sess)
	if err != nil {
		return nil, err
	}
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("build app: %w", err)
	}
	sess.app = app

	return sess, nil
}

// Connect 快捷连接函数
//
// 创建会话并运行直至远端命令结束。
// 等价于 New() + Run() + Close()。
//
// 示例：
//
//	err := peersh.Connect(ctx, targetID, peersh.WithCommand("ssh"))
func Connect(ctx context.Context, target string, opts ...Option) error {
	sess, err := New(target, opts...)
	if err != nil {
		return err
	}
	defer sess.Close()
	return sess.Run(ctx)
}

// parseTarget 解析目标标识
//
// 完整地址形式返回拨号部分，供静态发现源直接使用。
func parseTarget(target string) (types.NodeID, string, error) {
	if strings.Contains(target, "/p2p/") {
		id, dial, err := addrutil.ParseFullAddr(target)
		if err != nil {
			return types.EmptyNodeID, "", fmt.Errorf("%w: %w", ErrInvalidTarget, err)
		}
		return id, dial, nil
	}
	id, err := types.ParseNodeID(target)
	if err != nil {
		return types.EmptyNodeID, "", fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	return id, "", nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              运行
// ════════════════════════════════════════════════════════════════════════════

// Run 定位目标节点并建立连接
//
// 阻塞直至以下之一发生：
//   - zero-exit 策略：获胜的连接命令退出
//   - any-spawn 策略：交互式远端命令结束
//   - 解析超时（WithTimeout）或 ctx 取消
//   - 解析终态失败（所有候选主机的尝试均失败）
//
// Run 返回后会话进入关闭状态，不能再次运行。
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.started = true
	s.state = StateResolving
	runCtx, cancel := context.WithCancel(ctx)
	s.runCancel = cancel
	s.mu.Unlock()
	defer cancel()

	// 启动所有组件（发现源开始产生事件）
	startCtx, startCancel := context.WithTimeout(runCtx, startTimeout)
	err := s.app.Start(startCtx)
	startCancel()
	if err != nil {
		s.shutdown()
		return fmt.Errorf("start components: %w", err)
	}
	defer s.shutdown()

	logger.Info("开始定位目标节点",
		"target", s.target.ShortString(),
		"self", s.ID().ShortString())

	// 解析超时只约束定位阶段
	resolveCtx := runCtx
	if d := s.cfg.Resolve.Timeout.Duration(); d > 0 {
		var resolveCancel context.CancelFunc
		resolveCtx, resolveCancel = context.WithTimeout(runCtx, d)
		defer resolveCancel()
	}

	if err := s.resolver.Run(resolveCtx); err != nil {
		if resolveCtx.Err() != nil && runCtx.Err() == nil {
			return fmt.Errorf("resolve timed out after %s: %w",
				s.cfg.Resolve.Timeout.Duration(), err)
		}
		return err
	}

	res := s.resolver.Result()
	if res == nil {
		return ErrNoConnection
	}
	s.mu.Lock()
	s.result = res
	s.state = StateConnected
	s.mu.Unlock()

	// zero-exit 策略下进程已退出，Wait 立即返回缓存结果；
	// any-spawn 策略下这里一直等到远端命令结束。
	if res.Proc != nil {
		return s.waitShell(runCtx, res.Proc)
	}
	return nil
}

// waitShell 等待远端命令结束
func (s *Session) waitShell(ctx context.Context, proc interfaces.Process) error {
	done := make(chan error, 1)
	go func() {
		done <- proc.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("remote command: %w", err)
		}
		return nil
	case <-ctx.Done():
		_ = proc.Kill()
		<-done
		return ctx.Err()
	}
}

// Close 关闭会话并停止所有组件
//
// 幂等。Run 正在进行时会中断定位和交互会话。
func (s *Session) Close() error {
	s.mu.Lock()
	if s.runCancel != nil {
		s.runCancel()
	}
	s.mu.Unlock()

	s.shutdown()
	return nil
}

// shutdown 停止 Fx 应用，只执行一次
func (s *Session) shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.state = StateClosed
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := s.app.Stop(ctx); err != nil {
		logger.Warn("停止组件时出错", "error", err)
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              基本信息
// ════════════════════════════════════════════════════════════════════════════

// ID 返回本节点 ID
//
// 节点 ID 由身份密钥的公钥派生而来，全局唯一。
func (s *Session) ID() types.NodeID {
	if s.identity == nil {
		return types.EmptyNodeID
	}
	return s.identity.ID()
}

// Target 返回目标节点 ID
func (s *Session) Target() types.NodeID {
	return s.target
}

// State 返回当前会话状态
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result 返回胜出的调度结果
//
// 连接建立前返回 nil。
func (s *Session) Result() *interfaces.DispatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}
