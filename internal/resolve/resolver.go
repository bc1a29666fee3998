package resolve

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-peersh/internal/metrics"
	"github.com/dep2p/go-peersh/pkg/interfaces"
	"github.com/dep2p/go-peersh/pkg/lib/log"
	"github.com/dep2p/go-peersh/pkg/types"
)

var logger = log.Logger("resolve")

// ════════════════════════════════════════════════════════════════════════════
//                              解析状态
// ════════════════════════════════════════════════════════════════════════════

// State 解析状态
type State int32

const (
	// StateNoInfo 尚无目标地址
	StateNoInfo State = iota

	// StateQuerying DHT 查询在途
	StateQuerying

	// StateReady 已有候选地址
	StateReady

	// StateConnecting 连接尝试进行中
	StateConnecting

	// StateDone 连接已建立
	StateDone

	// StateRetrying 地址曾就绪后又读空（容忍态，正常流程不出现）
	StateRetrying
)

// String 返回状态的字符串表示
func (s State) String() string {
	switch s {
	case StateNoInfo:
		return "no_info"
	case StateQuerying:
		return "querying"
	case StateReady:
		return "ready"
	case StateConnecting:
		return "connecting"
	case StateDone:
		return "done"
	case StateRetrying:
		return "retrying"
	default:
		return "unknown"
	}
}

// Decision 一次轮询的裁决
type Decision struct {
	// State 轮询后的状态
	State State

	// Wake 唤醒通道
	//
	// 非终态时调用方应在该通道上挂起，事件到达时收到信号。
	Wake <-chan struct{}

	// RetryIn 冷却剩余时间
	//
	// 大于 0 时调用方应额外起一个定时器，保证冷却期满后
	// 即使没有任何事件也会再次轮询（下一次获准的查询按时发出）。
	RetryIn time.Duration
}

// ════════════════════════════════════════════════════════════════════════════
//                              Resolver
// ════════════════════════════════════════════════════════════════════════════

// Deps 解析器的协作方与参数
type Deps struct {
	// DHT DHT 协作方（可为 nil，纯本地发现）
	DHT interfaces.DHT

	// Sources 发现源（mDNS、静态配置等）
	Sources []interfaces.PeerSource

	// Dispatcher 连接调度器（必需）
	Dispatcher interfaces.Dispatcher

	// Clock 时钟（缺省为真实时钟，测试注入 mock）
	Clock clock.Clock

	// Cooldown DHT 查询冷却时间（缺省 DefaultQueryCooldown）
	Cooldown time.Duration

	// Metrics 指标（可选）
	Metrics *metrics.Metrics
}

// Resolver 目标节点解析器
//
// 汇聚各发现源的地址，驱动查询-发现-连接的状态机。
// 并发模型：事件泵 goroutine 只写缓存和唤醒原语，
// 状态机本身只在 Poll 调用方的 goroutine 上推进。
type Resolver struct {
	target types.NodeID
	self   types.NodeID

	cache    *addressCache
	throttle *queryThrottle
	waker    *Waker

	dht        interfaces.DHT
	sources    []interfaces.PeerSource
	dispatcher interfaces.Dispatcher

	clk      clock.Clock
	cooldown time.Duration
	metrics  *metrics.Metrics

	state   atomic.Int32
	started atomic.Bool
	closed  atomic.Bool

	mu      sync.Mutex
	result  *interfaces.DispatchResult
	final   *interfaces.DispatchResult
	termErr error

	runCtx context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New 创建解析器
//
// 定位自身没有意义（地址缓存永不服务自身节点），
// target 等于 self 时构造即失败。
func New(target, self types.NodeID, deps Deps) (*Resolver, error) {
	if target.IsEmpty() {
		return nil, ErrEmptyTarget
	}
	if target.Equal(self) {
		return nil, ErrTargetIsSelf
	}
	if deps.Dispatcher == nil {
		return nil, ErrNilDispatcher
	}

	clk := deps.Clock
	if clk == nil {
		clk = clock.New()
	}
	cooldown := deps.Cooldown
	if cooldown <= 0 {
		cooldown = DefaultQueryCooldown
	}

	r := &Resolver{
		target:     target,
		self:       self,
		cache:      newAddressCache(self),
		throttle:   newQueryThrottle(clk, cooldown),
		waker:      NewWaker(),
		dht:        deps.DHT,
		sources:    deps.Sources,
		dispatcher: deps.Dispatcher,
		clk:        clk,
		cooldown:   cooldown,
		metrics:    deps.Metrics,
	}
	r.state.Store(int32(StateNoInfo))
	return r, nil
}

// Target 返回目标节点 ID
func (r *Resolver) Target() types.NodeID {
	return r.target
}

// State 返回当前解析状态
func (r *Resolver) State() State {
	return State(r.state.Load())
}

// Result 返回胜出的调度结果。
// 解析进入 Done 之前返回 nil；进入 Done 后结果保持不变。
// 任意模式下 Result().Proc 是仍在运行的远端进程，调用方负责等待其退出。
func (r *Resolver) Result() *interfaces.DispatchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.final
}

func (r *Resolver) storeState(s State) {
	r.state.Store(int32(s))
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期
// ════════════════════════════════════════════════════════════════════════════

// Start 启动事件泵
//
// 为每个发现源、DHT 事件流和调度完成通道各起一个泵 goroutine，
// 事件统一汇入缓存并唤醒解析循环。
func (r *Resolver) Start(ctx context.Context) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if r.started.Swap(true) {
		return ErrAlreadyStarted
	}

	r.runCtx, r.cancel = context.WithCancel(context.Background())

	for _, src := range r.sources {
		r.wg.Add(1)
		go r.pumpSource(src)
	}
	if r.dht != nil {
		r.wg.Add(1)
		go r.pumpDHT()
	}
	r.wg.Add(1)
	go r.pumpDispatch()

	logger.Debug("解析器已启动",
		"target", r.target.ShortString(),
		"sources", len(r.sources),
		"dht", r.dht != nil)
	return nil
}

// Stop 停止事件泵
//
// 幂等。等待泵退出，最多 2 秒。
func (r *Resolver) Stop(ctx context.Context) error {
	if !r.started.Load() {
		return nil
	}
	if r.closed.Swap(true) {
		return nil
	}

	r.cancel()
	r.waker.Wake()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(2 * time.Second):
		logger.Warn("等待事件泵退出超时")
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              解析循环
// ════════════════════════════════════════════════════════════════════════════

// Poll 推进一次状态机
//
// 步骤顺序是不变量（见包文档）：注册唤醒通道必须先于读取缓存。
// 返回 Pending 态裁决时调用方在 Wake（及可选的 RetryIn 定时器）上
// 挂起；StateDone 表示连接已建立；错误均为终态。
func (r *Resolver) Poll(ctx context.Context) (Decision, error) {
	if r.closed.Load() {
		return Decision{}, ErrClosed
	}
	if err := r.terminalError(); err != nil {
		return Decision{}, err
	}

	// 1. 先注册唤醒通道，再读任何状态，封死丢失唤醒的窗口
	wake := r.waker.Register()

	switch State(r.state.Load()) {
	case StateDone:
		return Decision{State: StateDone}, nil

	case StateConnecting:
		// 连接尝试进行中：只看调度结果
		res := r.takeResult()
		if res == nil {
			return Decision{State: StateConnecting, Wake: wake}, nil
		}
		if res.Succeeded() {
			r.mu.Lock()
			r.final = res
			r.mu.Unlock()
			r.storeState(StateDone)
			logger.Info("连接已建立", "host", res.Winner.Host, "source", res.Winner.Source)
			return Decision{State: StateDone}, nil
		}
		// 所有尝试都失败：解析结束但没有连接，终态
		logger.Error("所有连接尝试均失败", "target", r.target.ShortString(), "error", res.Err)
		if res.Err != nil {
			return r.fail(fmt.Errorf("%w: %w", ErrNoConnection, res.Err))
		}
		return r.fail(ErrNoConnection)
	}

	// 2. 读取目标的缓存地址
	records := r.cache.addressesOf(r.target)

	if len(records) == 0 {
		return r.pollEmpty(ctx, wake)
	}
	return r.pollReady(ctx, wake, records)
}

// pollEmpty 缓存为空时的轮询分支（步骤 3 和 4）
func (r *Resolver) pollEmpty(ctx context.Context, wake <-chan struct{}) (Decision, error) {
	// 曾经就绪后又读空：容忍并回到查询流程
	if st := State(r.state.Load()); st == StateReady {
		r.storeState(StateRetrying)
		logger.Warn("目标地址缓存意外读空，回到查询流程")
	}

	// 3. 允许查询：发起并挂起
	if r.dht != nil && r.throttle.shouldQuery() {
		if err := r.dht.GetClosestPeers(ctx, r.target); err != nil {
			// 查询未能发出，不计入节流，冷却期后重试
			logger.Warn("发起 DHT 查询失败", "error", err)
			return Decision{State: State(r.state.Load()), Wake: wake, RetryIn: r.cooldown}, nil
		}
		r.throttle.markIssued()
		r.metrics.RecordDHTQuery()
		r.storeState(StateQuerying)
		logger.Info("发起 DHT 查询", "target", r.target.ShortString())
		return Decision{State: StateQuerying, Wake: wake, RetryIn: r.cooldown}, nil
	}

	// 4. 冷却中：挂起，带上冷却定时器，保证下一次获准的查询
	// 按时发出（在途查询到期无答复后重发）。
	d := Decision{State: State(r.state.Load()), Wake: wake}
	if r.dht != nil {
		d.RetryIn = r.throttle.remaining()
	}
	return d, nil
}

// pollReady 缓存非空时的轮询分支（步骤 5）
func (r *Resolver) pollReady(ctx context.Context, wake <-chan struct{}, records []types.AddrRecord) (Decision, error) {
	r.storeState(StateReady)
	r.metrics.SetCachedAddresses(len(records))

	cands := Candidates(records)
	if len(cands) == 0 {
		// 地址都在却没有一个可用主机：终态
		return r.fail(fmt.Errorf("%w: %d 条地址均无可用主机", ErrNoConnection, len(records)))
	}

	if err := r.dispatcher.Dispatch(ctx, r.target, cands); err != nil {
		return r.fail(fmt.Errorf("启动连接调度失败: %w", err))
	}
	r.storeState(StateConnecting)
	logger.Info("开始连接尝试", "target", r.target.ShortString(), "candidates", len(cands))
	return Decision{State: StateConnecting, Wake: wake}, nil
}

// Run 驱动解析循环直到连接建立或终态失败
func (r *Resolver) Run(ctx context.Context) error {
	startedAt := r.clk.Now()

	for {
		d, err := r.Poll(ctx)
		if err != nil {
			return err
		}
		if d.State == StateDone {
			r.metrics.RecordResolveDuration(r.clk.Since(startedAt))
			return nil
		}

		var timer *clock.Timer
		var timerC <-chan time.Time
		if d.RetryIn > 0 {
			timer = r.clk.Timer(d.RetryIn)
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case <-d.Wake:
			if timer != nil {
				timer.Stop()
			}
		case <-timerC:
		}
	}
}

// takeResult 取走调度结果（无结果时返回 nil）
func (r *Resolver) takeResult() *interfaces.DispatchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.result
	r.result = nil
	return res
}

// fail 记录终态错误，此后每次轮询原样返回
func (r *Resolver) fail(err error) (Decision, error) {
	r.mu.Lock()
	r.termErr = err
	r.mu.Unlock()
	return Decision{}, err
}

func (r *Resolver) terminalError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.termErr
}
