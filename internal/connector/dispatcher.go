package connector

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/semaphore"

	"github.com/dep2p/go-peersh/config"
	"github.com/dep2p/go-peersh/internal/metrics"
	"github.com/dep2p/go-peersh/pkg/interfaces"
	"github.com/dep2p/go-peersh/pkg/lib/log"
	"github.com/dep2p/go-peersh/pkg/types"
)

var logger = log.Logger("connector")

// Dispatcher 并发竞速的连接调度器
//
// 一轮调度内按候选顺序启动连接尝试，并发数受上限约束。
// 第一个按策略胜出的尝试定胜负，其余在途尝试随即撤销。
type Dispatcher struct {
	runner interfaces.Runner

	command      string
	baseArgs     []string
	policy       string
	maxInFlight  int64
	spawnTimeout time.Duration

	metrics *metrics.Metrics

	inFlight atomic.Bool
	done     chan interfaces.DispatchResult
}

// NewDispatcher 创建连接调度器
func NewDispatcher(runner interfaces.Runner, cfg config.ShellConfig, m *metrics.Metrics) *Dispatcher {
	maxInFlight := int64(cfg.MaxConcurrent)
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	return &Dispatcher{
		runner:       runner,
		command:      cfg.Command,
		baseArgs:     append([]string(nil), cfg.Args...),
		policy:       cfg.Policy,
		maxInFlight:  maxInFlight,
		spawnTimeout: cfg.SpawnTimeout.Duration(),
		metrics:      m,
		done:         make(chan interfaces.DispatchResult, 1),
	}
}

// Dispatch 启动一轮并发连接尝试
//
// 非阻塞。一轮进行中再次调用返回 ErrDispatchInFlight。
func (d *Dispatcher) Dispatch(ctx context.Context, target types.NodeID, candidates []types.Candidate) error {
	if len(candidates) == 0 {
		return ErrNoCandidates
	}
	if d.inFlight.Swap(true) {
		return ErrDispatchInFlight
	}

	go d.race(ctx, target, candidates)
	return nil
}

// Done 返回完成通知通道
func (d *Dispatcher) Done() <-chan interfaces.DispatchResult {
	return d.done
}

// ════════════════════════════════════════════════════════════════════════════
//                              竞速执行
// ════════════════════════════════════════════════════════════════════════════

// round 一轮竞速的共享裁决状态
type round struct {
	cancel context.CancelFunc

	mu     sync.Mutex
	winner *types.Candidate
	proc   interfaces.Process
	causes error
}

// claim 认领胜利
//
// 只有第一个调用者成功，成功即撤销其余在途尝试。
func (rd *round) claim(cand types.Candidate, proc interfaces.Process) bool {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	if rd.winner != nil {
		return false
	}
	c := cand
	rd.winner = &c
	rd.proc = proc
	rd.cancel()
	return true
}

// fail 记入一个主机的失败原因
func (rd *round) fail(err error) {
	rd.mu.Lock()
	rd.causes = multierr.Append(rd.causes, err)
	rd.mu.Unlock()
}

// won 返回本轮是否已有胜者
func (rd *round) won() bool {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	return rd.winner != nil
}

// race 执行一轮竞速并投递结果
func (d *Dispatcher) race(ctx context.Context, target types.NodeID, candidates []types.Candidate) {
	defer d.inFlight.Store(false)

	roundCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	rd := &round{cancel: cancel}
	sem := semaphore.NewWeighted(d.maxInFlight)
	var wg sync.WaitGroup

	logger.Info("开始连接竞速",
		"target", target.ShortString(),
		"candidates", len(candidates),
		"policy", d.policy)

	for _, cand := range candidates {
		if err := sem.Acquire(roundCtx, 1); err != nil {
			break
		}
		if rd.won() {
			sem.Release(1)
			break
		}

		cand := cand
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			d.attempt(roundCtx, rd, cand)
		}()
	}
	wg.Wait()

	res := interfaces.DispatchResult{Target: target}
	rd.mu.Lock()
	if rd.winner != nil {
		res.Winner = rd.winner
		res.Proc = rd.proc
	} else if rd.causes != nil {
		res.Err = fmt.Errorf("%d 个候选全部失败: %w", len(candidates), rd.causes)
	} else {
		res.Err = roundCtx.Err()
	}
	rd.mu.Unlock()

	d.done <- res
}

// attempt 对单个候选主机执行一次连接尝试
func (d *Dispatcher) attempt(ctx context.Context, rd *round, cand types.Candidate) {
	attemptID := uuid.NewString()[:8]

	attemptCtx := ctx
	if d.spawnTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, d.spawnTimeout)
		defer cancel()
	}

	args := make([]string, 0, len(d.baseArgs)+1)
	args = append(args, d.baseArgs...)
	args = append(args, cand.Host)

	logger.Debug("启动连接尝试",
		"attempt", attemptID,
		"host", cand.Host,
		"source", cand.Source,
		"command", d.command)

	proc, err := d.runner.Spawn(attemptCtx, d.command, args...)
	if err != nil {
		// 单个主机起不来不致命，记因后继续其余候选
		d.metrics.RecordSpawn(true)
		logger.Warn("启动连接命令失败",
			"attempt", attemptID, "host", cand.Host, "error", err)
		rd.fail(&SpawnError{Host: cand.Host, Err: err})
		return
	}
	d.metrics.RecordSpawn(false)

	if d.policy == config.PolicyAnySpawn {
		if rd.claim(cand, proc) {
			logger.Info("连接命令已启动",
				"attempt", attemptID, "host", cand.Host, "pid", proc.PID())
			return
		}
		// 竞速落败，进程不再需要
		_ = proc.Kill()
		_ = proc.Wait()
		return
	}

	// zero-exit 策略：干净退出才算成功
	err = proc.Wait()
	if err == nil {
		if rd.claim(cand, proc) {
			logger.Info("连接命令正常退出",
				"attempt", attemptID, "host", cand.Host)
		}
		return
	}
	if rd.won() {
		// 胜者已定，被撤销的尝试不记失败
		return
	}
	logger.Warn("连接命令退出异常",
		"attempt", attemptID, "host", cand.Host, "error", err)
	rd.fail(&SpawnError{Host: cand.Host, Err: err})
}
