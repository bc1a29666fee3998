package peersh

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-peersh/config"
	"github.com/dep2p/go-peersh/pkg/lib/log"

	"github.com/dep2p/go-peersh/internal/connector"
	"github.com/dep2p/go-peersh/internal/core/identity"
	"github.com/dep2p/go-peersh/internal/discovery/dhtadapter"
	"github.com/dep2p/go-peersh/internal/discovery/mdns"
	"github.com/dep2p/go-peersh/internal/discovery/static"
	"github.com/dep2p/go-peersh/internal/metrics"
	"github.com/dep2p/go-peersh/internal/resolve"
	"github.com/dep2p/go-peersh/internal/util/addrutil"
	"github.com/dep2p/go-peersh/pkg/interfaces"
	"github.com/dep2p/go-peersh/pkg/types"
)

var fxLogger = log.Logger("peersh/fx")

// buildApp 构建 Fx 应用
//
// 组装所有内部模块，采用条件加载策略：
//   - 核心模块：必须加载（Identity, Metrics, Connector, Resolve）
//   - 发现模块：根据配置加载（mDNS, DHT, 静态节点）
//   - 注入组件：用户提供的 Runner、路由实现和发现源
//
// 加载顺序（按依赖）：
//  1. Identity → Metrics → Connector
//  2. Discovery: mDNS / Static / DHT
//  3. Resolve（聚合所有发现源和 DHT）
func buildApp(cfg *config.Config, target types.NodeID, o *options, sess *Session) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证（前置）
	// ════════════════════════════════════════════════════════════════════════
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if !hasAnyDiscovery(cfg, o) {
		return nil, fmt.Errorf("at least one discovery path must be enabled (mDNS, DHT or known peers)")
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 基础模块（必须加载）
	// ════════════════════════════════════════════════════════════════════════
	modules := []fx.Option{
		// 配置和目标注入
		fx.Supply(cfg),
		fx.Supply(fx.Annotate(target, fx.ResultTags(`name:"target"`))),

		// 基础组件（必须）
		identity.Module,  // 身份管理
		metrics.Module,   // 指标采集（HTTP 端点由配置门控）
		connector.Module, // 连接调度
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 自定义进程执行器（可选注入）
	// ════════════════════════════════════════════════════════════════════════
	if o.runner != nil {
		runner := o.runner
		modules = append(modules, fx.Provide(func() interfaces.Runner {
			return runner
		}))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 4. 发现层（条件加载）
	// ════════════════════════════════════════════════════════════════════════
	if cfg.Discovery.EnableMDNS {
		modules = append(modules, mdns.Module)
	}
	if len(cfg.KnownPeers) > 0 {
		modules = append(modules, static.Module)
	}
	switch {
	case o.routing != nil:
		// 外部路由实现优先于内置种子表
		routing := o.routing
		modules = append(modules, fx.Provide(func() interfaces.DHT {
			return routing
		}))
	case cfg.Discovery.EnableDHT:
		modules = append(modules, dhtadapter.Module)
		if len(cfg.KnownPeers) > 0 {
			modules = append(modules, fx.Invoke(seedRoutingTable))
		}
	}

	// ════════════════════════════════════════════════════════════════════════
	// 5. 额外发现源（可选注入）
	// ════════════════════════════════════════════════════════════════════════
	for _, src := range o.sources {
		modules = append(modules, provideUserSource(src))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 6. 解析循环（始终加载）
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, resolve.Module)

	// ════════════════════════════════════════════════════════════════════════
	// 7. Session 组件注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.Invoke(injectSessionComponents(sess)))

	// ════════════════════════════════════════════════════════════════════════
	// 8. Fx 配置
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.NopLogger,
	)

	return fx.New(modules...), nil
}

// ════════════════════════════════════════════════════════════════════════════
// 条件检查辅助函数
// ════════════════════════════════════════════════════════════════════════════

// hasAnyDiscovery 检查是否存在任何发现路径
//
// 没有发现路径时解析永远不会产生候选地址，构建阶段直接拒绝。
func hasAnyDiscovery(cfg *config.Config, o *options) bool {
	return cfg.Discovery.EnableMDNS ||
		cfg.Discovery.EnableDHT ||
		o.routing != nil ||
		len(cfg.KnownPeers) > 0 ||
		len(o.sources) > 0
}

// ════════════════════════════════════════════════════════════════════════════
// 组件注入辅助函数
// ════════════════════════════════════════════════════════════════════════════

// sessionInjectParams Session 组件注入参数
type sessionInjectParams struct {
	fx.In

	Identity *identity.Identity
	Resolver *resolve.Resolver
}

// injectSessionComponents 创建 Session 组件注入函数
func injectSessionComponents(sess *Session) interface{} {
	return func(params sessionInjectParams) {
		sess.identity = params.Identity
		sess.resolver = params.Resolver
	}
}

// provideUserSource 注入用户发现源并托管其生命周期
func provideUserSource(src interfaces.PeerSource) fx.Option {
	return fx.Options(
		fx.Provide(fx.Annotate(func() interfaces.PeerSource {
			return src
		}, fx.ResultTags(`group:"sources"`))),
		fx.Invoke(func(lc fx.Lifecycle) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return src.Start(ctx)
				},
				OnStop: func(ctx context.Context) error {
					return src.Stop(ctx)
				},
			})
		}),
	)
}

// ════════════════════════════════════════════════════════════════════════════
// 路由表种子
// ════════════════════════════════════════════════════════════════════════════

// routingSeedParams 路由表种子参数
type routingSeedParams struct {
	fx.In

	Cfg      *config.Config
	Identity *identity.Identity
	Table    *dhtadapter.Table `optional:"true"`
}

// seedRoutingTable 把已知节点写入种子路由表
//
// 已知节点同时走静态发现源和 DHT 查询路径：前者立即产生候选，
// 后者让冷却重试也能命中这些地址。
func seedRoutingTable(params routingSeedParams) {
	if params.Table == nil {
		return
	}
	self := params.Identity.ID()
	for _, kp := range params.Cfg.KnownPeers {
		id, err := types.ParseNodeID(kp.PeerID)
		if err != nil {
			fxLogger.Warn("跳过无法解析的已知节点", "peer", kp.PeerID, "error", err)
			continue
		}
		if id.Equal(self) {
			continue
		}
		for _, raw := range kp.Addrs {
			addr, err := types.ParseMultiaddr(addrutil.StripPeerID(raw))
			if err != nil {
				fxLogger.Warn("跳过无法解析的已知地址", "peer", kp.PeerID, "addr", raw, "error", err)
				continue
			}
			if err := params.Table.AddAddress(id, addr); err != nil {
				fxLogger.Warn("写入路由表失败", "peer", kp.PeerID, "error", err)
			}
		}
	}
	fxLogger.Debug("已知节点已写入路由表", "count", params.Table.Len())
}
