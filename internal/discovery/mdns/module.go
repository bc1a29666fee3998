package mdns

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-peersh/config"
	"github.com/dep2p/go-peersh/internal/core/identity"
	"github.com/dep2p/go-peersh/pkg/interfaces"
)

// Module mDNS 发现源的 fx 模块
//
// 是否启用由应用装配层决定：cfg.Discovery.EnableMDNS 为 false 时
// 不挂载本模块。挂载后构造失败（组播环境不可用）直接让应用
// 启动失败。
var Module = fx.Module("discovery/mdns",
	fx.Provide(ProvideSource),
	fx.Invoke(registerLifecycle),
)

// Params 构造参数
type Params struct {
	fx.In

	Cfg      *config.Config `optional:"true"`
	Identity *identity.Identity
}

// Result 构造结果
//
// Source 进入 "sources" 组供解析器消费，
// 具体类型单独导出便于状态观察。
type Result struct {
	fx.Out

	Source interfaces.PeerSource `group:"sources"`
	MDNS   *MDNS
}

// ProvideSource 构造 mDNS 发现源
func ProvideSource(params Params) (Result, error) {
	cfg := config.DefaultDiscoveryConfig().MDNS
	if params.Cfg != nil {
		cfg = params.Cfg.Discovery.MDNS
	}

	m, err := New(cfg, params.Identity.ID(), nil)
	if err != nil {
		return Result{}, err
	}
	return Result{Source: m, MDNS: m}, nil
}

type lifecycleInput struct {
	fx.In

	Lifecycle fx.Lifecycle
	MDNS      *MDNS
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(input lifecycleInput) {
	input.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return input.MDNS.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return input.MDNS.Stop(ctx)
		},
	})
}
