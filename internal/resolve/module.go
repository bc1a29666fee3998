package resolve

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-peersh/config"
	"github.com/dep2p/go-peersh/internal/core/identity"
	"github.com/dep2p/go-peersh/internal/metrics"
	"github.com/dep2p/go-peersh/pkg/interfaces"
	"github.com/dep2p/go-peersh/pkg/types"
)

// Module 解析器的 fx 模块
var Module = fx.Module("resolve",
	fx.Provide(ProvideResolver),
	fx.Invoke(registerLifecycle),
)

// Params 解析器构造参数
type Params struct {
	fx.In

	Cfg        *config.Config          `optional:"true"`
	Target     types.NodeID            `name:"target"`
	Identity   *identity.Identity
	DHT        interfaces.DHT          `optional:"true"`
	Sources    []interfaces.PeerSource `group:"sources"`
	Dispatcher interfaces.Dispatcher
	Metrics    *metrics.Metrics        `optional:"true"`
}

// ProvideResolver 构造解析器
func ProvideResolver(params Params) (*Resolver, error) {
	deps := Deps{
		DHT:        params.DHT,
		Sources:    params.Sources,
		Dispatcher: params.Dispatcher,
		Metrics:    params.Metrics,
	}
	if params.Cfg != nil {
		deps.Cooldown = params.Cfg.Resolve.QueryCooldown.Duration()
	}
	return New(params.Target, params.Identity.ID(), deps)
}

type lifecycleInput struct {
	fx.In

	Lifecycle fx.Lifecycle
	Resolver  *Resolver
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(input lifecycleInput) {
	input.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return input.Resolver.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return input.Resolver.Stop(ctx)
		},
	})
}
