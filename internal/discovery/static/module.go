package static

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-peersh/config"
	"github.com/dep2p/go-peersh/internal/core/identity"
	"github.com/dep2p/go-peersh/pkg/interfaces"
)

// Module 静态发现源的 fx 模块
//
// 应用装配层在 cfg.KnownPeers 非空时挂载。
var Module = fx.Module("discovery/static",
	fx.Provide(ProvideSource),
	fx.Invoke(registerLifecycle),
)

// Params 构造参数
type Params struct {
	fx.In

	Cfg      *config.Config
	Identity *identity.Identity
}

// Result 构造结果
type Result struct {
	fx.Out

	Source interfaces.PeerSource `group:"sources"`
	Static *Source
}

// ProvideSource 构造静态发现源
func ProvideSource(params Params) (Result, error) {
	src, err := New(params.Cfg.KnownPeers, params.Identity.ID())
	if err != nil {
		return Result{}, err
	}
	return Result{Source: src, Static: src}, nil
}

type lifecycleInput struct {
	fx.In

	Lifecycle fx.Lifecycle
	Static    *Source
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(input lifecycleInput) {
	input.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return input.Static.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return input.Static.Stop(ctx)
		},
	})
}
