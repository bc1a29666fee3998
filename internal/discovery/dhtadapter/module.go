package dhtadapter

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-peersh/config"
	"github.com/dep2p/go-peersh/pkg/interfaces"
)

// Module 种子表 DHT 的 fx 模块
//
// 应用装配层在 cfg.Discovery.EnableDHT 为 true 且没有外部
// DHT 注入时挂载。
var Module = fx.Module("discovery/dhtadapter",
	fx.Provide(ProvideTable),
	fx.Invoke(registerLifecycle),
)

// Params 构造参数
type Params struct {
	fx.In

	Cfg *config.Config `optional:"true"`
}

// Result 构造结果
type Result struct {
	fx.Out

	DHT   interfaces.DHT
	Table *Table
}

// ProvideTable 构造种子表
func ProvideTable(params Params) Result {
	cfg := config.DefaultDiscoveryConfig().DHT
	if params.Cfg != nil {
		cfg = params.Cfg.Discovery.DHT
	}

	t := New(cfg)
	return Result{DHT: t, Table: t}
}

type lifecycleInput struct {
	fx.In

	Lifecycle fx.Lifecycle
	Table     *Table
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(input lifecycleInput) {
	input.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return input.Table.Close()
		},
	})
}
