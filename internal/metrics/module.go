package metrics

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-peersh/config"
)

// Module 返回 fx 模块配置
var Module = fx.Module("metrics",
	fx.Provide(ProvideMetrics),
	fx.Invoke(registerLifecycle),
)

// ProvideMetrics 提供指标集合
func ProvideMetrics() *Metrics {
	return NewMetrics()
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC      fx.Lifecycle
	Metrics *Metrics
	Cfg     *config.Config `optional:"true"`
}

// registerLifecycle 注册生命周期
//
// 仅在配置了监听地址时启动 HTTP 端点。
func registerLifecycle(input lifecycleInput) {
	if input.Cfg == nil || !input.Cfg.Metrics.Enabled() {
		return
	}

	server := NewServer(input.Cfg.Metrics.ListenAddr, input.Metrics)
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			server.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})
}
