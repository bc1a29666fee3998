package connector

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-peersh/config"
	"github.com/dep2p/go-peersh/internal/metrics"
	"github.com/dep2p/go-peersh/pkg/interfaces"
)

// Module 连接调度器的 fx 模块
var Module = fx.Module("connector",
	fx.Provide(ProvideDispatcher),
)

// Params 调度器构造参数
type Params struct {
	fx.In

	Cfg     *config.Config    `optional:"true"`
	Runner  interfaces.Runner `optional:"true"`
	Metrics *metrics.Metrics  `optional:"true"`
}

// ProvideDispatcher 构造连接调度器
//
// 未注入 Runner 时使用继承标准流的 exec 执行器。
func ProvideDispatcher(params Params) interfaces.Dispatcher {
	shellCfg := config.DefaultShellConfig()
	if params.Cfg != nil {
		shellCfg = params.Cfg.Shell
	}
	runner := params.Runner
	if runner == nil {
		runner = NewExecRunner()
	}
	return NewDispatcher(runner, shellCfg, params.Metrics)
}
