package identity

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-peersh/config"
)

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
var Module = fx.Module("core/identity",
	fx.Provide(ProvideIdentity),
	fx.Invoke(registerLifecycle),
)

// Params 模块输入参数
type Params struct {
	fx.In

	// Cfg 统一配置（可选，缺省使用默认配置）
	Cfg *config.Config `optional:"true"`
}

// ProvideIdentity 提供节点身份
//
// 按配置加载或创建密钥文件。
func ProvideIdentity(p Params) (*Identity, error) {
	cfg := p.Cfg
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return LoadOrCreate(
		cfg.Identity.ResolvedKeyFile(),
		[]byte(cfg.Identity.Passphrase),
		cfg.Identity.AutoGenerate,
	)
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC       fx.Lifecycle
	Identity *Identity
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Debug("身份就绪", "id", input.Identity.ID().ShortString())
			return nil
		},
		OnStop: func(_ context.Context) error {
			return nil
		},
	})
}
