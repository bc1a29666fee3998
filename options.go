package peersh

import (
	"fmt"
	"time"

	"github.com/dep2p/go-peersh/config"
	"github.com/dep2p/go-peersh/pkg/interfaces"
)

// 成功判定策略（config 包常量的再导出）
const (
	// PolicyZeroExit 连接命令以零状态退出才算成功（默认）
	PolicyZeroExit = config.PolicyZeroExit

	// PolicyAnySpawn 连接命令成功启动即算成功
	//
	// 适用于交互式会话：命令启动后 Run 会一直等到远端命令结束。
	PolicyAnySpawn = config.PolicyAnySpawn
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 基础配置来源
	cfg        *config.Config
	configFile string

	// 连接命令配置
	shell struct {
		command       string
		args          []string
		policy        string
		maxConcurrent int
		spawnTimeout  *time.Duration
	}

	// 解析配置
	resolve struct {
		cooldown *time.Duration
		timeout  *time.Duration
	}

	// 发现配置
	discovery struct {
		enableMDNS    *bool
		enableDHT     *bool
		serviceTag    string
		advertisePort int
	}

	// 已知节点
	knownPeers []config.KnownPeer

	// 身份配置
	identity struct {
		configDir  string
		keyFile    string
		passphrase string
	}

	// 指标配置
	metricsAddr string

	// 组件注入（测试或嵌入场景）
	runner  interfaces.Runner
	routing interfaces.DHT
	sources []interfaces.PeerSource
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{}
}

// toConfig 转换为统一配置
//
// 配置分三层合并：选项覆盖 > 配置文件 > 默认值。
// WithConfig 注入的配置作为基础层使用（与配置文件互斥）。
func (o *options) toConfig() (*config.Config, error) {
	if o.cfg != nil && o.configFile != "" {
		return nil, fmt.Errorf("WithConfig 与 WithConfigFile 不能同时使用")
	}

	var cfg *config.Config
	switch {
	case o.cfg != nil:
		// 浅拷贝，避免修改调用方持有的配置
		cloned := *o.cfg
		cloned.KnownPeers = append([]config.KnownPeer(nil), o.cfg.KnownPeers...)
		cfg = &cloned
	case o.configFile != "":
		loaded, err := config.LoadFile(o.configFile)
		if err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
		cfg = loaded
	default:
		cfg = config.NewConfig()
	}

	// 覆盖: 连接命令
	if o.shell.command != "" {
		cfg.Shell.Command = o.shell.command
		cfg.Shell.Args = o.shell.args
	}
	if o.shell.policy != "" {
		cfg.Shell.Policy = o.shell.policy
	}
	if o.shell.maxConcurrent > 0 {
		cfg.Shell.MaxConcurrent = o.shell.maxConcurrent
	}
	if o.shell.spawnTimeout != nil {
		cfg.Shell.SpawnTimeout = config.Duration(*o.shell.spawnTimeout)
	}

	// 覆盖: 解析循环
	if o.resolve.cooldown != nil {
		cfg.Resolve.QueryCooldown = config.Duration(*o.resolve.cooldown)
	}
	if o.resolve.timeout != nil {
		cfg.Resolve.Timeout = config.Duration(*o.resolve.timeout)
	}

	// 覆盖: 发现配置
	if o.discovery.enableMDNS != nil {
		cfg.Discovery.EnableMDNS = *o.discovery.enableMDNS
	}
	if o.discovery.enableDHT != nil {
		cfg.Discovery.EnableDHT = *o.discovery.enableDHT
	}
	if o.discovery.serviceTag != "" {
		cfg.Discovery.MDNS.ServiceTag = o.discovery.serviceTag
	}
	if o.discovery.advertisePort > 0 {
		cfg.Discovery.MDNS.AdvertisePort = o.discovery.advertisePort
	}

	// 覆盖: 身份配置
	if o.identity.configDir != "" {
		cfg.Identity.ConfigDir = o.identity.configDir
	}
	if o.identity.keyFile != "" {
		cfg.Identity.KeyFile = o.identity.keyFile
	}
	if o.identity.passphrase != "" {
		cfg.Identity.Passphrase = o.identity.passphrase
	}

	// 覆盖: 指标
	if o.metricsAddr != "" {
		cfg.Metrics.ListenAddr = o.metricsAddr
	}

	// 追加: 已知节点
	cfg.KnownPeers = append(cfg.KnownPeers, o.knownPeers...)

	return cfg, nil
}

// ============================================================================
//                              配置来源选项
// ============================================================================

// WithConfig 使用完整配置
//
// 注入的配置作为基础层，其余选项仍可覆盖单项字段。
// 与 WithConfigFile 互斥。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("配置不能为空")
		}
		o.cfg = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置
//
// 文件中未出现的字段保持默认值。与 WithConfig 互斥。
//
//	peersh.New(target, peersh.WithConfigFile("~/.config/peersh/peersh.json"))
func WithConfigFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return fmt.Errorf("配置文件路径不能为空")
		}
		o.configFile = path
		return nil
	}
}

// ============================================================================
//                              连接命令选项
// ============================================================================

// WithCommand 设置远程连接命令
//
// 解析出的候选主机名追加为最后一个参数。
// 调用本选项会整体替换命令与参数。
//
// 示例:
//
//	peersh.New(target, peersh.WithCommand("ssh", "-p", "2222"))
//	peersh.New(target, peersh.WithCommand("mosh"))
func WithCommand(command string, args ...string) Option {
	return func(o *options) error {
		if command == "" {
			return fmt.Errorf("连接命令不能为空")
		}
		o.shell.command = command
		o.shell.args = args
		return nil
	}
}

// WithPolicy 设置成功判定策略
//
// 可选值:
//   - PolicyZeroExit: 命令退出码为零才算成功（适合探测类命令）
//   - PolicyAnySpawn: 命令成功启动即算成功（适合交互式会话）
func WithPolicy(policy string) Option {
	return func(o *options) error {
		switch policy {
		case config.PolicyZeroExit, config.PolicyAnySpawn:
		default:
			return fmt.Errorf("无效的判定策略 %q（可选 %q 或 %q）",
				policy, config.PolicyZeroExit, config.PolicyAnySpawn)
		}
		o.shell.policy = policy
		return nil
	}
}

// WithMaxConcurrent 设置并发连接尝试上限
func WithMaxConcurrent(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("并发上限必须大于 0")
		}
		o.shell.maxConcurrent = n
		return nil
	}
}

// WithSpawnTimeout 设置单次连接尝试的超时
//
// 0 表示不限，由整体解析超时控制。
func WithSpawnTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("连接尝试超时不能为负")
		}
		o.shell.spawnTimeout = &d
		return nil
	}
}

// ============================================================================
//                              解析循环选项
// ============================================================================

// WithQueryCooldown 设置 DHT 查询冷却时间
//
// 两次 DHT 查询之间的最小间隔。
func WithQueryCooldown(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("查询冷却时间必须大于 0")
		}
		o.resolve.cooldown = &d
		return nil
	}
}

// WithTimeout 设置整体解析超时
//
// 从会话启动到成功建立连接的最长等待时间，超时后 Run 返回错误。
// 只约束解析阶段：已建立的交互式会话不受影响。0 表示不限。
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("解析超时不能为负")
		}
		o.resolve.timeout = &d
		return nil
	}
}

// ============================================================================
//                              发现选项
// ============================================================================

// WithMDNS 启用/禁用局域网 mDNS 发现
func WithMDNS(enable bool) Option {
	return func(o *options) error {
		o.discovery.enableMDNS = &enable
		return nil
	}
}

// WithDHT 启用/禁用 DHT 查询路径
func WithDHT(enable bool) Option {
	return func(o *options) error {
		o.discovery.enableDHT = &enable
		return nil
	}
}

// WithServiceTag 设置 mDNS 服务标签
//
// 只有相同服务标签的节点互相发现，可用于隔离不同部署。
func WithServiceTag(tag string) Option {
	return func(o *options) error {
		if tag == "" {
			return fmt.Errorf("服务标签不能为空")
		}
		o.discovery.serviceTag = tag
		return nil
	}
}

// WithAdvertisePort 设置 mDNS 公告的服务端口
func WithAdvertisePort(port int) Option {
	return func(o *options) error {
		if port <= 0 || port > 65535 {
			return fmt.Errorf("公告端口必须在 1-65535 之间")
		}
		o.discovery.advertisePort = port
		return nil
	}
}

// WithKnownPeer 添加已知节点
//
// 已知节点无需发现即可作为候选地址，适用于云服务器部署、
// 私有网络等地址已知的场景。可多次调用添加多个节点。
//
//	peersh.New(target,
//	    peersh.WithKnownPeer(targetID, "/ip4/203.0.113.7/tcp/22"),
//	)
func WithKnownPeer(peerID string, addrs ...string) Option {
	return func(o *options) error {
		if peerID == "" {
			return fmt.Errorf("已知节点的 peer ID 不能为空")
		}
		if len(addrs) == 0 {
			return fmt.Errorf("已知节点至少需要一条地址")
		}
		o.knownPeers = append(o.knownPeers, config.KnownPeer{
			PeerID: peerID,
			Addrs:  addrs,
		})
		return nil
	}
}

// ============================================================================
//                              身份选项
// ============================================================================

// WithConfigDir 设置配置目录
//
// 身份密钥文件默认存放于此。
func WithConfigDir(dir string) Option {
	return func(o *options) error {
		if dir == "" {
			return fmt.Errorf("配置目录不能为空")
		}
		o.identity.configDir = dir
		return nil
	}
}

// WithIdentityFromFile 从文件加载身份密钥
//
// 如果文件不存在，将自动创建新的身份密钥并保存。
//
//	peersh.New(target, peersh.WithIdentityFromFile("~/.config/peersh/identity.pem"))
func WithIdentityFromFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return fmt.Errorf("身份密钥文件路径不能为空")
		}
		o.identity.keyFile = path
		return nil
	}
}

// WithPassphrase 设置身份密钥口令
//
// 非空时密钥文件使用口令加密存储。
func WithPassphrase(pass string) Option {
	return func(o *options) error {
		o.identity.passphrase = pass
		return nil
	}
}

// ============================================================================
//                              指标选项
// ============================================================================

// WithMetricsAddr 设置 Prometheus 指标端点监听地址
//
// 例如 "127.0.0.1:9090"。不设置时不启动端点。
func WithMetricsAddr(addr string) Option {
	return func(o *options) error {
		if addr == "" {
			return fmt.Errorf("指标监听地址不能为空")
		}
		o.metricsAddr = addr
		return nil
	}
}

// ============================================================================
//                              组件注入选项
// ============================================================================

// WithRunner 注入自定义进程执行器
//
// 默认使用继承标准流的 os/exec 执行器。
// 测试时可替换为进程内伪实现。
func WithRunner(r interfaces.Runner) Option {
	return func(o *options) error {
		if r == nil {
			return fmt.Errorf("进程执行器不能为空")
		}
		o.runner = r
		return nil
	}
}

// WithRouting 注入外部路由实现
//
// 替换内置的种子路由表，接入真实的 DHT 网络。
// 注入后 DHT 查询路径始终可用，不受 WithDHT 开关影响。
func WithRouting(d interfaces.DHT) Option {
	return func(o *options) error {
		if d == nil {
			return fmt.Errorf("路由实现不能为空")
		}
		o.routing = d
		return nil
	}
}

// WithSources 添加额外发现源
//
// 发现源的生命周期由会话管理：随会话启动和停止。
func WithSources(srcs ...interfaces.PeerSource) Option {
	return func(o *options) error {
		if len(srcs) == 0 {
			return fmt.Errorf("至少需要一个发现源")
		}
		for i, src := range srcs {
			if src == nil {
				return fmt.Errorf("发现源 [%d] 不能为空", i)
			}
		}
		o.sources = append(o.sources, srcs...)
		return nil
	}
}
