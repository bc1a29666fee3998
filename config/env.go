package config

// ============================================================================
//                              环境变量（供 CLI 使用）
// ============================================================================

// 环境变量前缀和名称常量（供 cmd 层使用）
//
// 优先级：命令行参数 > 环境变量 > 配置文件 > 默认值。
const (
	// EnvPrefix 环境变量前缀
	EnvPrefix = "PEERSH_"

	// EnvConfigFile 配置文件路径
	EnvConfigFile = "CONFIG"

	// EnvConfigDir 配置目录（密钥等）
	EnvConfigDir = "CONFIG_DIR"

	// EnvCommand 连接命令
	EnvCommand = "COMMAND"

	// EnvPolicy 成功判定策略
	EnvPolicy = "POLICY"

	// EnvCooldown DHT 查询冷却时间
	EnvCooldown = "COOLDOWN"

	// EnvTimeout 整体解析超时
	EnvTimeout = "TIMEOUT"

	// EnvNoMDNS 禁用 mDNS 发现
	EnvNoMDNS = "NO_MDNS"

	// EnvServiceTag mDNS 服务标签
	EnvServiceTag = "SERVICE_TAG"

	// EnvMetricsAddr Prometheus 监听地址
	EnvMetricsAddr = "METRICS"

	// EnvLogLevel 日志级别
	EnvLogLevel = "LOG_LEVEL"

	// EnvKeyPassphrase 密钥文件口令
	EnvKeyPassphrase = "KEY_PASSPHRASE"

	// EnvKnownPeers 已知节点（逗号分隔的完整地址）
	EnvKnownPeers = "KNOWN_PEERS"
)
