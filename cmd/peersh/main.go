// Package main 提供 peersh 命令行入口
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dep2p/go-peersh"
	"github.com/dep2p/go-peersh/config"
	"github.com/dep2p/go-peersh/internal/core/identity"
	"github.com/dep2p/go-peersh/pkg/lib/log"
)

var logger = log.Logger("peersh/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
// 设计原则：
//
//   命令行参数：运行时覆盖 / 快速测试（「这次连接」想怎么连）
//   JSON 配置文件：持久化配置 / 长期使用（「这台机器」的固定配置）
//
// 优先级：命令行参数 > 环境变量 (PEERSH_*) > 配置文件 > 默认值
//
// ═══════════════════════════════════════════════════════════════════════════
var (
	// ─────────────────────────────────────────────────────────────────────
	// 运行时参数
	// ─────────────────────────────────────────────────────────────────────
	configFile = flag.String("config", "", "配置文件路径 (JSON)")
	configDir  = flag.String("config-dir", "", "配置目录（身份密钥等）")
	command    = flag.String("command", "", `连接命令，可含参数（默认 "ssh"）`)
	policy     = flag.String("policy", "", "成功判定策略 (zero-exit/any-spawn)")
	cooldown   = flag.Duration("cooldown", 0, "DHT 查询冷却时间（默认 2s）")
	timeout    = flag.Duration("timeout", 0, "整体解析超时（0 = 不限）")

	// ─────────────────────────────────────────────────────────────────────
	// 发现参数
	// ─────────────────────────────────────────────────────────────────────
	noMDNS     = flag.Bool("no-mdns", false, "禁用 mDNS 局域网发现")
	serviceTag = flag.String("service-tag", "", `mDNS 服务标签（默认 "_peersh._udp"）`)

	// ─────────────────────────────────────────────────────────────────────
	// 可观测性
	// ─────────────────────────────────────────────────────────────────────
	metricsAddr = flag.String("metrics", "", "Prometheus 指标监听地址（空 = 禁用）")
	logLevel    = flag.String("log-level", "", "日志级别 (debug/info/warn/error)，默认 warn")

	// ─────────────────────────────────────────────────────────────────────
	// 信息显示
	// ─────────────────────────────────────────────────────────────────────
	showVersion = flag.Bool("version", false, "显示版本信息")
	showHelp    = flag.Bool("help", false, "显示帮助信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	// 显示版本
	if *showVersion {
		printVersion()
		return nil
	}

	// 显示帮助
	if *showHelp {
		printHelp()
		return nil
	}

	// 设置日志级别
	if err := setupLogging(); err != nil {
		return err
	}

	// 构建选项
	opts, err := buildOptions()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	// 无目标参数：打印本机节点 ID 后退出
	target := strings.TrimSpace(flag.Arg(0))
	if target == "" {
		return printSelfID()
	}

	// SIGINT/SIGTERM 取消会话
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess, err := peersh.New(target, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	logger.Info("开始定位目标节点",
		"self", sess.ID().ShortString(),
		"target", sess.Target().ShortString(),
	)
	fmt.Fprintf(os.Stderr, "正在定位节点 %s ...\n", sess.Target().ShortString())

	if err := sess.Run(ctx); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			fmt.Fprintln(os.Stderr, "\n已取消")
			return nil
		case errors.Is(err, peersh.ErrNoConnection):
			return fmt.Errorf("无法连接到目标节点: %w", err)
		default:
			return err
		}
	}

	if res := sess.Result(); res != nil && res.Winner != nil {
		logger.Info("会话结束", "host", res.Winner.Host, "source", res.Winner.Source)
	}
	return nil
}

// setupLogging 设置日志级别（命令行 > 环境变量）
//
// 交互式会话期间远程命令接管终端，默认只输出 warn 及以上，
// 定位过程的详细日志用 -log-level info 查看。
func setupLogging() error {
	level := stringSetting(*logLevel, config.EnvLogLevel)
	if level == "" {
		log.SetLevel(log.LevelWarn)
		return nil
	}

	lv, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("日志级别无效: %w", err)
	}
	log.SetLevel(lv)
	return nil
}

// printSelfID 打印本机节点身份
//
// 首次运行会生成并保存身份密钥，之后每次打印相同的 ID。
// 用于在带外渠道（聊天、邮件）把自己的 ID 交给对端。
func printSelfID() error {
	cfg, err := loadBaseConfig()
	if err != nil {
		return err
	}

	keyFile := cfg.Identity.ResolvedKeyFile()
	pass := envValue(config.EnvKeyPassphrase)
	id, err := identity.LoadOrCreate(keyFile, []byte(pass), cfg.Identity.AutoGenerate)
	if err != nil {
		return fmt.Errorf("加载身份失败: %w", err)
	}

	fmt.Println()
	fmt.Println("╔════════════════════════════════════════════════════════════════╗")
	fmt.Printf("║  peersh %-55s ║\n", peersh.Version)
	fmt.Println("╠════════════════════════════════════════════════════════════════╣")
	fmt.Printf("║  Node ID: %-52s ║\n", id.ID())
	fmt.Println("╚════════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Println("对端执行以下命令即可定位本机:")
	fmt.Println()
	fmt.Printf("  peersh %s\n", id.ID())
	fmt.Println()
	fmt.Printf("密钥文件: %s\n", keyFile)
	return nil
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Println(peersh.VersionInfo())
	if peersh.GoVersion != "" {
		fmt.Printf("  go: %s\n", peersh.GoVersion)
	}
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("peersh - 按节点 ID 定位对端并建立远程终端")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  peersh [选项] <节点 ID 或完整地址>")
	fmt.Println("  peersh                # 打印本机节点 ID")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════════════════")
	fmt.Println("环境变量")
	fmt.Println("═══════════════════════════════════════════════════════════════════════════")
	fmt.Println()
	fmt.Println("  每个选项都有 PEERSH_ 前缀的环境变量对应项，优先级低于命令行参数:")
	fmt.Println()
	fmt.Println("  PEERSH_CONFIG             配置文件路径")
	fmt.Println("  PEERSH_CONFIG_DIR         配置目录（密钥等）")
	fmt.Println("  PEERSH_COMMAND            连接命令（含参数）")
	fmt.Println("  PEERSH_POLICY             成功判定策略 (zero-exit/any-spawn)")
	fmt.Println("  PEERSH_COOLDOWN           DHT 查询冷却时间（如 2s）")
	fmt.Println("  PEERSH_TIMEOUT            整体解析超时（如 30s，0 = 不限）")
	fmt.Println("  PEERSH_NO_MDNS            禁用 mDNS 发现 (true/false)")
	fmt.Println("  PEERSH_SERVICE_TAG        mDNS 服务标签")
	fmt.Println("  PEERSH_METRICS            Prometheus 监听地址")
	fmt.Println("  PEERSH_LOG_LEVEL          日志级别")
	fmt.Println("  PEERSH_KEY_PASSPHRASE     密钥文件口令（不提供命令行形式）")
	fmt.Println("  PEERSH_KNOWN_PEERS        已知节点，逗号分隔的完整地址")
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════════════════")
	fmt.Println("使用示例")
	fmt.Println("═══════════════════════════════════════════════════════════════════════════")
	fmt.Println()
	fmt.Println("  # 打印本机节点 ID（发给对端）")
	fmt.Println("  peersh")
	fmt.Println()
	fmt.Println("  # 按 ID 定位同一局域网内的节点并建立 ssh 会话")
	fmt.Println("  peersh 5Q2STWbV7Lz...")
	fmt.Println()
	fmt.Println("  # 目标地址已知时直接指定完整地址")
	fmt.Println("  peersh /ip4/203.0.113.7/tcp/22/p2p/5Q2STWbV7Lz...")
	fmt.Println()
	fmt.Println("  # 交互式会话：命令启动即算成功")
	fmt.Println("  peersh -policy any-spawn 5Q2STWbV7Lz...")
	fmt.Println()
	fmt.Println("  # 自定义连接命令与解析超时")
	fmt.Println("  peersh -command \"ssh -p 2222\" -timeout 30s 5Q2STWbV7Lz...")
	fmt.Println()
	fmt.Println("  # 通过环境变量注入已知节点")
	fmt.Println("  PEERSH_KNOWN_PEERS=/ip4/10.0.0.7/tcp/22/p2p/5Q2STW... peersh 5Q2STW...")
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════════════════")
	fmt.Println("配置文件示例 (peersh.json)")
	fmt.Println("═══════════════════════════════════════════════════════════════════════════")
	fmt.Println()
	fmt.Println(`  {`)
	fmt.Println(`    "shell": {`)
	fmt.Println(`      "command": "ssh",`)
	fmt.Println(`      "args": ["-p", "2222"],`)
	fmt.Println(`      "policy": "any-spawn"`)
	fmt.Println(`    },`)
	fmt.Println(`    "discovery": {`)
	fmt.Println(`      "enable_mdns": true,`)
	fmt.Println(`      "enable_dht": true`)
	fmt.Println(`    },`)
	fmt.Println(`    "known_peers": [`)
	fmt.Println(`      {`)
	fmt.Println(`        "peer_id": "5Q2STWbV7Lz...",`)
	fmt.Println(`        "addrs": ["/ip4/203.0.113.7/tcp/22"]`)
	fmt.Println(`      }`)
	fmt.Println(`    ]`)
	fmt.Println(`  }`)
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════════════════")
	fmt.Println("地址格式 (multiaddr)")
	fmt.Println("═══════════════════════════════════════════════════════════════════════════")
	fmt.Println()
	fmt.Println("  /ip4/<IP>/tcp/<PORT>/p2p/<NodeID>       # IPv4")
	fmt.Println("  /ip6/<IP>/tcp/<PORT>/p2p/<NodeID>       # IPv6")
	fmt.Println("  /dns4/<DOMAIN>/tcp/<PORT>/p2p/<NodeID>  # 域名")
}
