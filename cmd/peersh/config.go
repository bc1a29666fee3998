package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dep2p/go-peersh"
	"github.com/dep2p/go-peersh/config"
	"github.com/dep2p/go-peersh/internal/util/addrutil"
)

// ============================================================================
//                              选项装配（CLI 专用）
// ============================================================================

// buildOptions 把命令行参数与环境变量装配成会话选项
//
// 库内部的三层合并（选项 > 配置文件 > 默认值）已经保证了低两层的
// 优先级，这里只需在参数未显式给出时退回环境变量。
func buildOptions() ([]peersh.Option, error) {
	var opts []peersh.Option

	// 配置文件与配置目录
	if path := stringSetting(*configFile, config.EnvConfigFile); path != "" {
		opts = append(opts, peersh.WithConfigFile(path))
	}
	if dir := stringSetting(*configDir, config.EnvConfigDir); dir != "" {
		opts = append(opts, peersh.WithConfigDir(dir))
	}

	// 连接命令（整串解析，支持 "ssh -p 2222"）
	if cmdline := stringSetting(*command, config.EnvCommand); cmdline != "" {
		parts := strings.Fields(cmdline)
		opts = append(opts, peersh.WithCommand(parts[0], parts[1:]...))
	}

	// 成功判定策略
	if p := stringSetting(*policy, config.EnvPolicy); p != "" {
		opts = append(opts, peersh.WithPolicy(p))
	}

	// 查询冷却与解析超时
	d, ok, err := durationSetting("cooldown", *cooldown, config.EnvCooldown)
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, peersh.WithQueryCooldown(d))
	}
	d, ok, err = durationSetting("timeout", *timeout, config.EnvTimeout)
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, peersh.WithTimeout(d))
	}

	// mDNS 开关与服务标签
	if disabled, ok := boolSetting("no-mdns", *noMDNS, config.EnvNoMDNS); ok {
		opts = append(opts, peersh.WithMDNS(!disabled))
	}
	if tag := stringSetting(*serviceTag, config.EnvServiceTag); tag != "" {
		opts = append(opts, peersh.WithServiceTag(tag))
	}

	// 指标端点
	if addr := stringSetting(*metricsAddr, config.EnvMetricsAddr); addr != "" {
		opts = append(opts, peersh.WithMetricsAddr(addr))
	}

	// 密钥口令（仅环境变量，命令行参数会泄露到进程列表）
	if pass := envValue(config.EnvKeyPassphrase); pass != "" {
		opts = append(opts, peersh.WithPassphrase(pass))
	}

	// 已知节点（仅环境变量，逗号分隔的完整地址）
	for _, full := range splitAndTrim(envValue(config.EnvKnownPeers), ",") {
		id, dialAddr, err := addrutil.ParseFullAddr(full)
		if err != nil {
			return nil, fmt.Errorf("%s%s 中的地址 %q 无效: %w",
				config.EnvPrefix, config.EnvKnownPeers, full, err)
		}
		opts = append(opts, peersh.WithKnownPeer(id.String(), dialAddr))
	}

	return opts, nil
}

// loadBaseConfig 加载不含会话选项的基础配置（打印本机 ID 用）
func loadBaseConfig() (*config.Config, error) {
	var cfg *config.Config
	if path := stringSetting(*configFile, config.EnvConfigFile); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.NewConfig()
	}

	if dir := stringSetting(*configDir, config.EnvConfigDir); dir != "" {
		cfg.Identity.ConfigDir = dir
	}
	return cfg, nil
}

// ============================================================================
//                              参数来源选择
// ============================================================================

// envValue 读取 PEERSH_ 前缀的环境变量
func envValue(name string) string {
	return os.Getenv(config.EnvPrefix + name)
}

// stringSetting 字符串参数：命令行非空优先，其次环境变量
func stringSetting(flagVal, envName string) string {
	if flagVal != "" {
		return flagVal
	}
	return envValue(envName)
}

// durationSetting 时长参数：显式命令行优先，其次环境变量
//
// 零值对部分参数有意义（-timeout 0 表示不限），因此用
// flag.Visit 区分「显式给出的零」和「未给出」。
func durationSetting(flagName string, flagVal time.Duration, envName string) (time.Duration, bool, error) {
	if isFlagSet(flagName) {
		return flagVal, true, nil
	}
	v := envValue(envName)
	if v == "" {
		return 0, false, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false, fmt.Errorf("环境变量 %s%s 的时长 %q 无效: %w", config.EnvPrefix, envName, v, err)
	}
	return d, true, nil
}

// boolSetting 布尔参数：显式命令行优先，其次环境变量
func boolSetting(flagName string, flagVal bool, envName string) (bool, bool) {
	if isFlagSet(flagName) {
		return flagVal, true
	}
	v := envValue(envName)
	if v == "" {
		return false, false
	}
	return parseBool(v), true
}

// isFlagSet 检查命令行参数是否被显式设置
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// ============================================================================
//                              辅助函数
// ============================================================================

// parseBool 解析布尔值字符串
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// splitAndTrim 分割字符串并去除空白
func splitAndTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
