package config

import (
	"os"
	"path/filepath"
)

// IdentityConfig 身份配置
//
// 管理节点的身份标识和密钥：
//   - 密钥文件位置（配置目录或显式路径）
//   - 首次运行时的自动生成
//   - 可选的密钥文件口令加密
type IdentityConfig struct {
	// ConfigDir 配置目录
	// 密钥文件默认存放于此（目录权限 0700）。
	// 为空时使用 DefaultConfigDir()。
	ConfigDir string `json:"config_dir,omitempty"`

	// KeyFile 密钥文件路径
	// 为空时使用 ConfigDir 下的默认文件名。
	KeyFile string `json:"key_file,omitempty"`

	// AutoGenerate 当密钥文件不存在时是否自动生成
	AutoGenerate bool `json:"auto_generate"`

	// Passphrase 密钥文件口令
	//
	// 非空时密钥文件使用口令加密存储。出于安全考虑该字段
	// 不参与 JSON 序列化，只能通过环境变量或 API 注入。
	Passphrase string `json:"-"`
}

// DefaultKeyFileName 默认密钥文件名
const DefaultKeyFileName = "identity.pem"

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{
		ConfigDir:    "",   // 默认空：运行时解析为 DefaultConfigDir()
		KeyFile:      "",   // 默认空：ConfigDir 下的 identity.pem
		AutoGenerate: true, // 默认启用：首次运行自动生成新密钥
	}
}

// DefaultConfigDir 返回默认配置目录
//
// 优先使用系统用户配置目录（如 ~/.config/peersh），
// 获取失败时退回当前目录下的 .peersh。
func DefaultConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".peersh"
	}
	return filepath.Join(base, "peersh")
}

// ResolvedKeyFile 返回实际使用的密钥文件路径
func (c IdentityConfig) ResolvedKeyFile() string {
	if c.KeyFile != "" {
		return c.KeyFile
	}
	dir := c.ConfigDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return filepath.Join(dir, DefaultKeyFileName)
}

// Validate 验证身份配置
func (c IdentityConfig) Validate() error {
	// 路径的可用性在加载密钥时检查，这里无需静态校验
	return nil
}

// WithConfigDir 设置配置目录
func (c IdentityConfig) WithConfigDir(dir string) IdentityConfig {
	c.ConfigDir = dir
	return c
}

// WithKeyFile 设置密钥文件路径
func (c IdentityConfig) WithKeyFile(path string) IdentityConfig {
	c.KeyFile = path
	return c
}

// WithPassphrase 设置密钥口令
func (c IdentityConfig) WithPassphrase(pass string) IdentityConfig {
	c.Passphrase = pass
	return c
}

// WithAutoGenerate 设置是否自动生成密钥
func (c IdentityConfig) WithAutoGenerate(auto bool) IdentityConfig {
	c.AutoGenerate = auto
	return c
}
