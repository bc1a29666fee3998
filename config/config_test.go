package config

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfig 测试创建默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)

	// 验证默认配置有效
	err := cfg.Validate()
	assert.NoError(t, err)

	t.Log("✅ NewConfig 测试通过")
}

// TestIdentityConfig 测试身份配置
func TestIdentityConfig(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		cfg := DefaultIdentityConfig()
		assert.True(t, cfg.AutoGenerate)
		assert.Empty(t, cfg.KeyFile)
	})

	t.Run("ResolvedKeyFile_Explicit", func(t *testing.T) {
		cfg := DefaultIdentityConfig().WithKeyFile("/tmp/id.pem")
		assert.Equal(t, "/tmp/id.pem", cfg.ResolvedKeyFile())
	})

	t.Run("ResolvedKeyFile_ConfigDir", func(t *testing.T) {
		cfg := DefaultIdentityConfig().WithConfigDir("/tmp/peersh")
		assert.Equal(t, filepath.Join("/tmp/peersh", DefaultKeyFileName), cfg.ResolvedKeyFile())
	})

	t.Run("Passphrase_NotSerialized", func(t *testing.T) {
		cfg := DefaultIdentityConfig().WithPassphrase("secret")
		data, err := json.Marshal(cfg)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "secret")
	})

	t.Log("✅ IdentityConfig 测试通过")
}

// TestDiscoveryConfig 测试节点发现配置
func TestDiscoveryConfig(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		cfg := DefaultDiscoveryConfig()
		assert.True(t, cfg.EnableMDNS)
		assert.True(t, cfg.EnableDHT)
		assert.Equal(t, "_peersh._udp", cfg.MDNS.ServiceTag)
		assert.Equal(t, 22, cfg.MDNS.AdvertisePort)
		assert.Equal(t, 10*time.Second, cfg.MDNS.Interval.Duration())
	})

	t.Run("Validate_EmptyServiceTag", func(t *testing.T) {
		cfg := DefaultDiscoveryConfig()
		cfg.MDNS.ServiceTag = ""
		err := cfg.Validate()
		assert.Error(t, err)
	})

	t.Run("Validate_DisabledMDNSSkipsMDNSChecks", func(t *testing.T) {
		cfg := DefaultDiscoveryConfig()
		cfg.EnableMDNS = false
		cfg.MDNS.ServiceTag = ""
		err := cfg.Validate()
		assert.NoError(t, err)
	})

	t.Run("Validate_BadPort", func(t *testing.T) {
		cfg := DefaultDiscoveryConfig()
		cfg.MDNS.AdvertisePort = 70000
		err := cfg.Validate()
		assert.Error(t, err)
	})

	t.Log("✅ DiscoveryConfig 测试通过")
}

// TestResolveConfig 测试解析循环配置
func TestResolveConfig(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		cfg := DefaultResolveConfig()
		assert.Equal(t, 2*time.Second, cfg.QueryCooldown.Duration())
		assert.Equal(t, time.Duration(0), cfg.Timeout.Duration())
	})

	t.Run("Validate_ZeroCooldown", func(t *testing.T) {
		cfg := DefaultResolveConfig()
		cfg.QueryCooldown = 0
		err := cfg.Validate()
		assert.Error(t, err)
	})

	t.Log("✅ ResolveConfig 测试通过")
}

// TestShellConfig 测试连接命令配置
func TestShellConfig(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		cfg := DefaultShellConfig()
		assert.Equal(t, "ssh", cfg.Command)
		assert.Equal(t, PolicyZeroExit, cfg.Policy)
		assert.Equal(t, 4, cfg.MaxConcurrent)
	})

	t.Run("Validate_InvalidPolicy", func(t *testing.T) {
		cfg := DefaultShellConfig()
		cfg.Policy = "first-wins"
		err := cfg.Validate()
		assert.Error(t, err)
	})

	t.Run("Validate_AnySpawn", func(t *testing.T) {
		cfg := DefaultShellConfig()
		cfg.Policy = PolicyAnySpawn
		err := cfg.Validate()
		assert.NoError(t, err)
	})

	t.Run("Validate_EmptyCommand", func(t *testing.T) {
		cfg := DefaultShellConfig()
		cfg.Command = ""
		err := cfg.Validate()
		assert.Error(t, err)
	})

	t.Log("✅ ShellConfig 测试通过")
}

// TestMetricsConfig 测试指标配置
func TestMetricsConfig(t *testing.T) {
	t.Run("Default_Disabled", func(t *testing.T) {
		cfg := DefaultMetricsConfig()
		assert.False(t, cfg.Enabled())
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Validate_BadAddr", func(t *testing.T) {
		cfg := MetricsConfig{ListenAddr: "9090"}
		err := cfg.Validate()
		assert.Error(t, err)
	})

	t.Run("Enabled", func(t *testing.T) {
		cfg := MetricsConfig{ListenAddr: "127.0.0.1:9090"}
		assert.True(t, cfg.Enabled())
		assert.NoError(t, cfg.Validate())
	})

	t.Log("✅ MetricsConfig 测试通过")
}

// TestKnownPeers 测试已知节点校验
func TestKnownPeers(t *testing.T) {
	cfg := NewConfig()
	cfg.KnownPeers = []KnownPeer{
		{PeerID: "8fGk3vQm", Addrs: []string{"/ip4/10.0.0.9/tcp/22"}},
	}
	assert.NoError(t, cfg.Validate())

	cfg.KnownPeers = append(cfg.KnownPeers, KnownPeer{PeerID: ""})
	assert.Error(t, cfg.Validate())

	t.Log("✅ KnownPeers 测试通过")
}

// TestFromJSON 测试 JSON 加载
func TestFromJSON(t *testing.T) {
	t.Run("Partial", func(t *testing.T) {
		// 未出现的字段保持默认值
		data := []byte(`{"shell": {"command": "mosh", "policy": "any-spawn", "max_concurrent": 2}}`)
		cfg, err := FromJSON(data)
		require.NoError(t, err)
		assert.Equal(t, "mosh", cfg.Shell.Command)
		assert.Equal(t, PolicyAnySpawn, cfg.Shell.Policy)
		assert.True(t, cfg.Discovery.EnableMDNS)
		assert.Equal(t, 2*time.Second, cfg.Resolve.QueryCooldown.Duration())
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := FromJSON([]byte(`{not json`))
		assert.Error(t, err)
	})

	t.Log("✅ FromJSON 测试通过")
}

// TestLoadSaveFile 测试配置文件读写
func TestLoadSaveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peersh.json")

	cfg := NewConfig()
	cfg.Shell.Command = "mosh"
	cfg.Resolve.QueryCooldown = Duration(5 * time.Second)
	require.NoError(t, cfg.SaveFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mosh", loaded.Shell.Command)
	assert.Equal(t, 5*time.Second, loaded.Resolve.QueryCooldown.Duration())

	t.Log("✅ LoadSaveFile 测试通过")
}

// TestDuration 测试 Duration JSON 解析
func TestDuration(t *testing.T) {
	type wrap struct {
		D Duration `json:"d"`
	}

	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"字符串秒", `{"d": "2s"}`, 2 * time.Second, false},
		{"字符串组合", `{"d": "1h30m"}`, 90 * time.Minute, false},
		{"纳秒数字", `{"d": 2000000000}`, 2 * time.Second, false},
		{"非法字符串", `{"d": "fast"}`, 0, true},
		{"非法类型", `{"d": true}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w wrap
			err := json.Unmarshal([]byte(tt.in), &w)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, w.D.Duration())
		})
	}

	t.Run("Marshal", func(t *testing.T) {
		data, err := json.Marshal(wrap{D: Duration(2 * time.Second)})
		require.NoError(t, err)
		assert.JSONEq(t, `{"d": "2s"}`, string(data))
	})

	t.Log("✅ Duration 测试通过")
}
