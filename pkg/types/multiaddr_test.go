package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMultiaddr(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// 有效格式
		{"ipv4 tcp", "/ip4/1.2.3.4/tcp/22", false},
		{"ipv6 tcp", "/ip6/::1/tcp/22", false},
		{"dns4", "/dns4/example.com/tcp/22", false},
		{"ipv4 udp quic", "/ip4/1.2.3.4/udp/4001/quic-v1", false},
		{"with peer id", "/ip4/1.2.3.4/tcp/22/p2p/" + testID(5).String(), false},
		{"p2p only", "/p2p/" + testID(5).String(), false},

		// 无效格式
		{"empty", "", true},
		{"host:port format", "1.2.3.4:22", true},
		{"no leading slash", "ip4/1.2.3.4/tcp/22", true},
		{"unknown protocol", "/unknown/1.2.3.4/tcp/22", true},
		{"too short", "/ip4", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ma, err := ParseMultiaddr(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.input, ma.String())
			}
		})
	}
}

func TestMustParseMultiaddr(t *testing.T) {
	assert.NotPanics(t, func() {
		ma := MustParseMultiaddr("/ip4/1.2.3.4/tcp/22")
		assert.Equal(t, "/ip4/1.2.3.4/tcp/22", ma.String())
	})

	assert.Panics(t, func() {
		MustParseMultiaddr("invalid")
	})
}

func TestFromHostPort(t *testing.T) {
	tests := []struct {
		name      string
		host      string
		port      int
		transport string
		want      string
		wantErr   bool
	}{
		{"ipv4 tcp", "1.2.3.4", 22, "tcp", "/ip4/1.2.3.4/tcp/22", false},
		{"ipv6 tcp", "::1", 22, "tcp", "/ip6/::1/tcp/22", false},
		{"dns4 tcp", "example.com", 22, "tcp", "/dns4/example.com/tcp/22", false},
		{"compound transport", "1.2.3.4", 4001, "udp/quic-v1", "/ip4/1.2.3.4/udp/4001/quic-v1", false},

		{"empty host", "", 22, "tcp", "", true},
		{"port zero", "1.2.3.4", 0, "tcp", "", true},
		{"port negative", "1.2.3.4", -1, "tcp", "", true},
		{"port too large", "1.2.3.4", 70000, "tcp", "", true},
		{"empty transport", "1.2.3.4", 22, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ma, err := FromHostPort(tt.host, tt.port, tt.transport)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, ma.String())
			}
		})
	}
}

func TestMultiaddr_IPAndPort(t *testing.T) {
	tests := []struct {
		name     string
		addr     string
		wantIP   string
		wantPort int
	}{
		{"ipv4", "/ip4/1.2.3.4/tcp/22", "1.2.3.4", 22},
		{"ipv6", "/ip6/2001:db8::1/tcp/2022", "2001:db8::1", 2022},
		{"udp port", "/ip4/1.2.3.4/udp/4001/quic-v1", "1.2.3.4", 4001},
		{"dns no ip", "/dns4/example.com/tcp/22", "", 22},
		{"no port", "/ip4/1.2.3.4", "1.2.3.4", 0},
		{"empty", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ma := Multiaddr(tt.addr)
			ip := ma.IP()
			if tt.wantIP == "" {
				assert.Nil(t, ip)
			} else {
				require.NotNil(t, ip)
				assert.Equal(t, tt.wantIP, ip.String())
			}
			assert.Equal(t, tt.wantPort, ma.Port())
		})
	}
}

func TestMultiaddr_HostPort(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want string
	}{
		{"ipv4", "/ip4/1.2.3.4/tcp/22", "1.2.3.4:22"},
		{"ipv6 brackets", "/ip6/::1/tcp/22", "[::1]:22"},
		{"dns empty", "/dns4/example.com/tcp/22", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Multiaddr(tt.addr).HostPort())
		})
	}
}

func TestMultiaddr_PeerID(t *testing.T) {
	id := testID(9)

	withID := Multiaddr("/ip4/1.2.3.4/tcp/22/p2p/" + id.String())
	assert.Equal(t, id, withID.PeerID())

	withoutID := Multiaddr("/ip4/1.2.3.4/tcp/22")
	assert.True(t, withoutID.PeerID().IsEmpty())

	badID := Multiaddr("/ip4/1.2.3.4/tcp/22/p2p/not-base58!!")
	assert.True(t, badID.PeerID().IsEmpty())
}

func TestMultiaddr_Transport(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want string
	}{
		{"tcp", "/ip4/1.2.3.4/tcp/22", "tcp"},
		{"quic-v1", "/ip4/1.2.3.4/udp/4001/quic-v1", "quic-v1"},
		{"udp", "/ip4/1.2.3.4/udp/4001", "udp"},
		{"none", "/dns4/example.com", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Multiaddr(tt.addr).Transport())
		})
	}
}

func TestMultiaddr_Classification(t *testing.T) {
	tests := []struct {
		name       string
		addr       string
		isPublic   bool
		isPrivate  bool
		isLoopback bool
	}{
		{"public", "/ip4/8.8.8.8/tcp/22", true, false, false},
		{"private 192", "/ip4/192.168.1.1/tcp/22", false, true, false},
		{"private 10", "/ip4/10.0.0.1/tcp/22", false, true, false},
		{"loopback", "/ip4/127.0.0.1/tcp/22", false, false, true},
		{"loopback ipv6", "/ip6/::1/tcp/22", false, false, true},
		{"localhost dns", "/dns4/localhost/tcp/22", false, false, true},
		{"dns no ip", "/dns4/example.com/tcp/22", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ma := Multiaddr(tt.addr)
			assert.Equal(t, tt.isPublic, ma.IsPublic(), "IsPublic")
			assert.Equal(t, tt.isPrivate, ma.IsPrivate(), "IsPrivate")
			assert.Equal(t, tt.isLoopback, ma.IsLoopback(), "IsLoopback")
		})
	}
}

func TestMultiaddr_Roundtrip(t *testing.T) {
	inputs := []string{
		"/ip4/1.2.3.4/tcp/22",
		"/dns4/example.com/tcp/2022",
		"/ip4/1.2.3.4/tcp/22/p2p/" + testID(5).String(),
	}

	for _, input := range inputs {
		ma1, err := ParseMultiaddr(input)
		require.NoError(t, err)

		ma2, err := ParseMultiaddr(ma1.String())
		require.NoError(t, err)
		assert.True(t, ma1.Equal(ma2))
	}

	t.Log("✅ 地址解析往返测试通过")
}
