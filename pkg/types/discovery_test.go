package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceRank(t *testing.T) {
	// 本地发现优先于静态配置，静态配置优先于 DHT
	assert.Less(t, SourceRank(SourceMDNS), SourceRank(SourceStatic))
	assert.Less(t, SourceRank(SourceStatic), SourceRank(SourceDHT))
	assert.Less(t, SourceRank(SourceDHT), SourceRank("bogus"))

	t.Log("✅ 来源权重排序测试通过")
}

func TestPeerInfo_HasAddrs(t *testing.T) {
	pi := PeerInfo{ID: testID(1)}
	assert.False(t, pi.HasAddrs())

	pi.Addrs = []Multiaddr{MustParseMultiaddr("/ip4/192.168.1.5/tcp/22")}
	assert.True(t, pi.HasAddrs())
}

func TestNewPeerInfo(t *testing.T) {
	id := testID(2)
	addrs := []Multiaddr{
		MustParseMultiaddr("/ip4/192.168.1.5/tcp/22"),
		MustParseMultiaddr("/dns4/host.local/tcp/22"),
	}

	pi := NewPeerInfo(id, addrs, SourceMDNS)
	assert.Equal(t, id, pi.ID)
	assert.Equal(t, addrs, pi.Addrs)
	assert.Equal(t, SourceMDNS, pi.Source)
	assert.False(t, pi.DiscoveredAt.IsZero())
	assert.Equal(t,
		[]string{"/ip4/192.168.1.5/tcp/22", "/dns4/host.local/tcp/22"},
		pi.AddrsToStrings(),
	)
}

func TestNewPeerInfoFromStrings(t *testing.T) {
	pi := NewPeerInfoFromStrings(testID(3), []string{
		"/ip4/10.0.0.7/tcp/22",
		"not-a-multiaddr",
		"/ip6/::1/tcp/22",
	}, SourceStatic)

	// 无法解析的地址被丢弃，其余保留原顺序
	require.Len(t, pi.Addrs, 2)
	assert.Equal(t, Multiaddr("/ip4/10.0.0.7/tcp/22"), pi.Addrs[0])
	assert.Equal(t, Multiaddr("/ip6/::1/tcp/22"), pi.Addrs[1])
	assert.Equal(t, SourceStatic, pi.Source)
}
