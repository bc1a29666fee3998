package mdns

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-peersh/pkg/lib/zeroconf"
	"github.com/dep2p/go-peersh/pkg/types"
)

func entryWithTXT(txts ...string) *zeroconf.ServiceEntry {
	return &zeroconf.ServiceEntry{
		Instance: "abc123",
		Service:  "_peersh-test._udp",
		Domain:   "local",
		Text:     txts,
	}
}

// drain 读空通道里已有的事件
func drain(ch <-chan types.PeerInfo) []types.PeerInfo {
	var out []types.PeerInfo
	for {
		select {
		case pi := <-ch:
			out = append(out, pi)
		default:
			return out
		}
	}
}

func TestNotifee_HandleEntry(t *testing.T) {
	self := testNodeID(1)
	peer := testNodeID(2)

	newTestNotifee := func() (*peerNotifee, chan types.PeerInfo) {
		ch := make(chan types.PeerInfo, 16)
		return newPeerNotifee(context.Background(), self, ch), ch
	}

	t.Run("EmitsDiscoveredPeer", func(t *testing.T) {
		n, ch := newTestNotifee()

		n.handleEntry(entryWithTXT(DNSAddrPrefix + "/ip4/192.168.1.5/tcp/4001/p2p/" + peer.String()))

		events := drain(ch)
		require.Len(t, events, 1)
		assert.True(t, events[0].ID.Equal(peer))
		assert.Equal(t, types.SourceMDNS, events[0].Source)
		require.Len(t, events[0].Addrs, 1)
		assert.Equal(t, "/ip4/192.168.1.5/tcp/4001", events[0].Addrs[0].String())
	})

	t.Run("SkipsSelf", func(t *testing.T) {
		n, ch := newTestNotifee()

		n.handleEntry(entryWithTXT(DNSAddrPrefix + "/ip4/192.168.1.5/tcp/4001/p2p/" + self.String()))

		assert.Empty(t, drain(ch))
	})

	t.Run("DedupWithinWindow", func(t *testing.T) {
		n, ch := newTestNotifee()
		txt := DNSAddrPrefix + "/ip4/192.168.1.5/tcp/4001/p2p/" + peer.String()

		n.handleEntry(entryWithTXT(txt))
		n.handleEntry(entryWithTXT(txt))

		assert.Len(t, drain(ch), 1)
	})

	t.Run("GroupsAddrsOfSamePeer", func(t *testing.T) {
		n, ch := newTestNotifee()

		n.handleEntry(entryWithTXT(
			DNSAddrPrefix+"/ip4/192.168.1.5/tcp/4001/p2p/"+peer.String(),
			DNSAddrPrefix+"/ip6/fd00::1/tcp/4001/p2p/"+peer.String(),
		))

		events := drain(ch)
		require.Len(t, events, 1)
		assert.Len(t, events[0].Addrs, 2)
	})

	t.Run("MultiplePeersInOneEntry", func(t *testing.T) {
		n, ch := newTestNotifee()
		other := testNodeID(3)

		n.handleEntry(entryWithTXT(
			DNSAddrPrefix+"/ip4/192.168.1.5/tcp/4001/p2p/"+peer.String(),
			DNSAddrPrefix+"/ip4/192.168.1.6/tcp/4001/p2p/"+other.String(),
		))

		events := drain(ch)
		require.Len(t, events, 2)
		ids := map[string]bool{
			events[0].ID.String(): true,
			events[1].ID.String(): true,
		}
		assert.True(t, ids[peer.String()])
		assert.True(t, ids[other.String()])
	})

	t.Run("IgnoresMalformedTXT", func(t *testing.T) {
		n, ch := newTestNotifee()

		n.handleEntry(entryWithTXT(
			"version=1",
			DNSAddrPrefix+"not-a-multiaddr",
			DNSAddrPrefix+"/ip4/192.168.1.5/tcp/4001", // 缺少 /p2p/ 后缀
		))

		assert.Empty(t, drain(ch))
	})

	t.Run("NilEntry", func(t *testing.T) {
		n, ch := newTestNotifee()
		n.handleEntry(nil)
		assert.Empty(t, drain(ch))
	})

	t.Run("ClosedDropsEvents", func(t *testing.T) {
		n, ch := newTestNotifee()
		n.close()

		n.handleEntry(entryWithTXT(DNSAddrPrefix + "/ip4/192.168.1.5/tcp/4001/p2p/" + peer.String()))

		assert.Empty(t, drain(ch))
	})

	t.Log("✅ 发现事件转换测试通过")
}

func TestNotifee_CancelledContext(t *testing.T) {
	self := testNodeID(1)
	peer := testNodeID(2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// 无缓冲通道且无消费者，ctx 取消保证 handleEntry 不会卡住
	ch := make(chan types.PeerInfo)
	n := newPeerNotifee(ctx, self, ch)

	n.handleEntry(entryWithTXT(DNSAddrPrefix + "/ip4/192.168.1.5/tcp/4001/p2p/" + peer.String()))
}
