package static

import (
	"context"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-peersh/config"
	"github.com/dep2p/go-peersh/pkg/types"
)

// testNodeID 从种子字节构造确定性的节点 ID
func testNodeID(seed byte) types.NodeID {
	sum := sha256.Sum256([]byte{seed})
	id, _ := types.NodeIDFromBytes(sum[:])
	return id
}

func TestNew(t *testing.T) {
	self := testNodeID(1)
	peer := testNodeID(2)

	t.Run("Valid", func(t *testing.T) {
		src, err := New([]config.KnownPeer{
			{PeerID: peer.String(), Addrs: []string{"/ip4/10.0.0.9/tcp/22"}},
		}, self)
		require.NoError(t, err)
		require.NotNil(t, src)
	})

	t.Run("NoPeers", func(t *testing.T) {
		_, err := New(nil, self)
		require.ErrorIs(t, err, ErrNoPeers)
	})

	t.Run("BadPeerID", func(t *testing.T) {
		_, err := New([]config.KnownPeer{
			{PeerID: "not-base58!", Addrs: []string{"/ip4/10.0.0.9/tcp/22"}},
		}, self)
		require.ErrorIs(t, err, ErrInvalidPeer)
	})

	t.Run("BadAddr", func(t *testing.T) {
		_, err := New([]config.KnownPeer{
			{PeerID: peer.String(), Addrs: []string{"10.0.0.9:22"}},
		}, self)
		require.ErrorIs(t, err, ErrInvalidPeer)
	})

	t.Run("NoAddrs", func(t *testing.T) {
		_, err := New([]config.KnownPeer{
			{PeerID: peer.String(), Addrs: nil},
		}, self)
		require.ErrorIs(t, err, ErrInvalidPeer)
	})

	t.Run("FullAddrMatchingIDStripped", func(t *testing.T) {
		src, err := New([]config.KnownPeer{
			{PeerID: peer.String(), Addrs: []string{"/ip4/10.0.0.9/tcp/22/p2p/" + peer.String()}},
		}, self)
		require.NoError(t, err)

		require.NoError(t, src.Start(context.Background()))
		pi := <-src.Events()
		require.Len(t, pi.Addrs, 1)
		assert.Equal(t, "/ip4/10.0.0.9/tcp/22", pi.Addrs[0].String())
	})

	t.Run("FullAddrMismatchedID", func(t *testing.T) {
		other := testNodeID(3)
		_, err := New([]config.KnownPeer{
			{PeerID: peer.String(), Addrs: []string{"/ip4/10.0.0.9/tcp/22/p2p/" + other.String()}},
		}, self)
		require.ErrorIs(t, err, ErrInvalidPeer)
	})

	t.Run("SelfEntriesSkipped", func(t *testing.T) {
		src, err := New([]config.KnownPeer{
			{PeerID: self.String(), Addrs: []string{"/ip4/10.0.0.1/tcp/22"}},
			{PeerID: peer.String(), Addrs: []string{"/ip4/10.0.0.9/tcp/22"}},
		}, self)
		require.NoError(t, err)

		require.NoError(t, src.Start(context.Background()))
		pi := <-src.Events()
		assert.True(t, pi.ID.Equal(peer))
		assert.Len(t, src.peers, 1)
	})

	t.Run("OnlySelfEntries", func(t *testing.T) {
		_, err := New([]config.KnownPeer{
			{PeerID: self.String(), Addrs: []string{"/ip4/10.0.0.1/tcp/22"}},
		}, self)
		require.ErrorIs(t, err, ErrNoPeers)
	})

	t.Log("✅ 静态节点配置校验测试通过")
}

func TestSourceLifecycle(t *testing.T) {
	self := testNodeID(1)
	known := []config.KnownPeer{
		{PeerID: testNodeID(2).String(), Addrs: []string{"/ip4/10.0.0.9/tcp/22"}},
		{PeerID: testNodeID(3).String(), Addrs: []string{"/ip4/10.0.0.10/tcp/22", "/ip6/fd00::1/tcp/22"}},
	}
	ctx := context.Background()

	t.Run("EmitsAllOnStart", func(t *testing.T) {
		src, err := New(known, self)
		require.NoError(t, err)
		require.Equal(t, types.SourceStatic, src.Name())

		require.NoError(t, src.Start(ctx))

		var got []types.PeerInfo
		for i := 0; i < 2; i++ {
			select {
			case pi := <-src.Events():
				got = append(got, pi)
			case <-time.After(time.Second):
				t.Fatal("事件不足")
			}
		}
		require.Len(t, got, 2)
		for _, pi := range got {
			assert.Equal(t, types.SourceStatic, pi.Source)
			assert.NotEmpty(t, pi.Addrs)
		}
	})

	t.Run("DoubleStart", func(t *testing.T) {
		src, err := New(known, self)
		require.NoError(t, err)
		require.NoError(t, src.Start(ctx))
		require.ErrorIs(t, src.Start(ctx), ErrAlreadyStarted)
	})

	t.Run("StopClosesEvents", func(t *testing.T) {
		src, err := New(known, self)
		require.NoError(t, err)
		require.NoError(t, src.Start(ctx))
		require.NoError(t, src.Stop(ctx))

		// 已缓冲事件仍可读完，然后通道关闭
		count := 0
		for range src.Events() {
			count++
		}
		assert.Equal(t, 2, count)
	})

	t.Run("StopIdempotent", func(t *testing.T) {
		src, err := New(known, self)
		require.NoError(t, err)
		require.NoError(t, src.Stop(ctx))
		require.NoError(t, src.Stop(ctx))
	})

	t.Run("StartAfterStop", func(t *testing.T) {
		src, err := New(known, self)
		require.NoError(t, err)
		require.NoError(t, src.Stop(ctx))
		require.ErrorIs(t, src.Start(ctx), ErrAlreadyClosed)
	})

	t.Log("✅ 静态发现源生命周期测试通过")
}
