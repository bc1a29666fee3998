package dhtadapter

import (
	"context"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-peersh/config"
	"github.com/dep2p/go-peersh/pkg/interfaces"
	"github.com/dep2p/go-peersh/pkg/types"
)

// testNodeID 从种子字节构造确定性的节点 ID
func testNodeID(seed byte) types.NodeID {
	sum := sha256.Sum256([]byte{seed})
	id, _ := types.NodeIDFromBytes(sum[:])
	return id
}

func testTable() *Table {
	return New(config.DHTConfig{QueryTimeout: config.Duration(time.Second)})
}

// awaitEvent 等待一条 DHT 事件
func awaitEvent(t *testing.T, tb *Table) interfaces.DHTEvent {
	t.Helper()
	select {
	case ev := <-tb.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("等待 DHT 事件超时")
		return interfaces.DHTEvent{}
	}
}

func TestTable_AddAddress(t *testing.T) {
	peer := testNodeID(1)
	addr := types.MustParseMultiaddr("/ip4/10.0.0.9/tcp/4001")

	t.Run("AddAndRead", func(t *testing.T) {
		tb := testTable()
		defer tb.Close()

		require.NoError(t, tb.AddAddress(peer, addr))
		require.Equal(t, 1, tb.Len())
		got := tb.Addrs(peer)
		require.Len(t, got, 1)
		assert.True(t, got[0].Equal(addr))
	})

	t.Run("DuplicateIgnored", func(t *testing.T) {
		tb := testTable()
		defer tb.Close()

		require.NoError(t, tb.AddAddress(peer, addr))
		require.NoError(t, tb.AddAddress(peer, addr))
		assert.Len(t, tb.Addrs(peer), 1)
	})

	t.Run("EmptyInputs", func(t *testing.T) {
		tb := testTable()
		defer tb.Close()

		require.ErrorIs(t, tb.AddAddress(types.EmptyNodeID, addr), ErrEmptyPeerID)
		require.ErrorIs(t, tb.AddAddress(peer, ""), ErrEmptyAddr)
	})

	t.Run("AfterClose", func(t *testing.T) {
		tb := testTable()
		require.NoError(t, tb.Close())
		require.ErrorIs(t, tb.AddAddress(peer, addr), ErrClosed)
	})
}

func TestTable_GetClosestPeers(t *testing.T) {
	target := testNodeID(1)
	addr := types.MustParseMultiaddr("/ip4/10.0.0.9/tcp/4001")
	ctx := context.Background()

	t.Run("HitReportsAddrs", func(t *testing.T) {
		tb := testTable()
		defer tb.Close()
		require.NoError(t, tb.AddAddress(target, addr))

		require.NoError(t, tb.GetClosestPeers(ctx, target))

		ev := awaitEvent(t, tb)
		assert.True(t, ev.Peer.ID.Equal(target))
		assert.Equal(t, types.SourceDHT, ev.Peer.Source)
		assert.Equal(t, interfaces.RoutingPending, ev.Status)
		require.Len(t, ev.Peer.Addrs, 1)
		assert.True(t, ev.Peer.Addrs[0].Equal(addr))
	})

	t.Run("MissReportsEmptyEvent", func(t *testing.T) {
		tb := testTable()
		defer tb.Close()

		require.NoError(t, tb.GetClosestPeers(ctx, target))

		ev := awaitEvent(t, tb)
		assert.True(t, ev.Peer.ID.Equal(target))
		assert.Empty(t, ev.Peer.Addrs)
		assert.Equal(t, interfaces.RoutingUnknown, ev.Status)
	})

	t.Run("EmptyTarget", func(t *testing.T) {
		tb := testTable()
		defer tb.Close()
		require.ErrorIs(t, tb.GetClosestPeers(ctx, types.EmptyNodeID), ErrEmptyPeerID)
	})

	t.Run("AfterClose", func(t *testing.T) {
		tb := testTable()
		require.NoError(t, tb.Close())
		require.ErrorIs(t, tb.GetClosestPeers(ctx, target), ErrClosed)
	})
}

func TestTable_Bootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("ReplaysAllEntries", func(t *testing.T) {
		tb := testTable()
		defer tb.Close()

		a, b := testNodeID(1), testNodeID(2)
		require.NoError(t, tb.AddAddress(a, types.MustParseMultiaddr("/ip4/10.0.0.1/tcp/22")))
		require.NoError(t, tb.AddAddress(b, types.MustParseMultiaddr("/ip4/10.0.0.2/tcp/22")))

		require.NoError(t, tb.Bootstrap(ctx))

		seen := map[string]bool{}
		for i := 0; i < 2; i++ {
			ev := awaitEvent(t, tb)
			seen[ev.Peer.ID.String()] = true
			assert.Equal(t, interfaces.RoutingUnknown, ev.Status)
		}
		assert.True(t, seen[a.String()])
		assert.True(t, seen[b.String()])
	})

	t.Run("EmptyTableNoEvents", func(t *testing.T) {
		tb := testTable()
		defer tb.Close()

		require.NoError(t, tb.Bootstrap(ctx))

		select {
		case ev := <-tb.Events():
			t.Fatalf("空表不应产生事件: %+v", ev)
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("AfterClose", func(t *testing.T) {
		tb := testTable()
		require.NoError(t, tb.Close())
		require.ErrorIs(t, tb.Bootstrap(ctx), ErrClosed)
	})
}

func TestTable_Seeding(t *testing.T) {
	a, b := testNodeID(1), testNodeID(2)
	tb := New(config.DHTConfig{QueryTimeout: config.Duration(time.Second)},
		types.NewPeerInfoFromStrings(a, []string{"/ip4/10.0.0.1/tcp/22"}, types.SourceStatic),
		types.NewPeerInfoFromStrings(b, []string{"/ip4/10.0.0.2/tcp/22", "/ip6/fd00::2/tcp/22"}, types.SourceStatic),
	)
	defer tb.Close()

	assert.Equal(t, 2, tb.Len())
	assert.Len(t, tb.Addrs(a), 1)
	assert.Len(t, tb.Addrs(b), 2)

	t.Log("✅ 种子表预播种测试通过")
}

func TestTable_Close(t *testing.T) {
	t.Run("Idempotent", func(t *testing.T) {
		tb := testTable()
		require.NoError(t, tb.Close())
		require.NoError(t, tb.Close())
	})

	t.Run("EventsClosedAfterClose", func(t *testing.T) {
		tb := testTable()
		require.NoError(t, tb.Close())

		_, ok := <-tb.Events()
		assert.False(t, ok)
	})

	t.Run("PendingDeliveryUnblocked", func(t *testing.T) {
		tb := New(config.DHTConfig{})
		target := testNodeID(1)

		// 填满缓冲让后续投递挂起
		for i := 0; i < eventBuffer+8; i++ {
			require.NoError(t, tb.GetClosestPeers(context.Background(), target))
		}

		done := make(chan struct{})
		go func() {
			_ = tb.Close()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Close 被在途投递阻塞")
		}
	})
}
