package multiaddr

import (
	"testing"
)

// TestSplit 测试分离传输地址和 P2P 组件
func TestSplit(t *testing.T) {
	tests := []struct {
		name          string
		addr          string
		wantTransport string
		wantPeerID    string
	}{
		{
			"With P2P",
			"/ip4/127.0.0.1/tcp/4001/p2p/" + testPeerID,
			"/ip4/127.0.0.1/tcp/4001",
			testPeerID,
		},
		{
			"Without P2P",
			"/ip4/127.0.0.1/tcp/4001",
			"/ip4/127.0.0.1/tcp/4001",
			"",
		},
		{
			"P2P only",
			"/p2p/" + testPeerID,
			"",
			testPeerID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ma, err := NewMultiaddr(tt.addr)
			if err != nil {
				t.Fatalf("NewMultiaddr() error = %v", err)
			}

			transport, peerID := Split(ma)

			gotTransport := ""
			if transport != nil {
				gotTransport = transport.String()
			}
			if gotTransport != tt.wantTransport {
				t.Errorf("Split() transport = %q, want %q", gotTransport, tt.wantTransport)
			}
			if peerID != tt.wantPeerID {
				t.Errorf("Split() peerID = %q, want %q", peerID, tt.wantPeerID)
			}
		})
	}
}

// TestJoin 测试合并传输地址和 P2P 组件
func TestJoin(t *testing.T) {
	transport, _ := NewMultiaddr("/ip4/127.0.0.1/tcp/4001")

	full := Join(transport, testPeerID)
	want := "/ip4/127.0.0.1/tcp/4001/p2p/" + testPeerID
	if full.String() != want {
		t.Errorf("Join() = %v, want %v", full.String(), want)
	}

	// 空 PeerID 返回传输地址
	same := Join(transport, "")
	if !same.Equal(transport) {
		t.Error("Join with empty peerID should return transport")
	}

	// nil 传输地址返回纯 P2P 地址
	p2pOnly := Join(nil, testPeerID)
	if p2pOnly.String() != "/p2p/"+testPeerID {
		t.Errorf("Join(nil, id) = %v", p2pOnly.String())
	}
}

// TestSplitJoinRoundTrip 测试分离合并往返
func TestSplitJoinRoundTrip(t *testing.T) {
	original := "/ip4/10.0.0.5/tcp/22/p2p/" + testPeerID
	ma, _ := NewMultiaddr(original)

	transport, peerID := Split(ma)
	back := Join(transport, peerID)

	if back.String() != original {
		t.Errorf("round trip = %v, want %v", back.String(), original)
	}
}

// TestFilterAddrs 测试地址过滤
func TestFilterAddrs(t *testing.T) {
	addrs := []Multiaddr{
		mustAddr(t, "/ip4/127.0.0.1/tcp/4001"),
		mustAddr(t, "/ip4/192.168.1.1/udp/5353"),
		mustAddr(t, "/ip4/10.0.0.1/tcp/22"),
	}

	tcpOnly := FilterAddrs(addrs, IsTCPMultiaddr)
	if len(tcpOnly) != 2 {
		t.Errorf("FilterAddrs(TCP) returned %d addrs, want 2", len(tcpOnly))
	}

	udpOnly := FilterAddrs(addrs, IsUDPMultiaddr)
	if len(udpOnly) != 1 {
		t.Errorf("FilterAddrs(UDP) returned %d addrs, want 1", len(udpOnly))
	}
}

// TestUniqueAddrs 测试地址去重
func TestUniqueAddrs(t *testing.T) {
	addrs := []Multiaddr{
		mustAddr(t, "/ip4/127.0.0.1/tcp/4001"),
		mustAddr(t, "/ip4/127.0.0.1/tcp/4001"),
		mustAddr(t, "/ip4/10.0.0.1/tcp/22"),
	}

	unique := UniqueAddrs(addrs)
	if len(unique) != 2 {
		t.Errorf("UniqueAddrs() returned %d addrs, want 2", len(unique))
	}

	// 保持首次出现的顺序
	if unique[0].String() != "/ip4/127.0.0.1/tcp/4001" {
		t.Errorf("UniqueAddrs()[0] = %v", unique[0].String())
	}
}

// TestGetPeerID 测试提取 PeerID
func TestGetPeerID(t *testing.T) {
	withPeer := mustAddr(t, "/ip4/1.2.3.4/tcp/4001/p2p/"+testPeerID)

	id, err := GetPeerID(withPeer)
	if err != nil {
		t.Fatalf("GetPeerID() error = %v", err)
	}
	if id != testPeerID {
		t.Errorf("GetPeerID() = %q, want %q", id, testPeerID)
	}

	withoutPeer := mustAddr(t, "/ip4/1.2.3.4/tcp/4001")
	if _, err := GetPeerID(withoutPeer); err == nil {
		t.Error("GetPeerID() should fail without P2P component")
	}
}

// TestWithPeerID 测试添加或替换 PeerID
func TestWithPeerID(t *testing.T) {
	base := mustAddr(t, "/ip4/1.2.3.4/tcp/4001")

	ma, err := WithPeerID(base, testPeerID)
	if err != nil {
		t.Fatalf("WithPeerID() error = %v", err)
	}
	if ma.String() != "/ip4/1.2.3.4/tcp/4001/p2p/"+testPeerID {
		t.Errorf("WithPeerID() = %v", ma.String())
	}

	// 替换已有 PeerID
	otherID := testPeerID[:31] + "3"
	replaced, err := WithPeerID(ma, otherID)
	if err != nil {
		t.Fatalf("WithPeerID() error = %v", err)
	}
	if replaced.String() != "/ip4/1.2.3.4/tcp/4001/p2p/"+otherID {
		t.Errorf("WithPeerID() replace = %v", replaced.String())
	}
}

// TestWithoutPeerID 测试移除 PeerID
func TestWithoutPeerID(t *testing.T) {
	full := mustAddr(t, "/ip4/1.2.3.4/tcp/4001/p2p/"+testPeerID)

	stripped := WithoutPeerID(full)
	if stripped.String() != "/ip4/1.2.3.4/tcp/4001" {
		t.Errorf("WithoutPeerID() = %v", stripped.String())
	}
}

// TestSplitFirst 测试分离第一个组件
func TestSplitFirst(t *testing.T) {
	ma := mustAddr(t, "/ip4/192.168.1.5/tcp/2222")

	comp, rest := SplitFirst(ma)
	if comp.Protocol().Name != "ip4" {
		t.Errorf("SplitFirst() protocol = %q, want ip4", comp.Protocol().Name)
	}
	if comp.Value() != "192.168.1.5" {
		t.Errorf("SplitFirst() value = %q", comp.Value())
	}
	if rest == nil || rest.String() != "/tcp/2222" {
		t.Errorf("SplitFirst() rest = %v", rest)
	}

	// 单组件地址的剩余部分为 nil
	single := mustAddr(t, "/tcp/2222")
	comp, rest = SplitFirst(single)
	if comp.Protocol().Name != "tcp" || comp.Value() != "2222" {
		t.Errorf("SplitFirst() = %v/%v", comp.Protocol().Name, comp.Value())
	}
	if rest != nil {
		t.Errorf("SplitFirst() rest = %v, want nil", rest)
	}
}

// TestForEach 测试组件遍历
func TestForEach(t *testing.T) {
	ma := mustAddr(t, "/ip4/1.2.3.4/udp/4001/quic-v1")

	var names []string
	ForEach(ma, func(c Component) bool {
		names = append(names, c.Protocol().Name)
		return true
	})

	want := []string{"ip4", "udp", "quic-v1"}
	if len(names) != len(want) {
		t.Fatalf("ForEach visited %d components, want %d", len(names), len(want))
	}
	for i := range names {
		if names[i] != want[i] {
			t.Errorf("ForEach()[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	// 提前终止
	count := 0
	ForEach(ma, func(c Component) bool {
		count++
		return false
	})
	if count != 1 {
		t.Errorf("ForEach early stop visited %d components, want 1", count)
	}
}

func mustAddr(t *testing.T, s string) Multiaddr {
	t.Helper()
	ma, err := NewMultiaddr(s)
	if err != nil {
		t.Fatalf("NewMultiaddr(%q) error = %v", s, err)
	}
	return ma
}
