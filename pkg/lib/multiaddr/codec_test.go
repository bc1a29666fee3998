package multiaddr

import (
	"bytes"
	"testing"
)

// TestStringToBytes 测试字符串到字节的编码
func TestStringToBytes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"IPv4 + TCP", "/ip4/127.0.0.1/tcp/4001", false},
		{"IPv6 + TCP", "/ip6/::1/tcp/4001", false},
		{"DNS + TCP", "/dns/example.com/tcp/80", false},
		{"With P2P", "/ip4/1.2.3.4/tcp/4001/p2p/" + testPeerID, false},
		{"Trailing slash", "/ip4/127.0.0.1/tcp/4001/", false},
		{"Empty", "", true},
		{"No leading slash", "ip4/127.0.0.1", true},
		{"Unknown protocol", "/bogus/1", true},
		{"Missing value", "/ip4", true},
		{"Bad value", "/ip4/not-an-ip", true},
		{"Port out of range", "/ip4/1.2.3.4/tcp/70000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := stringToBytes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("stringToBytes() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestBytesToString 测试字节到字符串的解码
func TestBytesToString(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    string
		wantErr bool
	}{
		{
			"IPv4 + TCP",
			[]byte{0x04, 127, 0, 0, 1, 0x06, 0x0f, 0xa1},
			"/ip4/127.0.0.1/tcp/4001",
			false,
		},
		{"Empty", []byte{}, "", true},
		{"Unknown code", []byte{0xff, 0xff, 0x03}, "", true},
		{"Truncated value", []byte{0x04, 127, 0}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bytesToString(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("bytesToString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("bytesToString() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestCodecRoundTrip 测试编码解码往返
func TestCodecRoundTrip(t *testing.T) {
	addrs := []string{
		"/ip4/127.0.0.1/tcp/4001",
		"/ip6/::1/udp/5353",
		"/ip4/224.0.0.251/udp/5353",
		"/dns4/peer.example.com/tcp/22",
		"/dnsaddr/peer.local",
		"/ip4/10.0.0.1/udp/4001/quic-v1",
		"/ip4/10.0.0.1/tcp/8080/ws",
		"/ip4/1.2.3.4/tcp/4001/p2p/" + testPeerID,
	}

	for _, addr := range addrs {
		t.Run(addr, func(t *testing.T) {
			b, err := stringToBytes(addr)
			if err != nil {
				t.Fatalf("stringToBytes() error = %v", err)
			}

			s, err := bytesToString(b)
			if err != nil {
				t.Fatalf("bytesToString() error = %v", err)
			}

			if s != addr {
				t.Errorf("round trip = %q, want %q", s, addr)
			}

			// 二次编码应产生相同的字节
			b2, err := stringToBytes(s)
			if err != nil {
				t.Fatalf("second stringToBytes() error = %v", err)
			}
			if !bytes.Equal(b, b2) {
				t.Error("re-encoding produced different bytes")
			}
		})
	}
}

// TestValidateBytes 测试二进制格式校验
func TestValidateBytes(t *testing.T) {
	valid, err := stringToBytes("/ip4/127.0.0.1/tcp/4001")
	if err != nil {
		t.Fatalf("stringToBytes() error = %v", err)
	}

	if err := validateBytes(valid); err != nil {
		t.Errorf("validateBytes() error = %v for valid bytes", err)
	}

	if err := validateBytes(nil); err == nil {
		t.Error("validateBytes(nil) should fail")
	}

	if err := validateBytes([]byte{0xff, 0xff, 0x03}); err == nil {
		t.Error("validateBytes should reject unknown protocol code")
	}
}
