package zeroconf

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceNaming(t *testing.T) {
	e := newServiceEntry("ab12cd34", "_peersh._udp", "local")

	assert.Equal(t, "_peersh._udp.local.", e.ServiceName())
	assert.Equal(t, "ab12cd34._peersh._udp.local.", e.ServiceInstanceName())

	t.Run("TrimDots", func(t *testing.T) {
		e := newServiceEntry("inst", "_svc._tcp.", ".local.")
		assert.Equal(t, "_svc._tcp.local.", e.ServiceName())
		assert.Equal(t, "inst._svc._tcp.local.", e.ServiceInstanceName())
	})

	t.Run("InstanceFromFQDN", func(t *testing.T) {
		assert.Equal(t, "ab12cd34", instanceFromFQDN("ab12cd34._peersh._udp.local.", "_peersh._udp.local."))
		assert.Equal(t, "AB12", instanceFromFQDN("AB12._PEERSH._udp.local.", "_peersh._udp.local."))
	})

	t.Run("NameEqual", func(t *testing.T) {
		assert.True(t, nameEqual("_peersh._udp.local.", "_PEERSH._UDP.LOCAL."))
		assert.True(t, nameEqual("_peersh._udp.local", "_peersh._udp.local."))
		assert.False(t, nameEqual("_peersh._udp.local.", "_other._udp.local."))
	})

	t.Run("InstanceOf", func(t *testing.T) {
		assert.True(t, instanceOf("ab12._peersh._udp.local.", "_peersh._udp.local."))
		assert.False(t, instanceOf("_peersh._udp.local.", "_peersh._udp.local."))
		assert.False(t, instanceOf("ab12._other._udp.local.", "_peersh._udp.local."))
	})

	t.Log("✅ 服务命名测试通过")
}

// 合成一条完整的通告报文
func announceFor(instance, serviceName, host string, port uint16, txts []string, ip net.IP, ttl uint32) *dns.Msg {
	instFQDN := instance + "." + serviceName
	msg := new(dns.Msg)
	msg.Response = true
	msg.Authoritative = true
	msg.Answer = []dns.RR{&dns.PTR{
		Hdr: dns.RR_Header{Name: serviceName, Rrtype: dns.TypePTR, Class: dns.ClassINET, Ttl: ttl},
		Ptr: instFQDN,
	}}
	msg.Extra = []dns.RR{
		&dns.SRV{
			Hdr:    dns.RR_Header{Name: instFQDN, Rrtype: dns.TypeSRV, Class: classCacheFlush, Ttl: ttl},
			Port:   port,
			Target: host,
		},
		&dns.TXT{
			Hdr: dns.RR_Header{Name: instFQDN, Rrtype: dns.TypeTXT, Class: classCacheFlush, Ttl: ttl},
			Txt: txts,
		},
		&dns.A{
			Hdr: dns.RR_Header{Name: host, Rrtype: dns.TypeA, Class: classCacheFlush, Ttl: ttl},
			A:   ip,
		},
	}
	return msg
}

func TestProcessMsg(t *testing.T) {
	const serviceName = "_peersh._udp.local."
	ctx := context.Background()

	t.Run("CompleteAnnouncement", func(t *testing.T) {
		r := &Resolver{}
		cache := make(map[string]*ServiceEntry)
		entries := make(chan *ServiceEntry, 8)

		msg := announceFor("ab12cd34", serviceName, "ab12cd34.local.", 4001,
			[]string{"dnsaddr=/ip4/192.168.1.5/tcp/4001"}, net.IPv4(192, 168, 1, 5).To4(), 3200)
		r.processMsg(ctx, msg, serviceName, "_peersh._udp", "local", cache, entries)

		require.Len(t, entries, 1)
		e := <-entries
		assert.Equal(t, "ab12cd34", e.Instance)
		assert.Equal(t, "ab12cd34.local.", e.HostName)
		assert.Equal(t, 4001, e.Port)
		assert.Equal(t, []string{"dnsaddr=/ip4/192.168.1.5/tcp/4001"}, e.Text)
		require.Len(t, e.AddrIPv4, 1)
		assert.True(t, e.AddrIPv4[0].Equal(net.IPv4(192, 168, 1, 5)))

		t.Log("✅ 完整通告解析测试通过")
	})

	t.Run("IncompleteNotEmitted", func(t *testing.T) {
		r := &Resolver{}
		cache := make(map[string]*ServiceEntry)
		entries := make(chan *ServiceEntry, 8)

		// 只有 PTR，没有 SRV
		msg := new(dns.Msg)
		msg.Response = true
		msg.Answer = []dns.RR{&dns.PTR{
			Hdr: dns.RR_Header{Name: serviceName, Rrtype: dns.TypePTR, Class: dns.ClassINET, Ttl: 3200},
			Ptr: "ab12._peersh._udp.local.",
		}}
		r.processMsg(ctx, msg, serviceName, "_peersh._udp", "local", cache, entries)

		assert.Empty(t, entries)
		assert.Len(t, cache, 1)

		t.Log("✅ 记录不全不上报测试通过")
	})

	t.Run("RecordsAcrossMessages", func(t *testing.T) {
		r := &Resolver{}
		cache := make(map[string]*ServiceEntry)
		entries := make(chan *ServiceEntry, 8)

		// SRV 先到，PTR 后到
		first := new(dns.Msg)
		first.Response = true
		first.Answer = []dns.RR{&dns.SRV{
			Hdr:    dns.RR_Header{Name: "ab12._peersh._udp.local.", Rrtype: dns.TypeSRV, Class: classCacheFlush, Ttl: 3200},
			Port:   22,
			Target: "ab12.local.",
		}}
		r.processMsg(ctx, first, serviceName, "_peersh._udp", "local", cache, entries)
		require.Len(t, entries, 1)
		e := <-entries
		assert.Equal(t, "ab12", e.Instance)
		assert.Equal(t, 22, e.Port)

		t.Log("✅ 跨报文聚合测试通过")
	})

	t.Run("GoodbyeRemoves", func(t *testing.T) {
		r := &Resolver{}
		cache := make(map[string]*ServiceEntry)
		entries := make(chan *ServiceEntry, 8)

		msg := announceFor("ab12", serviceName, "ab12.local.", 22, nil, net.IPv4(10, 0, 0, 9).To4(), 3200)
		r.processMsg(ctx, msg, serviceName, "_peersh._udp", "local", cache, entries)
		require.Len(t, cache, 1)
		<-entries

		bye := announceFor("ab12", serviceName, "ab12.local.", 22, nil, net.IPv4(10, 0, 0, 9).To4(), 0)
		r.processMsg(ctx, bye, serviceName, "_peersh._udp", "local", cache, entries)
		assert.Empty(t, cache)
		assert.Empty(t, entries)

		t.Log("✅ 下线清除测试通过")
	})

	t.Run("OtherServiceIgnored", func(t *testing.T) {
		r := &Resolver{}
		cache := make(map[string]*ServiceEntry)
		entries := make(chan *ServiceEntry, 8)

		msg := announceFor("ab12", "_other._udp.local.", "ab12.local.", 22, nil, net.IPv4(10, 0, 0, 9).To4(), 3200)
		r.processMsg(ctx, msg, serviceName, "_peersh._udp", "local", cache, entries)

		assert.Empty(t, cache)
		assert.Empty(t, entries)

		t.Log("✅ 无关服务忽略测试通过")
	})

	t.Run("QueriesIgnored", func(t *testing.T) {
		r := &Resolver{}
		cache := make(map[string]*ServiceEntry)
		entries := make(chan *ServiceEntry, 8)

		q := new(dns.Msg)
		q.SetQuestion(serviceName, dns.TypePTR)
		r.processMsg(ctx, q, serviceName, "_peersh._udp", "local", cache, entries)

		assert.Empty(t, cache)

		t.Log("✅ 查询报文忽略测试通过")
	})
}

func TestRegisterProxyValidation(t *testing.T) {
	cases := []struct {
		name     string
		instance string
		service  string
		host     string
		port     int
		ips      []string
	}{
		{"EmptyInstance", "", "_peersh._udp", "h", 22, []string{"192.168.1.5"}},
		{"EmptyService", "inst", "", "h", 22, []string{"192.168.1.5"}},
		{"EmptyHost", "inst", "_peersh._udp", "", 22, []string{"192.168.1.5"}},
		{"ZeroPort", "inst", "_peersh._udp", "h", 0, []string{"192.168.1.5"}},
		{"BadIP", "inst", "_peersh._udp", "h", 22, []string{"not-an-ip"}},
		{"NoIPs", "inst", "_peersh._udp", "h", 22, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := RegisterProxy(tc.instance, tc.service, "local", tc.port, tc.host, tc.ips, nil, nil)
			assert.Error(t, err)
		})
	}

	t.Log("✅ 注册参数校验测试通过")
}

func TestRegisterAndBrowse(t *testing.T) {
	t.Skip("需要真实网络环境")

	server, err := RegisterProxy("testinst", "_peersh._udp", "local", 4001,
		"testinst", []string{"192.168.1.5"}, []string{"dnsaddr=/ip4/192.168.1.5/tcp/4001"}, nil)
	require.NoError(t, err)
	defer server.Shutdown()

	resolver, err := NewResolver(nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries := make(chan *ServiceEntry, 16)
	go func() { _ = resolver.Browse(ctx, "_peersh._udp", "local", entries) }()

	for e := range entries {
		if e.Instance == "testinst" {
			assert.Equal(t, 4001, e.Port)
			return
		}
	}
	t.Fatal("未发现注册的服务实例")
}
