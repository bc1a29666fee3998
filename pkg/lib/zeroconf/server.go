package zeroconf

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
)

// defaultTTL 通告记录的存活期（秒）
const defaultTTL uint32 = 3200

// classCacheFlush 带缓存刷新位的 INET 类（RFC 6762 §10.2）
const classCacheFlush = dns.ClassINET | 1<<15

// Server 已注册服务的 mDNS 广播端
//
// 注册后在组播组内应答针对本服务的查询，并周期性主动通告。
// Shutdown 发送下线报文（TTL 0）后关闭套接字。
type Server struct {
	entry *ServiceEntry
	conn  *dualConn
	ttl   uint32

	stop     chan struct{}
	wg       sync.WaitGroup
	shutdown sync.Once
}

// RegisterProxy 注册一个服务实例并开始广播
//
// instance 为实例名，service 形如 "_peersh._udp"，domain 空时取
// "local"。ips 是要通告的本机地址，text 为 TXT 记录内容。
// ifaces 为 nil 时使用所有支持组播的接口。
func RegisterProxy(instance, service, domain string, port int, host string, ips []string, text []string, ifaces []net.Interface) (*Server, error) {
	if instance == "" {
		return nil, errors.New("zeroconf: missing service instance name")
	}
	if service == "" {
		return nil, errors.New("zeroconf: missing service name")
	}
	if host == "" {
		return nil, errors.New("zeroconf: missing host name")
	}
	if port <= 0 {
		return nil, errors.New("zeroconf: missing port")
	}
	if domain == "" {
		domain = "local"
	}

	entry := newServiceEntry(instance, service, domain)
	entry.Port = port
	entry.HostName = fmt.Sprintf("%s.%s.", trimDot(host), trimDot(domain))
	entry.Text = text
	for _, ip := range ips {
		parsed := net.ParseIP(ip)
		if parsed == nil {
			return nil, fmt.Errorf("zeroconf: failed to parse ip %q", ip)
		}
		if v4 := parsed.To4(); v4 != nil {
			entry.AddrIPv4 = append(entry.AddrIPv4, v4)
		} else {
			entry.AddrIPv6 = append(entry.AddrIPv6, parsed)
		}
	}
	if len(entry.AddrIPv4)+len(entry.AddrIPv6) == 0 {
		return nil, errors.New("zeroconf: no addresses to announce")
	}

	conn, err := newDualConn(ifaces)
	if err != nil {
		return nil, err
	}

	s := &Server{
		entry: entry,
		conn:  conn,
		ttl:   defaultTTL,
		stop:  make(chan struct{}),
	}

	msgCh := make(chan *dns.Msg, 32)
	s.wg.Add(2)
	go func() { defer s.wg.Done(); conn.recv4(msgCh) }()
	go func() { defer s.wg.Done(); conn.recv6(msgCh) }()

	s.wg.Add(2)
	go s.mainloop(msgCh)
	go s.announce()

	return s, nil
}

// Shutdown 下线服务并关闭套接字，幂等
func (s *Server) Shutdown() {
	s.shutdown.Do(func() {
		close(s.stop)
		// 先发下线报文再关套接字
		_ = s.conn.send(s.announceMsg(0))
		s.conn.close()
		s.wg.Wait()
	})
}

// mainloop 应答收到的查询
func (s *Server) mainloop(msgCh <-chan *dns.Msg) {
	defer s.wg.Done()
	for {
		select {
		case <-s.stop:
			return
		case msg := <-msgCh:
			if msg == nil || msg.Response {
				continue
			}
			s.handleQuery(msg)
		}
	}
}

// handleQuery 针对每个问题构造并组播应答
func (s *Server) handleQuery(query *dns.Msg) {
	for _, q := range query.Question {
		resp := new(dns.Msg)
		resp.SetReply(query)
		resp.Compress = true
		resp.RecursionDesired = false
		resp.Authoritative = true
		// RFC 6762 §6: 应答不携带问题段
		resp.Question = nil

		switch {
		case nameEqual(q.Name, s.entry.ServiceName()):
			if q.Qtype != dns.TypePTR && q.Qtype != dns.TypeANY {
				continue
			}
			resp.Answer = []dns.RR{s.ptrRecord(s.ttl)}
			resp.Extra = append(s.instanceRecords(s.ttl), s.addrRecords(s.ttl)...)

		case nameEqual(q.Name, s.entry.ServiceInstanceName()):
			if q.Qtype != dns.TypeSRV && q.Qtype != dns.TypeTXT && q.Qtype != dns.TypeANY {
				continue
			}
			resp.Answer = s.instanceRecords(s.ttl)
			resp.Extra = s.addrRecords(s.ttl)

		case nameEqual(q.Name, s.entry.HostName):
			if q.Qtype != dns.TypeA && q.Qtype != dns.TypeAAAA && q.Qtype != dns.TypeANY {
				continue
			}
			resp.Answer = s.addrRecords(s.ttl)

		default:
			continue
		}

		if len(resp.Answer) > 0 {
			_ = s.conn.send(resp)
		}
	}
}

// announce 启动后主动通告若干次，间隔指数递增
func (s *Server) announce() {
	defer s.wg.Done()

	interval := time.Second
	for i := 0; i < 3; i++ {
		_ = s.conn.send(s.announceMsg(s.ttl))
		select {
		case <-s.stop:
			return
		case <-time.After(interval):
		}
		interval *= 2
	}
}

// announceMsg 构造通告报文，ttl 为 0 时即下线报文
func (s *Server) announceMsg(ttl uint32) *dns.Msg {
	msg := new(dns.Msg)
	msg.MsgHdr.Response = true
	msg.MsgHdr.Authoritative = true
	msg.Compress = true
	msg.Answer = []dns.RR{s.ptrRecord(ttl)}
	msg.Extra = append(s.instanceRecords(ttl), s.addrRecords(ttl)...)
	return msg
}

func (s *Server) ptrRecord(ttl uint32) dns.RR {
	return &dns.PTR{
		Hdr: dns.RR_Header{
			Name:   s.entry.ServiceName(),
			Rrtype: dns.TypePTR,
			Class:  dns.ClassINET,
			Ttl:    ttl,
		},
		Ptr: s.entry.ServiceInstanceName(),
	}
}

// instanceRecords 实例的 SRV 与 TXT 记录
func (s *Server) instanceRecords(ttl uint32) []dns.RR {
	srv := &dns.SRV{
		Hdr: dns.RR_Header{
			Name:   s.entry.ServiceInstanceName(),
			Rrtype: dns.TypeSRV,
			Class:  classCacheFlush,
			Ttl:    ttl,
		},
		Priority: 0,
		Weight:   0,
		Port:     uint16(s.entry.Port),
		Target:   s.entry.HostName,
	}
	txt := &dns.TXT{
		Hdr: dns.RR_Header{
			Name:   s.entry.ServiceInstanceName(),
			Rrtype: dns.TypeTXT,
			Class:  classCacheFlush,
			Ttl:    ttl,
		},
		Txt: s.entry.Text,
	}
	return []dns.RR{srv, txt}
}

// addrRecords 主机名的 A 与 AAAA 记录
func (s *Server) addrRecords(ttl uint32) []dns.RR {
	var rrs []dns.RR
	for _, ip := range s.entry.AddrIPv4 {
		rrs = append(rrs, &dns.A{
			Hdr: dns.RR_Header{
				Name:   s.entry.HostName,
				Rrtype: dns.TypeA,
				Class:  classCacheFlush,
				Ttl:    ttl,
			},
			A: ip,
		})
	}
	for _, ip := range s.entry.AddrIPv6 {
		rrs = append(rrs, &dns.AAAA{
			Hdr: dns.RR_Header{
				Name:   s.entry.HostName,
				Rrtype: dns.TypeAAAA,
				Class:  classCacheFlush,
				Ttl:    ttl,
			},
			AAAA: ip,
		})
	}
	return rrs
}

// nameEqual 按 DNS 规则比较名字（大小写不敏感，忽略尾点差异）
func nameEqual(a, b string) bool {
	return strings.EqualFold(dns.Fqdn(a), dns.Fqdn(b))
}
