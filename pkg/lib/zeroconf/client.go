package zeroconf

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
)

// Resolver mDNS 浏览端
type Resolver struct {
	conn *dualConn
}

// NewResolver 创建浏览端
//
// ifaces 为 nil 时使用所有支持组播的接口。
// 没有任何组播套接字可用时返回错误。
func NewResolver(ifaces []net.Interface) (*Resolver, error) {
	conn, err := newDualConn(ifaces)
	if err != nil {
		return nil, err
	}
	return &Resolver{conn: conn}, nil
}

// Browse 浏览指定服务类型，发现的实例送入 entries
//
// 阻塞直到 ctx 取消，返回前关闭 entries 通道并释放套接字。
// 同一实例的记录更新会重复送达，去重由调用方负责。
func (r *Resolver) Browse(ctx context.Context, service, domain string, entries chan<- *ServiceEntry) error {
	defer close(entries)

	if domain == "" {
		domain = "local"
	}
	serviceName := fmt.Sprintf("%s.%s.", trimDot(service), trimDot(domain))

	msgCh := make(chan *dns.Msg, 32)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); r.conn.recv4(msgCh) }()
	go func() { defer wg.Done(); r.conn.recv6(msgCh) }()

	// 套接字随 ctx 关闭，接收循环据此退出
	go func() {
		<-ctx.Done()
		r.conn.close()
	}()

	cache := make(map[string]*ServiceEntry)

	// 首问立即发出，重问间隔指数递增封顶一分钟
	query := time.NewTimer(0)
	defer query.Stop()
	delay := time.Second

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()

		case <-query.C:
			m := new(dns.Msg)
			m.SetQuestion(serviceName, dns.TypePTR)
			m.Id = 0
			m.RecursionDesired = false
			_ = r.conn.send(m)

			delay *= 2
			if delay > time.Minute {
				delay = time.Minute
			}
			query.Reset(delay)

		case msg := <-msgCh:
			r.processMsg(ctx, msg, serviceName, service, domain, cache, entries)
		}
	}
}

// processMsg 把一条报文里与本服务相关的记录并入缓存，
// 集齐必要记录的实例送入 entries
func (r *Resolver) processMsg(ctx context.Context, msg *dns.Msg, serviceName, service, domain string, cache map[string]*ServiceEntry, entries chan<- *ServiceEntry) {
	if msg == nil || !msg.Response {
		return
	}

	sections := make([]dns.RR, 0, len(msg.Answer)+len(msg.Ns)+len(msg.Extra))
	sections = append(sections, msg.Answer...)
	sections = append(sections, msg.Ns...)
	sections = append(sections, msg.Extra...)

	changed := make(map[string]bool)

	for _, rr := range sections {
		switch rr := rr.(type) {
		case *dns.PTR:
			if !nameEqual(rr.Hdr.Name, serviceName) {
				continue
			}
			k := cacheKey(rr.Ptr)
			if rr.Hdr.Ttl == 0 {
				delete(cache, k)
				continue
			}
			e := r.ensureEntry(cache, k, rr.Ptr, serviceName, service, domain)
			e.TTL = rr.Hdr.Ttl
			changed[k] = true

		case *dns.SRV:
			if !instanceOf(rr.Hdr.Name, serviceName) {
				continue
			}
			k := cacheKey(rr.Hdr.Name)
			if rr.Hdr.Ttl == 0 {
				delete(cache, k)
				continue
			}
			e := r.ensureEntry(cache, k, rr.Hdr.Name, serviceName, service, domain)
			e.HostName = rr.Target
			e.Port = int(rr.Port)
			e.TTL = rr.Hdr.Ttl
			changed[k] = true

		case *dns.TXT:
			if !instanceOf(rr.Hdr.Name, serviceName) {
				continue
			}
			k := cacheKey(rr.Hdr.Name)
			if rr.Hdr.Ttl == 0 {
				continue
			}
			e := r.ensureEntry(cache, k, rr.Hdr.Name, serviceName, service, domain)
			e.Text = append([]string(nil), rr.Txt...)
			changed[k] = true

		case *dns.A:
			for k, e := range cache {
				if nameEqual(e.HostName, rr.Hdr.Name) && !containsIP(e.AddrIPv4, rr.A) {
					e.AddrIPv4 = append(e.AddrIPv4, rr.A)
					changed[k] = true
				}
			}

		case *dns.AAAA:
			for k, e := range cache {
				if nameEqual(e.HostName, rr.Hdr.Name) && !containsIP(e.AddrIPv6, rr.AAAA) {
					e.AddrIPv6 = append(e.AddrIPv6, rr.AAAA)
					changed[k] = true
				}
			}
		}
	}

	for k := range changed {
		e, ok := cache[k]
		if !ok || !e.complete() {
			continue
		}
		out := *e
		out.Text = append([]string(nil), e.Text...)
		out.AddrIPv4 = append([]net.IP(nil), e.AddrIPv4...)
		out.AddrIPv6 = append([]net.IP(nil), e.AddrIPv6...)

		select {
		case entries <- &out:
		case <-ctx.Done():
			return
		}
	}
}

// ensureEntry 取出或创建实例条目
func (r *Resolver) ensureEntry(cache map[string]*ServiceEntry, key, fqdn, serviceName, service, domain string) *ServiceEntry {
	if e, ok := cache[key]; ok {
		return e
	}
	e := newServiceEntry(instanceFromFQDN(fqdn, serviceName), service, domain)
	cache[key] = e
	return e
}

// cacheKey 实例名的规范化缓存键
func cacheKey(name string) string {
	return strings.ToLower(dns.Fqdn(name))
}

// instanceOf 名字是否是该服务下的实例全名
func instanceOf(name, serviceName string) bool {
	return strings.HasSuffix(strings.ToLower(dns.Fqdn(name)), "."+strings.ToLower(serviceName))
}

func containsIP(ips []net.IP, ip net.IP) bool {
	for _, have := range ips {
		if have.Equal(ip) {
			return true
		}
	}
	return false
}
