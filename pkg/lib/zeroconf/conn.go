package zeroconf

import (
	"errors"
	"fmt"
	"net"

	"github.com/miekg/dns"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const mdnsPort = 5353

var (
	mdnsGroupIPv4 = net.ParseIP("224.0.0.251")
	mdnsGroupIPv6 = net.ParseIP("ff02::fb")

	mdnsWildcardAddrIPv4 = &net.UDPAddr{IP: net.ParseIP("224.0.0.0"), Port: mdnsPort}
	mdnsWildcardAddrIPv6 = &net.UDPAddr{IP: net.ParseIP("ff02::"), Port: mdnsPort}

	ipv4Addr = &net.UDPAddr{IP: mdnsGroupIPv4, Port: mdnsPort}
	ipv6Addr = &net.UDPAddr{IP: mdnsGroupIPv6, Port: mdnsPort}
)

// ErrNoMulticastInterfaces 没有支持组播的网络接口
var ErrNoMulticastInterfaces = errors.New("zeroconf: no multicast network interfaces available")

// listMulticastInterfaces 列出已启用且支持组播的网络接口
func listMulticastInterfaces() []net.Interface {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}

	var out []net.Interface
	for _, ifi := range ifaces {
		if (ifi.Flags & net.FlagUp) == 0 {
			continue
		}
		if (ifi.Flags & net.FlagMulticast) == 0 {
			continue
		}
		out = append(out, ifi)
	}
	return out
}

// joinUDP4Multicast 打开 IPv4 套接字并在各接口上加入 mDNS 组
func joinUDP4Multicast(ifaces []net.Interface) (*ipv4.PacketConn, error) {
	udpConn, err := net.ListenUDP("udp4", mdnsWildcardAddrIPv4)
	if err != nil {
		return nil, err
	}

	pkConn := ipv4.NewPacketConn(udpConn)
	_ = pkConn.SetControlMessage(ipv4.FlagInterface, true)
	_ = pkConn.SetMulticastTTL(255)

	joined := 0
	for i := range ifaces {
		if err := pkConn.JoinGroup(&ifaces[i], &net.UDPAddr{IP: mdnsGroupIPv4}); err == nil {
			joined++
		}
	}
	if joined == 0 {
		_ = pkConn.Close()
		return nil, errors.New("zeroconf: udp4: failed to join any multicast group")
	}
	return pkConn, nil
}

// joinUDP6Multicast 打开 IPv6 套接字并在各接口上加入 mDNS 组
func joinUDP6Multicast(ifaces []net.Interface) (*ipv6.PacketConn, error) {
	udpConn, err := net.ListenUDP("udp6", mdnsWildcardAddrIPv6)
	if err != nil {
		return nil, err
	}

	pkConn := ipv6.NewPacketConn(udpConn)
	_ = pkConn.SetControlMessage(ipv6.FlagInterface, true)
	_ = pkConn.SetMulticastHopLimit(255)

	joined := 0
	for i := range ifaces {
		if err := pkConn.JoinGroup(&ifaces[i], &net.UDPAddr{IP: mdnsGroupIPv6}); err == nil {
			joined++
		}
	}
	if joined == 0 {
		_ = pkConn.Close()
		return nil, errors.New("zeroconf: udp6: failed to join any multicast group")
	}
	return pkConn, nil
}

// dualConn 同时驱动 IPv4 与 IPv6 的组播套接字
//
// 两个协议栈至少一个可用即可工作。
type dualConn struct {
	c4     *ipv4.PacketConn
	c6     *ipv6.PacketConn
	ifaces []net.Interface
}

func newDualConn(ifaces []net.Interface) (*dualConn, error) {
	if len(ifaces) == 0 {
		ifaces = listMulticastInterfaces()
	}
	if len(ifaces) == 0 {
		return nil, ErrNoMulticastInterfaces
	}

	c4, err4 := joinUDP4Multicast(ifaces)
	c6, err6 := joinUDP6Multicast(ifaces)
	if c4 == nil && c6 == nil {
		return nil, fmt.Errorf("zeroconf: no multicast listener could be started (udp4: %v, udp6: %v)", err4, err6)
	}
	return &dualConn{c4: c4, c6: c6, ifaces: ifaces}, nil
}

// send 把一条 DNS 消息组播到所有接口
func (d *dualConn) send(msg *dns.Msg) error {
	buf, err := msg.Pack()
	if err != nil {
		return err
	}

	var lastErr error
	if d.c4 != nil {
		var cm ipv4.ControlMessage
		for i := range d.ifaces {
			cm.IfIndex = d.ifaces[i].Index
			if _, err := d.c4.WriteTo(buf, &cm, ipv4Addr); err != nil {
				lastErr = err
			}
		}
	}
	if d.c6 != nil {
		var cm ipv6.ControlMessage
		for i := range d.ifaces {
			cm.IfIndex = d.ifaces[i].Index
			if _, err := d.c6.WriteTo(buf, &cm, ipv6Addr); err != nil {
				lastErr = err
			}
		}
	}
	return lastErr
}

// recv4 持续接收 IPv4 报文并送入 msgCh，套接字关闭后返回
//
// 消费不及时的报文直接丢弃，mDNS 会周期重发。
func (d *dualConn) recv4(msgCh chan<- *dns.Msg) {
	if d.c4 == nil {
		return
	}
	buf := make([]byte, 65536)
	for {
		n, _, _, err := d.c4.ReadFrom(buf)
		if err != nil {
			return
		}
		msg := new(dns.Msg)
		if err := msg.Unpack(buf[:n]); err != nil {
			continue
		}
		select {
		case msgCh <- msg:
		default:
		}
	}
}

// recv6 持续接收 IPv6 报文并送入 msgCh，套接字关闭后返回
func (d *dualConn) recv6(msgCh chan<- *dns.Msg) {
	if d.c6 == nil {
		return
	}
	buf := make([]byte, 65536)
	for {
		n, _, _, err := d.c6.ReadFrom(buf)
		if err != nil {
			return
		}
		msg := new(dns.Msg)
		if err := msg.Unpack(buf[:n]); err != nil {
			continue
		}
		select {
		case msgCh <- msg:
		default:
		}
	}
}

// close 关闭全部套接字，接收循环随之退出
func (d *dualConn) close() {
	if d.c4 != nil {
		_ = d.c4.Close()
	}
	if d.c6 != nil {
		_ = d.c6.Close()
	}
}
