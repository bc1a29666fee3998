package multiaddr

import (
	"fmt"
	"net"
	"strconv"
)

// ToTCPAddr 将多地址转换为 *net.TCPAddr
func (m *multiaddr) ToTCPAddr() (*net.TCPAddr, error) {
	ip, err := ipOf(m)
	if err != nil {
		return nil, err
	}

	portStr, err := m.ValueForProtocol(P_TCP)
	if err != nil {
		return nil, fmt.Errorf("no TCP port in multiaddr")
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port: %s", portStr)
	}

	return &net.TCPAddr{IP: ip, Port: port}, nil
}

// ToUDPAddr 将多地址转换为 *net.UDPAddr
func (m *multiaddr) ToUDPAddr() (*net.UDPAddr, error) {
	ip, err := ipOf(m)
	if err != nil {
		return nil, err
	}

	portStr, err := m.ValueForProtocol(P_UDP)
	if err != nil {
		return nil, fmt.Errorf("no UDP port in multiaddr")
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port: %s", portStr)
	}

	return &net.UDPAddr{IP: ip, Port: port}, nil
}

// ipOf 提取多地址中的 IP 组件（IPv4 优先）
func ipOf(m Multiaddr) (net.IP, error) {
	ipStr, err := m.ValueForProtocol(P_IP4)
	if err != nil {
		ipStr, err = m.ValueForProtocol(P_IP6)
		if err != nil {
			return nil, fmt.Errorf("no IP address in multiaddr")
		}
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address: %s", ipStr)
	}
	return ip, nil
}

// FromTCPAddr 从 *net.TCPAddr 创建多地址
func FromTCPAddr(addr *net.TCPAddr) (Multiaddr, error) {
	if addr == nil {
		return nil, fmt.Errorf("nil TCP address")
	}
	return fromIPPort(addr.IP, addr.Port, "tcp")
}

// FromUDPAddr 从 *net.UDPAddr 创建多地址
func FromUDPAddr(addr *net.UDPAddr) (Multiaddr, error) {
	if addr == nil {
		return nil, fmt.Errorf("nil UDP address")
	}
	return fromIPPort(addr.IP, addr.Port, "udp")
}

// FromIP 从裸 IP 创建多地址（无端口组件）
func FromIP(ip net.IP) (Multiaddr, error) {
	if ip == nil {
		return nil, fmt.Errorf("nil IP")
	}

	if ip4 := ip.To4(); ip4 != nil {
		return NewMultiaddr(fmt.Sprintf("/ip4/%s", ip4.String()))
	}
	return NewMultiaddr(fmt.Sprintf("/ip6/%s", ip.String()))
}

// FromNetAddr 从 net.Addr 创建多地址
func FromNetAddr(addr net.Addr) (Multiaddr, error) {
	if addr == nil {
		return nil, fmt.Errorf("nil address")
	}

	switch a := addr.(type) {
	case *net.TCPAddr:
		return FromTCPAddr(a)
	case *net.UDPAddr:
		return FromUDPAddr(a)
	case *net.IPAddr:
		return FromIP(a.IP)
	case *net.IPNet:
		return FromIP(a.IP)
	default:
		return nil, fmt.Errorf("unsupported address type: %T", addr)
	}
}

// fromIPPort 根据 IP 版本构造 "/ipX/<ip>/<network>/<port>" 形式的多地址
func fromIPPort(ip net.IP, port int, network string) (Multiaddr, error) {
	proto := "ip6"
	if ip4 := ip.To4(); ip4 != nil {
		proto = "ip4"
		ip = ip4
	}
	return NewMultiaddr(fmt.Sprintf("/%s/%s/%s/%d", proto, ip.String(), network, port))
}
