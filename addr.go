// addr.go - Address extraction
//
// To the extent possible under law, Yawning Angel has waived all copyright
// and related or neighboring rights to the software, using the Creative
// Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package cookiejar

import (
	"errors"
	"net"
	"net/netip"

	"github.com/minio/highwayhash"
)

// AddrBytes returns the raw IP address of a UDP, TCP or IP net.Addr: 4 bytes
// for IPv4 (including IPv4-mapped IPv6), 16 bytes for IPv6.  Ports and zones
// are ignored.
func AddrBytes(addr net.Addr) ([]byte, error) {
	var ip net.IP
	switch a := addr.(type) {
	case *net.UDPAddr:
		if a == nil {
			return nil, ErrUnsupportedAddr
		}
		ip = a.IP
	case *net.TCPAddr:
		if a == nil {
			return nil, ErrUnsupportedAddr
		}
		ip = a.IP
	case *net.IPAddr:
		if a == nil {
			return nil, ErrUnsupportedAddr
		}
		ip = a.IP
	default:
		return nil, ErrUnsupportedAddr
	}

	if ip4 := ip.To4(); ip4 != nil {
		return ip4, nil
	}
	if ip16 := ip.To16(); ip16 != nil {
		return ip16, nil
	}
	return nil, ErrUnsupportedAddr
}

// AddrPortBytes is AddrBytes for a netip.AddrPort.
func AddrPortBytes(ap netip.AddrPort) ([]byte, error) {
	a := ap.Addr()
	if !a.IsValid() {
		return nil, ErrUnsupportedAddr
	}
	return a.Unmap().AsSlice(), nil
}

// AddrBytes is like the package level AddrBytes, except that any other
// non-nil net.Addr is reduced to MaxAddressSize bytes with HighwayHash-128,
// keyed from the Jar key, over its network and string form.
func (j *Jar) AddrBytes(addr net.Addr) ([]byte, error) {
	b, err := AddrBytes(addr)
	if !errors.Is(err, ErrUnsupportedAddr) {
		return b, err
	}

	switch a := addr.(type) {
	case nil, *net.UDPAddr, *net.TCPAddr, *net.IPAddr:
		// Nothing to hash, or an IP address kind with no usable IP.
		return nil, err
	case *net.UnixAddr:
		if a == nil {
			return nil, err
		}
	}

	h := highwayhash.Sum128([]byte(addr.Network()+"/"+addr.String()), j.prehashKey[:])
	return h[:], nil
}
