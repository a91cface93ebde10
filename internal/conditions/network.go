// internal/conditions/network.go
package conditions

import (
	"context"
	"encoding/json"
	"net/netip"
	"strconv"
	"strings"

	"github.com/solatis/automata/internal/provider"
	"github.com/solatis/automata/internal/types"
	"github.com/solatis/automata/internal/value"
)

/*
 * Network range membership.
 *
 *   ipAddressInRangeCondition {ipAddress, isInRange}
 *
 * isInRange is CIDR notation, address/prefixLength. The range's address may
 * carry host bits: "192.168.33.0/13" is the network 192.168.0.0/13, covering
 * 192.168.0.0 - 192.175.255.255. IPv4-mapped IPv6 addresses match IPv4 ranges,
 * and a mapped range of /96 or longer ("::ffff:10.0.0.0/104") is the IPv4
 * range it embeds.
 *
 * Validation order and titles:
 *   1. ipAddress not an address        -> InvalidIpAddressFormat
 *   2. isInRange without "/" or with a
 *      malformed address part          -> InvalidIpRangeFormat
 *   3. prefix length not a decimal in
 *      0..bits of the range family     -> InvalidSubnetMask
 * Each echoes the offending literal.
 */

// KindIPAddressInRange is the network range condition kind.
const KindIPAddressInRange = "ipAddressInRangeCondition"

func registerNetwork(reg *provider.Registry) {
	provider.Register(reg, KindIPAddressInRange, value.Boolean, decodeIPAddressInRange)
}

func decodeIPAddressInRange(d *provider.Decoder, path string, body json.RawMessage) (provider.Builder[bool], error) {
	props, err := d.Properties(path, body, []string{"ipAddress", "isInRange"})
	if err != nil {
		return nil, err
	}
	address, err := provider.Decode(d, path, "ipAddress", props["ipAddress"], value.Text)
	if err != nil {
		return nil, err
	}
	cidr, err := provider.Decode(d, path, "isInRange", props["isInRange"], value.Text)
	if err != nil {
		return nil, err
	}

	return provider.BuilderFunc[bool](func(deps provider.Dependencies) (provider.Provider[bool], error) {
		ap, err := address.Build(deps)
		if err != nil {
			return nil, err
		}
		cp, err := cidr.Build(deps)
		if err != nil {
			return nil, err
		}
		return &ipRangeProvider{path: path, address: ap, cidr: cp}, nil
	}), nil
}

type ipRangeProvider struct {
	path    string
	address provider.Provider[string]
	cidr    provider.Provider[string]
}

func (p *ipRangeProvider) Resolve(ctx context.Context, pc *provider.Context) (value.Data[bool], error) {
	a, c, err := provider.Resolve2(ctx, pc, p.path, p.address, p.cidr)
	if err != nil {
		return value.Data[bool]{}, err
	}

	addr, err := ParseAddress(a.Value)
	if err != nil {
		return value.Data[bool]{}, types.FormatError(provider.ChildPath(p.path, "ipAddress"), "ipAddress",
			types.TitleInvalidIPAddressFormat, a.Value, "IP address")
	}
	prefix, title := ParseRange(c.Value)
	if title != "" {
		expected := "IP range in CIDR notation"
		if title == types.TitleInvalidSubnetMask {
			expected = "subnet prefix length"
		}
		return value.Data[bool]{}, types.FormatError(provider.ChildPath(p.path, "isInRange"), "isInRange",
			title, c.Value, expected)
	}

	result := prefix.Contains(addr)
	return value.NewData(result, result), nil
}

// ParseAddress parses an IPv4 or IPv6 address without zone. IPv4-mapped
// IPv6 addresses are unmapped.
func ParseAddress(s string) (netip.Addr, error) {
	addr, err := parseAddr(s)
	if err != nil {
		return netip.Addr{}, err
	}
	return addr.Unmap(), nil
}

func parseAddr(s string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return netip.Addr{}, err
	}
	if addr.Zone() != "" {
		return netip.Addr{}, strconv.ErrSyntax
	}
	return addr, nil
}

// ParseRange parses address/prefixLength into its masked network. On
// failure it returns the error title describing which part is malformed.
// The prefix length is checked against the family as written; an
// IPv4-mapped range of /96 or longer becomes the equivalent IPv4 range.
func ParseRange(s string) (netip.Prefix, string) {
	addrPart, bitsPart, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return netip.Prefix{}, types.TitleInvalidIPRangeFormat
	}
	addr, err := parseAddr(addrPart)
	if err != nil {
		return netip.Prefix{}, types.TitleInvalidIPRangeFormat
	}

	bits, ok := prefixLength(bitsPart)
	if !ok || bits > addr.BitLen() {
		return netip.Prefix{}, types.TitleInvalidSubnetMask
	}
	if addr.Is4In6() && bits >= 96 {
		addr, bits = addr.Unmap(), bits-96
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return netip.Prefix{}, types.TitleInvalidSubnetMask
	}
	return prefix, ""
}

// prefixLength accepts plain decimal digits only: no sign, no whitespace.
func prefixLength(s string) (int, bool) {
	if s == "" || len(s) > 3 {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
