package conditions

import (
	"errors"
	"strings"
	"testing"

	"github.com/solatis/automata/internal/types"
)

func TestIPAddressInRange(t *testing.T) {
	runEvalCases(t, []evalCase{
		{"example /13 network", `{"ipAddressInRangeCondition": {"ipAddress": "192.168.33.1", "isInRange": "192.168.33.0/13"}}`, true},
		{"outside /24", `{"ipAddressInRangeCondition": {"ipAddress": "192.168.34.1", "isInRange": "192.168.33.0/24"}}`, false},
		{"/32 exact", `{"ipAddressInRangeCondition": {"ipAddress": "10.0.0.1", "isInRange": "10.0.0.1/32"}}`, true},
		{"/0 everything", `{"ipAddressInRangeCondition": {"ipAddress": "8.8.8.8", "isInRange": "0.0.0.0/0"}}`, true},
		{"ipv6", `{"ipAddressInRangeCondition": {"ipAddress": "2001:db8::1", "isInRange": "2001:db8::/32"}}`, true},
		{"ipv6 outside", `{"ipAddressInRangeCondition": {"ipAddress": "2001:db9::1", "isInRange": "2001:db8::/32"}}`, false},
		{"mapped ipv4", `{"ipAddressInRangeCondition": {"ipAddress": "::ffff:10.1.2.3", "isInRange": "10.0.0.0/8"}}`, true},
		{"mapped range /96", `{"ipAddressInRangeCondition": {"ipAddress": "::ffff:10.0.0.1", "isInRange": "::ffff:0:0/96"}}`, true},
		{"mapped range /104", `{"ipAddressInRangeCondition": {"ipAddress": "10.2.3.4", "isInRange": "::ffff:10.0.0.0/104"}}`, true},
		{"mapped range /104 outside", `{"ipAddressInRangeCondition": {"ipAddress": "11.0.0.1", "isInRange": "::ffff:10.0.0.0/104"}}`, false},
		{"family mismatch", `{"ipAddressInRangeCondition": {"ipAddress": "2001:db8::1", "isInRange": "10.0.0.0/8"}}`, false},
	}, nil)
}

func TestIPAddressInRange_Errors(t *testing.T) {
	tests := []struct {
		name    string
		address string
		cidr    string
		title   string
		field   string
	}{
		{"invalid address", "invalid ip address", "192.168.33.3", types.TitleInvalidIPAddressFormat, "ipAddress"},
		{"address checked first", "300.1.1.1", "nonsense", types.TitleInvalidIPAddressFormat, "ipAddress"},
		{"range without prefix", "192.168.33.1", "192.168.33.3", types.TitleInvalidIPRangeFormat, "isInRange"},
		{"range with bad address", "192.168.33.1", "192.168.333.0/24", types.TitleInvalidIPRangeFormat, "isInRange"},
		{"prefix too long", "192.168.33.1", "192.168.33.0/33", types.TitleInvalidSubnetMask, "isInRange"},
		{"mapped prefix too long", "::ffff:10.0.0.1", "::ffff:0:0/129", types.TitleInvalidSubnetMask, "isInRange"},
		{"prefix not a number", "192.168.33.1", "192.168.33.0/abc", types.TitleInvalidSubnetMask, "isInRange"},
		{"negative prefix", "192.168.33.1", "192.168.33.0/-1", types.TitleInvalidSubnetMask, "isInRange"},
		{"empty prefix", "192.168.33.1", "192.168.33.0/", types.TitleInvalidSubnetMask, "isInRange"},
		{"dotted mask", "192.168.33.1", "192.168.33.0/255.255.255.0", types.TitleInvalidSubnetMask, "isInRange"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"ipAddressInRangeCondition": {"ipAddress": "` + tt.address + `", "isInRange": "` + tt.cidr + `"}}`
			_, err := eval(t, raw, nil)
			if !errors.Is(err, types.ErrFormat) {
				t.Fatalf("eval() error = %v, want ErrFormat", err)
			}
			var e *types.Error
			errors.As(err, &e)
			if e.Title != tt.title {
				t.Errorf("Title = %q, want %q", e.Title, tt.title)
			}
			if e.Field != tt.field {
				t.Errorf("Field = %q, want %q", e.Field, tt.field)
			}

			literal := tt.cidr
			if tt.field == "ipAddress" {
				literal = tt.address
			}
			if e.Value != literal || !strings.Contains(e.Message, literal) {
				t.Errorf("error %q does not echo %q", e.Message, literal)
			}
		})
	}
}
