package codec

import "testing"

func TestParseMAC(t *testing.T) {
	testCases := []struct {
		name    string
		in      string
		want    MACAddress
		wantErr bool
	}{
		{name: "full", in: "AA:BB:CC:DD:EE:FF", want: MACAddress{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}},
		{name: "lower case", in: "00:50:c2:1a:2b:3c", want: MACAddress{0x00, 0x50, 0xC2, 0x1A, 0x2B, 0x3C}},
		{name: "single digit groups", in: "1:2:3:4:5:6", want: MACAddress{1, 2, 3, 4, 5, 6}},
		{name: "missing groups are zero", in: "12:34", want: MACAddress{0x12, 0x34}},
		{name: "surrounding space", in: "  01:02:03:04:05:06\n", want: MACAddress{1, 2, 3, 4, 5, 6}},
		{name: "empty", in: "", wantErr: true},
		{name: "too many groups", in: "1:2:3:4:5:6:7", wantErr: true},
		{name: "bad hex", in: "GG:00:00:00:00:00", wantErr: true},
		{name: "group too long", in: "123:00:00:00:00:00", wantErr: true},
		{name: "empty group", in: "01::03:04:05:06", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseMAC(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseMAC(%q) expected error, got %v", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMAC(%q) failed: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParseMAC(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestMACAddress_Format(t *testing.T) {
	mac := MACAddress{0xAA, 0xBB, 0xCC, 0x0D, 0x0E, 0x0F}
	if got := mac.String(); got != "AA:BB:CC:0D:0E:0F" {
		t.Errorf("String = %q", got)
	}
	if got := mac.EnvString(); got != "aa:bb:cc:0d:0e:0f" {
		t.Errorf("EnvString = %q", got)
	}
}

func TestMACAddress_IsValidEthernet(t *testing.T) {
	if (MACAddress{}).IsValidEthernet() {
		t.Error("zero address must be invalid")
	}
	if (MACAddress{0x01, 0, 0, 0, 0, 1}).IsValidEthernet() {
		t.Error("multicast address must be invalid")
	}
	if !(MACAddress{0x00, 0x50, 0xC2, 0, 0, 1}).IsValidEthernet() {
		t.Error("unicast address must be valid")
	}
}

func TestMACAddress_TextRoundTrip(t *testing.T) {
	in := MACAddress{0x00, 0x50, 0xC2, 0x12, 0x34, 0x56}
	text, err := in.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}
	var out MACAddress
	if err := out.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if out != in {
		t.Errorf("got %v, want %v", out, in)
	}
}
