package codec

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

func sampleBase() BaseConfig {
	c := DefaultBaseConfig()
	c.MAC = MACAddress{0x00, 0x50, 0xC2, 0x11, 0x22, 0x33}
	c.FpgaType = 0xDEADBEEF
	c.Spare = 7
	c.SerialNumber = 123456
	c.SetModel("5CSX-H6-42A-RC")
	return c
}

func TestBaseConfig_EncodeDecodeRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		cfg  BaseConfig
	}{
		{name: "defaults", cfg: DefaultBaseConfig()},
		{name: "populated", cfg: sampleBase()},
		{name: "max values", cfg: func() BaseConfig {
			c := sampleBase()
			c.SerialNumber = ^uint32(0)
			c.MAC = MACAddress{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFE}
			c.SetModel(strings.Repeat("M", 31))
			return c
		}()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded := EncodeBase(tc.cfg)
			if len(encoded) != BaseSize {
				t.Fatalf("encoded size = %d, want %d", len(encoded), BaseSize)
			}

			decoded, err := DecodeBase(encoded, CurrentVersion)
			if err != nil {
				t.Fatalf("DecodeBase failed: %v", err)
			}
			if decoded != tc.cfg {
				t.Errorf("round trip mismatch:\n got  %+v\n want %+v", decoded, tc.cfg)
			}
		})
	}
}

func TestEncodeBase_CanonicalMagicAndVersion(t *testing.T) {
	c := sampleBase()
	c.Magic = 0
	c.Version = Version13

	encoded := EncodeBase(c)
	if got := binary.LittleEndian.Uint32(encoded[0:]); got != MagicWord {
		t.Errorf("magic = 0x%08X", got)
	}
	if got := binary.LittleEndian.Uint32(encoded[4:]); got != CurrentVersion {
		t.Errorf("version = 0x%08X", got)
	}
}

func TestEncodeBase_Layout(t *testing.T) {
	c := sampleBase()
	encoded := EncodeBase(c)

	if got := MACAddress(encoded[8:14]); got != c.MAC {
		t.Errorf("mac at offset 8 = %v", got)
	}
	if encoded[14] != 0 || encoded[15] != 0 {
		t.Error("padding after the MAC must be zero")
	}
	if got := binary.LittleEndian.Uint32(encoded[16:]); got != c.FpgaType {
		t.Errorf("fpga type = 0x%08X", got)
	}
	if got := binary.LittleEndian.Uint32(encoded[24:]); got != c.SerialNumber {
		t.Errorf("serial = %d", got)
	}
	if got := string(encoded[28 : 28+len("5CSX-H6-42A-RC")]); got != "5CSX-H6-42A-RC" {
		t.Errorf("model = %q", got)
	}
	if encoded[BaseSize-1] != 0 {
		t.Error("model must be NUL terminated")
	}
}

func TestDecodeBase_NormalizesVersion(t *testing.T) {
	encoded := EncodeBase(sampleBase())
	binary.LittleEndian.PutUint32(encoded[4:], Version11)

	decoded, err := DecodeBase(encoded, Version11)
	if err != nil {
		t.Fatalf("DecodeBase failed: %v", err)
	}
	if decoded.Version != CurrentVersion {
		t.Errorf("version = 0x%08X, want current", decoded.Version)
	}
}

func TestDecodeBase_Errors(t *testing.T) {
	encoded := EncodeBase(sampleBase())

	t.Run("unsupported version", func(t *testing.T) {
		_, err := DecodeBase(encoded, 0x00020000)
		if !errors.Is(err, ErrUnsupportedVersion) {
			t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
		}
		var verr *VersionError
		if !errors.As(err, &verr) || verr.Version != 0x00020000 {
			t.Errorf("expected VersionError carrying the value, got %v", err)
		}
	})

	t.Run("short buffer", func(t *testing.T) {
		_, err := DecodeBase(encoded[:BaseSize-1], CurrentVersion)
		if !errors.Is(err, ErrShortBuffer) {
			t.Fatalf("expected ErrShortBuffer, got %v", err)
		}
	})

	t.Run("legacy needs the longer record", func(t *testing.T) {
		_, err := DecodeBase(encoded, Version13)
		if !errors.Is(err, ErrShortBuffer) {
			t.Fatalf("expected ErrShortBuffer, got %v", err)
		}
	})

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte(nil), encoded...)
		bad[0] ^= 0x01
		_, err := DecodeBase(bad, CurrentVersion)
		if !errors.Is(err, ErrBadMagic) {
			t.Fatalf("expected ErrBadMagic, got %v", err)
		}
	})
}

func TestDecodeBase_TerminatesModel(t *testing.T) {
	encoded := EncodeBase(sampleBase())
	for i := 28; i < BaseSize; i++ {
		encoded[i] = 'X'
	}

	decoded, err := DecodeBase(encoded, CurrentVersion)
	if err != nil {
		t.Fatalf("DecodeBase failed: %v", err)
	}
	if got := decoded.Model(); got != strings.Repeat("X", 31) {
		t.Errorf("model = %q", got)
	}
}

func TestLegacyV3_DecodeAndMigrate(t *testing.T) {
	legacy := LegacyBaseConfigV3{
		BaseConfig: sampleBase(),
		SecondMAC:  MACAddress{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF},
	}
	encoded := EncodeLegacyV3(legacy)
	if len(encoded) != LegacyV3Size {
		t.Fatalf("legacy size = %d, want %d", len(encoded), LegacyV3Size)
	}

	version, size, err := Probe(encoded)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if version != Version13 || size != LegacyV3Size {
		t.Fatalf("Probe = (0x%08X, %d)", version, size)
	}

	decoded, err := DecodeLegacyV3(encoded)
	if err != nil {
		t.Fatalf("DecodeLegacyV3 failed: %v", err)
	}
	if decoded.SecondMAC != legacy.SecondMAC {
		t.Errorf("second MAC = %v", decoded.SecondMAC)
	}
	if decoded.BaseConfig != sampleBase() {
		t.Errorf("base = %+v", decoded.BaseConfig)
	}
	if decoded.Version != CurrentVersion {
		t.Errorf("decoded version = 0x%08X, want current", decoded.Version)
	}
}

func TestProbe(t *testing.T) {
	encoded := EncodeBase(sampleBase())

	version, size, err := Probe(encoded)
	if err != nil || version != CurrentVersion || size != BaseSize {
		t.Fatalf("Probe = (0x%08X, %d, %v)", version, size, err)
	}

	if _, _, err := Probe(encoded[:4]); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("short probe: %v", err)
	}

	erased := make([]byte, ProbeSize)
	for i := range erased {
		erased[i] = 0xFF
	}
	if _, _, err := Probe(erased); !errors.Is(err, ErrBadMagic) {
		t.Errorf("erased medium: %v", err)
	}

	unknown := append([]byte(nil), encoded[:ProbeSize]...)
	binary.LittleEndian.PutUint32(unknown[4:], 0x00010004)
	if _, _, err := Probe(unknown); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("unknown version: %v", err)
	}
}

func TestBaseChecksum(t *testing.T) {
	record := EncodeBase(sampleBase())
	withSum := AppendBaseChecksum(append([]byte(nil), record...))
	if len(withSum) != BaseSize+BaseChecksumSize {
		t.Fatalf("length = %d", len(withSum))
	}

	if err := VerifyBaseChecksum(record, withSum[BaseSize:]); err != nil {
		t.Fatalf("valid checksum rejected: %v", err)
	}

	// Flip a single bit in each payload byte after the version word.
	for i := ProbeSize; i < BaseSize; i++ {
		corrupt := append([]byte(nil), record...)
		corrupt[i] ^= 0x04
		err := VerifyBaseChecksum(corrupt, withSum[BaseSize:])
		var cerr *ChecksumError
		if !errors.As(err, &cerr) {
			t.Fatalf("byte %d: expected ChecksumError, got %v", i, err)
		}
		if cerr.Width != 16 {
			t.Errorf("byte %d: width = %d", i, cerr.Width)
		}
	}
}

func TestSetModel(t *testing.T) {
	var c BaseConfig

	c.SetModel(strings.Repeat("A", 40))
	if got := c.Model(); len(got) != 31 {
		t.Errorf("model length = %d, want 31", len(got))
	}

	c.SetModel("short")
	if got := c.Model(); got != "short" {
		t.Errorf("model = %q, previous value must be cleared", got)
	}

	c.SetModel("abc\x00def")
	if got := c.Model(); got != "abc" {
		t.Errorf("model = %q", got)
	}
}

func TestVersionString(t *testing.T) {
	c := DefaultBaseConfig()
	if got := c.VersionString(); got != "1.2" {
		t.Errorf("VersionString = %q", got)
	}
}
