package store

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/factoryconfig/pkg/codec"
	"github.com/ssargent/factoryconfig/pkg/medium"
)

func TestLoader_Outcomes(t *testing.T) {
	withVersion := func(v uint32) []byte {
		rec := codec.EncodeBase(sampleBase())
		binary.LittleEndian.PutUint32(rec[4:], v)
		return codec.AppendBaseChecksum(rec)
	}
	flip := func(image []byte, off int) []byte {
		image[off] ^= 0x01
		return image
	}
	valid := func() []byte {
		b := &imageBuilder{}
		return b.base(sampleBase()).terminator().buf
	}

	testCases := []struct {
		name    string
		image   []byte
		outcome Outcome
		status  Status
	}{
		{name: "valid", image: valid(), outcome: Success, status: StatusOK},
		{name: "version 1.1", image: withVersion(codec.Version11), outcome: Success, status: StatusOK},
		{name: "erased", image: nil, outcome: NoMagicWord, status: StatusBadConfig},
		{name: "bad magic", image: flip(valid(), 0), outcome: NoMagicWord, status: StatusBadConfig},
		{name: "unknown version", image: withVersion(0x00020000), outcome: UnsupportedVersion, status: StatusBadConfig},
		{name: "corrupt serial", image: flip(valid(), 24), outcome: ChecksumMismatch, status: StatusBadConfig},
		{name: "corrupt model", image: flip(valid(), 40), outcome: ChecksumMismatch, status: StatusBadConfig},
		{name: "corrupt trailer", image: flip(valid(), codec.BaseSize), outcome: ChecksumMismatch, status: StatusBadConfig},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, _ := quietLogger(t)
			m := (&imageBuilder{buf: tc.image}).medium(t)

			fc, res, err := NewLoader(m, WithLogger(logger)).Load()
			require.NotNil(t, fc)
			assert.Equal(t, tc.outcome, res.Outcome)
			assert.Equal(t, tc.outcome, OutcomeOf(err))
			assert.Equal(t, tc.status, res.Outcome.Status())
			if tc.outcome == Success {
				assert.NoError(t, err)
				assert.Equal(t, codec.CurrentVersion, fc.Base.Version)
				assert.Equal(t, "5CSX-H6-42A-RC", fc.Base.Model())
			} else {
				var lerr *LoadError
				assert.True(t, errors.As(err, &lerr))
			}
		})
	}
}

func TestLoader_MigratesV3(t *testing.T) {
	logger, _ := quietLogger(t)
	mac2 := codec.MACAddress{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	legacy := codec.LegacyBaseConfigV3{BaseConfig: sampleBase(), SecondMAC: mac2}
	m := (&imageBuilder{}).legacy(legacy).terminator().medium(t)

	fc, res, err := NewLoader(m, WithLogger(logger)).Load()
	require.NoError(t, err)
	assert.True(t, res.Migrated)
	assert.Equal(t, codec.Version13, res.Version)
	assert.Equal(t, codec.CurrentVersion, fc.Base.Version)
	assert.Equal(t, sampleBase().MAC, fc.Base.MAC)
	assert.Equal(t, 1, fc.Blocks.Len())

	got, err := fc.SecondaryMAC()
	require.NoError(t, err)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", got.String())

	// Written back in the current layout, the second MAC survives as a block.
	out := medium.NewMemory(testMediumSize)
	require.NoError(t, Save(out, fc, WithLogger(logger)))
	assert.Equal(t, codec.Version12, binary.LittleEndian.Uint32(out.Bytes()[4:]))

	again, res, err := NewLoader(out, WithLogger(logger)).Load()
	require.NoError(t, err)
	assert.False(t, res.Migrated)
	got, err = again.SecondaryMAC()
	require.NoError(t, err)
	assert.Equal(t, mac2, got)
	assert.Equal(t, 1, again.Blocks.Len())
}

func TestLoader_BlockScan(t *testing.T) {
	logger, _ := quietLogger(t)
	mac2 := codec.MACAddress{0x00, 0x50, 0xC2, 0x00, 0x00, 0x02}
	m := (&imageBuilder{}).
		base(sampleBase()).
		block(codec.BlockRtcCalibration, codec.EncodeRtcCalPayload(-33)).
		block(codec.BlockType(0x00FF), []byte{9, 9, 9}).
		block(codec.BlockSecondaryMAC, mac2[:]).
		terminator().
		medium(t)

	fc, res, err := NewLoader(m, WithLogger(logger)).Load()
	require.NoError(t, err)
	assert.Equal(t, 2, res.BlocksDecoded)
	assert.Equal(t, 1, res.BlocksSkipped)

	blocks := fc.Blocks.Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, codec.BlockRtcCalibration, blocks[0].Header.Type)
	assert.Equal(t, codec.BlockSecondaryMAC, blocks[1].Header.Type)

	cal, err := fc.RtcCalibration()
	require.NoError(t, err)
	assert.Equal(t, int32(-33), cal)

	wantEnd := int64(codec.BaseSize + codec.BaseChecksumSize + (8 + 4 + 4) + (8 + 3 + 4) + (8 + 6 + 4))
	assert.Equal(t, wantEnd, res.EndOffset, "scan stops at the terminator")
}

func TestLoader_BlockSizeGuard(t *testing.T) {
	start := codec.BaseSize + codec.BaseChecksumSize
	remaining := testMediumSize - start - codec.BlockHeaderSize
	fits := remaining - codec.BlockChecksumSize

	testCases := []struct {
		name    string
		image   func() []byte
		outcome Outcome
	}{
		{
			name: "corrupt size word",
			image: func() []byte {
				return (&imageBuilder{}).base(sampleBase()).rawHeader(codec.BlockRtcCalibration, 0xFFFF).buf
			},
			outcome: MalformedBlock,
		},
		{
			name: "one byte past the end",
			image: func() []byte {
				return (&imageBuilder{}).base(sampleBase()).rawHeader(codec.BlockType(0x00FF), uint16(fits+1)).buf
			},
			outcome: MalformedBlock,
		},
		{
			name: "fills the medium exactly",
			image: func() []byte {
				return (&imageBuilder{}).base(sampleBase()).block(codec.BlockType(0x00FF), make([]byte, fits)).buf
			},
			outcome: Success,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, _ := quietLogger(t)
			m := (&imageBuilder{buf: tc.image()}).medium(t)

			fc, res, err := NewLoader(m, WithLogger(logger)).Load()
			assert.Equal(t, tc.outcome, res.Outcome)
			if tc.outcome == MalformedBlock {
				assert.True(t, errors.Is(err, ErrBlockTooLarge))
				assert.Equal(t, sampleBase().SerialNumber, fc.Base.SerialNumber, "base record is kept")
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(testMediumSize), res.EndOffset)
			}
		})
	}
}

func TestLoader_MalformedBlockKeepsEarlierBlocks(t *testing.T) {
	logger, _ := quietLogger(t)
	b := (&imageBuilder{}).
		base(sampleBase()).
		block(codec.BlockRtcCalibration, codec.EncodeRtcCalPayload(12))
	badAt := len(b.buf)
	b.block(codec.BlockSecondaryMAC, []byte{1, 2, 3, 4, 5, 6}).terminator()
	b.buf[badAt+codec.BlockHeaderSize] ^= 0x80

	fc, res, err := NewLoader(b.medium(t), WithLogger(logger)).Load()
	require.Error(t, err)
	assert.Equal(t, MalformedBlock, res.Outcome)
	assert.Equal(t, 1, fc.Blocks.Len())

	var lerr *LoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, int64(badAt), lerr.Offset)

	var cerr *codec.ChecksumError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, 32, cerr.Width)
}

func TestLoader_ShortKnownBlock(t *testing.T) {
	testCases := []struct {
		name    string
		t       codec.BlockType
		payload []byte
	}{
		{name: "SecondaryMac of 2 bytes", t: codec.BlockSecondaryMAC, payload: []byte{0x00, 0x50}},
		{name: "SecondaryMac of 5 bytes", t: codec.BlockSecondaryMAC, payload: []byte{1, 2, 3, 4, 5}},
		{name: "RtcCalibration of 3 bytes", t: codec.BlockRtcCalibration, payload: []byte{1, 2, 3}},
		{name: "empty RtcCalibration", t: codec.BlockRtcCalibration, payload: []byte{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, _ := quietLogger(t)
			b := (&imageBuilder{}).base(sampleBase())
			if tc.t == codec.BlockSecondaryMAC {
				b.block(codec.BlockRtcCalibration, codec.EncodeRtcCalPayload(7))
			} else {
				b.block(codec.BlockSecondaryMAC, []byte{0x00, 0x50, 0xC2, 0, 0, 9})
			}
			shortAt := len(b.buf)
			b.block(tc.t, tc.payload).terminator()

			fc, res, err := NewLoader(b.medium(t), WithLogger(logger)).Load()
			require.ErrorIs(t, err, ErrBlockTooShort)
			assert.Equal(t, MalformedBlock, res.Outcome)
			assert.Equal(t, 1, fc.Blocks.Len(), "block before the short one is kept")

			var lerr *LoadError
			require.True(t, errors.As(err, &lerr))
			assert.Equal(t, int64(shortAt), lerr.Offset)

			// The retained configuration stays fully readable and editable.
			fc, res, err = Open(b.medium(t), WithLogger(logger))
			require.Error(t, err)
			assert.Equal(t, StatusBadConfig, res.Outcome.Status())
			_, err = fc.View()
			require.NoError(t, err)
			require.NoError(t, fc.SetSecondaryMAC(codec.MACAddress{0x00, 0x50, 0xC2, 1, 2, 3}))
			require.NoError(t, fc.SetRtcCalibration(-5))
		})
	}
}

func TestLoader_LongerKnownBlockAccepted(t *testing.T) {
	logger, _ := quietLogger(t)
	m := (&imageBuilder{}).
		base(sampleBase()).
		block(codec.BlockSecondaryMAC, []byte{0x00, 0x50, 0xC2, 0xAA, 0xBB, 0xCC, 0xEE, 0xFF}).
		terminator().
		medium(t)

	fc, res, err := NewLoader(m, WithLogger(logger)).Load()
	require.NoError(t, err)
	assert.Equal(t, Success, res.Outcome)
	mac, err := fc.SecondaryMAC()
	require.NoError(t, err)
	assert.Equal(t, "00:50:C2:AA:BB:CC", mac.String())
}

func TestLoader_MediumErrors(t *testing.T) {
	image := (&imageBuilder{}).base(sampleBase()).block(codec.BlockRtcCalibration, make([]byte, 4)).buf

	// Each read of a successful load, in order: probe, record, trailer,
	// block header, block body, next header.
	for failAt := 0; failAt < 6; failAt++ {
		logger, _ := quietLogger(t)
		m := &failingMedium{Memory: (&imageBuilder{buf: image}).medium(t), failAt: failAt}

		_, res, err := NewLoader(m, WithLogger(logger)).Load()
		assert.Equal(t, MediumError, res.Outcome, "read %d", failAt)
		assert.True(t, medium.IsMediumError(err), "read %d", failAt)
		assert.Equal(t, StatusMedium, res.Outcome.Status())
	}
}

// failingMedium fails exactly the read with index failAt.
type failingMedium struct {
	*medium.Memory
	failAt int
	reads  int
}

func (f *failingMedium) ReadAt(p []byte, off int64) (int, error) {
	n := f.reads
	f.reads++
	if n == f.failAt {
		return 0, &medium.Error{Op: "read", Offset: off, Length: len(p), Err: errors.New("bus fault")}
	}
	return f.Memory.ReadAt(p, off)
}

func TestOutcomeOf(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want Outcome
	}{
		{name: "nil", err: nil, want: Success},
		{name: "medium", err: &medium.Error{Op: "read", Err: medium.ErrOutOfRange}, want: MediumError},
		{name: "magic", err: codec.ErrBadMagic, want: NoMagicWord},
		{name: "version", err: &codec.VersionError{Version: 9}, want: UnsupportedVersion},
		{name: "base checksum", err: &codec.ChecksumError{Width: 16}, want: ChecksumMismatch},
		{name: "block checksum", err: &codec.ChecksumError{Width: 32}, want: MalformedBlock},
		{name: "payload", err: codec.ErrPayloadTooLarge, want: AllocationError},
		{name: "load error", err: &LoadError{Outcome: NoMagicWord, Err: errors.New("x")}, want: NoMagicWord},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, OutcomeOf(tc.err))
		})
	}
}

func TestOutcome_Strings(t *testing.T) {
	assert.Equal(t, "malformed_block", MalformedBlock.String())
	assert.Equal(t, "outcome(42)", Outcome(42).String())
	assert.Equal(t, "Factory Configuration Invalid", ChecksumMismatch.Describe())
	assert.Equal(t, "Generic Configuration Block Invalid", MalformedBlock.Describe())
}
