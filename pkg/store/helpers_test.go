package store

import (
	"encoding/binary"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ssargent/factoryconfig/pkg/codec"
	"github.com/ssargent/factoryconfig/pkg/medium"
)

const testMediumSize = 256

func quietLogger(t *testing.T) (*logrus.Logger, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

func sampleBase() codec.BaseConfig {
	c := codec.DefaultBaseConfig()
	c.MAC = codec.MACAddress{0x00, 0x50, 0xC2, 0x11, 0x22, 0x33}
	c.SerialNumber = 424242
	c.FpgaType = 3
	c.SetModel("5CSX-H6-42A-RC")
	return c
}

// imageBuilder assembles raw medium contents, including deliberately broken
// ones.
type imageBuilder struct {
	buf []byte
}

func (b *imageBuilder) base(c codec.BaseConfig) *imageBuilder {
	b.buf = append(b.buf, codec.AppendBaseChecksum(codec.EncodeBase(c))...)
	return b
}

func (b *imageBuilder) legacy(l codec.LegacyBaseConfigV3) *imageBuilder {
	b.buf = append(b.buf, codec.AppendBaseChecksum(codec.EncodeLegacyV3(l))...)
	return b
}

func (b *imageBuilder) block(t codec.BlockType, payload []byte) *imageBuilder {
	blk := &codec.GenericBlock{Header: codec.BlockHeader{Type: t}, Data: payload}
	b.buf = append(b.buf, codec.EncodeBlock(blk)...)
	return b
}

func (b *imageBuilder) rawHeader(t codec.BlockType, size uint16) *imageBuilder {
	b.buf = append(b.buf, codec.EncodeBlockHeader(codec.BlockHeader{Magic: codec.MagicWord, Type: t, Size: size})...)
	return b
}

func (b *imageBuilder) terminator() *imageBuilder {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, 0)
	return b
}

func (b *imageBuilder) medium(t *testing.T) *medium.Memory {
	t.Helper()
	m := medium.NewMemory(testMediumSize)
	_, err := m.WriteAt(b.buf, 0)
	if err != nil {
		t.Fatalf("seed medium: %v", err)
	}
	m.Reads, m.Writes = 0, 0
	return m
}
