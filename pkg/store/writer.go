package store

import (
	"encoding/binary"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ssargent/factoryconfig/pkg/codec"
	"github.com/ssargent/factoryconfig/pkg/medium"
)

// segment is one contiguous write issued to the medium.
type segment struct {
	name string
	off  int64
	data []byte
}

// Writer serializes a FactoryConfig in the current layout: base record, its
// 16-bit checksum, every generic block in insertion order and a zero
// terminator word.
type Writer struct {
	m   medium.Medium
	log logrus.FieldLogger
}

// NewWriter returns a writer targeting m.
func NewWriter(m medium.Medium, opts ...Option) *Writer {
	o := buildOptions(opts)
	return &Writer{m: m, log: o.logger}
}

// Write issues every segment even after a failure and reports all failures
// together. There is no rollback: a failed write can leave a partially
// updated medium. The base record's magic and version are normalized first.
func (w *Writer) Write(fc *FactoryConfig) (*WriteResult, error) {
	fc.Base.Magic = codec.MagicWord
	fc.Base.Version = codec.CurrentVersion

	segs := segments(fc)
	res := &WriteResult{Segments: len(segs)}
	if len(segs) > 0 {
		last := segs[len(segs)-1]
		res.EndOffset = last.off + int64(len(last.data))
	}
	if res.EndOffset > w.m.Size() {
		return res, fmt.Errorf("%w: %d bytes, medium holds %d", ErrImageTooLarge, res.EndOffset, w.m.Size())
	}

	var failed []error
	for _, s := range segs {
		if _, err := w.m.WriteAt(s.data, s.off); err != nil {
			w.log.WithError(err).WithField("offset", s.off).Errorf("Failed writing %s", s.name)
			failed = append(failed, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		res.BytesSent += len(s.data)
	}
	res.Failed = len(failed)

	if len(failed) > 0 {
		w.log.Error("Error Writing Factory Configuration Block")
		return res, &WriteError{Failed: failed}
	}
	w.log.Info("Factory Configuration Block Saved")
	return res, nil
}

// Save writes fc to m.
func Save(m medium.Medium, fc *FactoryConfig, opts ...Option) error {
	_, err := NewWriter(m, opts...).Write(fc)
	return err
}

// EncodeImage returns exactly the bytes the writer would send, in order.
func EncodeImage(fc *FactoryConfig) []byte {
	var out []byte
	for _, s := range segments(fc) {
		out = append(out, s.data...)
	}
	return out
}

func segments(fc *FactoryConfig) []segment {
	var segs []segment
	var off int64
	add := func(name string, data []byte) {
		segs = append(segs, segment{name: name, off: off, data: data})
		off += int64(len(data))
	}

	record := codec.EncodeBase(fc.Base)
	add("base record", record)
	add("base checksum", binary.LittleEndian.AppendUint16(nil, codec.Sum16(record)))

	for i, b := range fc.Blocks.Blocks() {
		encoded := codec.EncodeBlock(b)
		n := len(encoded)
		name := fmt.Sprintf("block %d (%s)", i, b.Header.Type)
		add(name+" header", encoded[:codec.BlockHeaderSize])
		add(name+" payload", encoded[codec.BlockHeaderSize:n-codec.BlockChecksumSize])
		add(name+" checksum", encoded[n-codec.BlockChecksumSize:])
	}

	add("terminator", make([]byte, codec.TerminatorSize))
	return segs
}
