package store

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ssargent/factoryconfig/pkg/codec"
	"github.com/ssargent/factoryconfig/pkg/medium"
)

// Loader decodes a FactoryConfig from a medium in a single pass: version
// probe, base record, migration of legacy records and the generic block scan.
type Loader struct {
	m   medium.Medium
	log logrus.FieldLogger
}

// NewLoader returns a loader reading from m.
func NewLoader(m medium.Medium, opts ...Option) *Loader {
	o := buildOptions(opts)
	return &Loader{m: m, log: o.logger}
}

// Load decodes the medium. The returned configuration is never nil and holds
// whatever was decoded before a failure: on base record failures it is the
// default configuration, on a malformed block it carries the valid base
// record and every block before the bad one. Applying a fallback policy is
// left to the caller (see Open).
func (l *Loader) Load() (*FactoryConfig, *LoadResult, error) {
	start := time.Now()
	fc := New(int(l.m.Size()))
	res := &LoadResult{Attempts: 1}

	err := l.load(fc, res)
	res.Outcome = OutcomeOf(err)
	res.Duration = time.Since(start)
	return fc, res, err
}

func (l *Loader) load(fc *FactoryConfig, res *LoadResult) error {
	probe := make([]byte, codec.ProbeSize)
	if _, err := l.m.ReadAt(probe, 0); err != nil {
		l.log.WithError(err).Error("Failure reading Factory Configuration Version Info")
		return &LoadError{Outcome: MediumError, Offset: 0, Err: err}
	}

	version, size, err := codec.Probe(probe)
	switch {
	case err == nil:
	case errors.Is(err, codec.ErrBadMagic):
		l.log.Debug("No magic word found for factoryconfig")
		return &LoadError{Outcome: NoMagicWord, Offset: 0, Err: err}
	default:
		l.log.WithField("version", version).Debug("Couldn't figure out config size")
		return &LoadError{Outcome: UnsupportedVersion, Offset: 4, Err: err}
	}
	res.Version = version

	record := make([]byte, size)
	if _, err := l.m.ReadAt(record, 0); err != nil {
		return &LoadError{Outcome: MediumError, Offset: 0, Err: err}
	}
	trailer := make([]byte, codec.BaseChecksumSize)
	if _, err := l.m.ReadAt(trailer, int64(size)); err != nil {
		return &LoadError{Outcome: MediumError, Offset: int64(size), Err: err}
	}
	if err := codec.VerifyBaseChecksum(record, trailer); err != nil {
		l.log.WithError(err).Debug("factoryconfig checksum didn't match")
		return &LoadError{Outcome: ChecksumMismatch, Offset: int64(size), Err: err}
	}

	if version == codec.Version13 {
		legacy, err := codec.DecodeLegacyV3(record)
		if err != nil {
			return &LoadError{Outcome: UnsupportedVersion, Offset: 0, Err: err}
		}
		l.log.Debug("Version 1.3 detected, converting to 1.2")
		fc.Base = legacy.BaseConfig
		if err := fc.SetSecondaryMAC(legacy.SecondMAC); err != nil {
			return &LoadError{Outcome: AllocationError, Offset: 0, Err: err}
		}
		res.Migrated = true
	} else {
		base, err := codec.DecodeBase(record, version)
		if err != nil {
			return &LoadError{Outcome: UnsupportedVersion, Offset: 0, Err: err}
		}
		fc.Base = base
	}

	end, err := l.scan(fc, res, int64(size+codec.BaseChecksumSize))
	res.EndOffset = end
	return err
}

// scan decodes generic blocks starting at off until the header magic no
// longer matches or too little space is left for another header.
func (l *Loader) scan(fc *FactoryConfig, res *LoadResult, off int64) (int64, error) {
	capacity := l.m.Size()
	header := make([]byte, codec.BlockHeaderSize)

	for capacity-off > codec.BlockHeaderSize {
		if _, err := l.m.ReadAt(header, off); err != nil {
			return off, &LoadError{Outcome: MediumError, Offset: off, Err: err}
		}
		h, err := codec.DecodeBlockHeader(header)
		if err != nil {
			return off, &LoadError{Outcome: MalformedBlock, Offset: off, Err: err}
		}
		if h.Magic != codec.MagicWord {
			l.log.WithField("offset", off).Debug("No magic word for block, must be done")
			break
		}

		log := l.log.WithFields(logrus.Fields{"offset": off, "type": h.Type, "size": h.Size})
		blockStart := off
		off += codec.BlockHeaderSize

		// The payload and its trailer must fit in what is left; a corrupt
		// size never drives an allocation.
		if int64(h.Size)+codec.BlockChecksumSize > capacity-off {
			log.Info("Generic block size too large")
			return blockStart, &LoadError{Outcome: MalformedBlock, Offset: blockStart, Err: ErrBlockTooLarge}
		}

		body := make([]byte, int(h.Size)+codec.BlockChecksumSize)
		if _, err := l.m.ReadAt(body, off); err != nil {
			return blockStart, &LoadError{Outcome: MediumError, Offset: off, Err: err}
		}
		off += int64(len(body))

		payload, trailer := body[:h.Size:h.Size], body[h.Size:]
		if err := codec.VerifyBlockChecksum(header, payload, trailer); err != nil {
			log.WithError(err).Debug("Block's checksum didn't match")
			return blockStart, &LoadError{Outcome: MalformedBlock, Offset: blockStart, Err: err}
		}

		if !h.Type.Known() {
			log.Info("Unknown generic block, skipping")
			res.BlocksSkipped++
			continue
		}

		if def, _ := codec.DefaultPayload(h.Type); int(h.Size) < len(def) {
			log.Info("Generic block too short for its type")
			return blockStart, &LoadError{Outcome: MalformedBlock, Offset: blockStart, Err: ErrBlockTooShort}
		}

		block := &codec.GenericBlock{Header: h, Data: payload}
		if err := fc.Blocks.Append(block); err != nil {
			return blockStart, &LoadError{Outcome: MalformedBlock, Offset: blockStart, Err: err}
		}
		log.Debug("Found generic block, adding to list")
		res.BlocksDecoded++
	}
	return off, nil
}
