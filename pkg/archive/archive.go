// Package archive keeps raw medium images so a board's factory
// configuration can be restored after a bad write or a replaced EEPROM.
package archive

import (
	"bytes"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotFound is returned for an unknown snapshot ID.
var ErrNotFound = errors.New("archive: snapshot not found")

var keyPrefix = []byte("snapshot/")

// Snapshot is one archived medium image and what was known about it when it
// was taken.
type Snapshot struct {
	ID        ksuid.KSUID `msgpack:"-"`
	CreatedAt time.Time   `msgpack:"created_at"`
	Label     string      `msgpack:"label"`
	Source    string      `msgpack:"source"`
	Outcome   string      `msgpack:"outcome"`
	Serial    uint32      `msgpack:"serial"`
	Model     string      `msgpack:"model"`
	Image     []byte      `msgpack:"image"`
}

// Store is a pebble backed snapshot archive. Images are zstd compressed and
// records are msgpack encoded. Keys are KSUIDs, so iteration follows the
// creation second.
type Store struct {
	db  *pebble.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
	log logrus.FieldLogger
}

// Open opens or creates an archive in dir.
func Open(dir string, log logrus.FieldLogger) (*Store, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open archive %s", dir)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create zstd encoder")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, errors.Wrap(err, "create zstd decoder")
	}
	return &Store{db: db, enc: enc, dec: dec, log: log}, nil
}

func key(id ksuid.KSUID) []byte {
	k := make([]byte, 0, len(keyPrefix)+len(id))
	k = append(k, keyPrefix...)
	return append(k, id.Bytes()...)
}

// Put stores s under a new ID, which is returned and also set on s.
// CreatedAt defaults to now.
func (s *Store) Put(snap *Snapshot) (ksuid.KSUID, error) {
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}
	id, err := ksuid.NewRandomWithTime(snap.CreatedAt)
	if err != nil {
		return ksuid.Nil, errors.Wrap(err, "generate snapshot id")
	}

	rec := *snap
	rec.Image = s.enc.EncodeAll(snap.Image, nil)
	data, err := msgpack.Marshal(&rec)
	if err != nil {
		return ksuid.Nil, errors.Wrap(err, "encode snapshot")
	}
	if err := s.db.Set(key(id), data, pebble.Sync); err != nil {
		return ksuid.Nil, errors.Wrapf(err, "store snapshot %s", id)
	}

	snap.ID = id
	s.log.WithFields(logrus.Fields{"id": id.String(), "size": len(snap.Image), "stored": len(rec.Image)}).Debug("Snapshot archived")
	return id, nil
}

// Get returns the snapshot with the decompressed image.
func (s *Store) Get(id ksuid.KSUID) (*Snapshot, error) {
	data, closer, err := s.db.Get(key(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "get %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", id)
	}
	// data is only valid until the closer runs.
	buf := bytes.Clone(data)
	closer.Close()

	snap, err := s.decode(id, buf, true)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// List returns every snapshot, oldest first, without images.
func (s *Store) List() ([]*Snapshot, error) {
	upper := bytes.Clone(keyPrefix)
	upper[len(upper)-1]++

	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: keyPrefix, UpperBound: upper})
	if err != nil {
		return nil, errors.Wrap(err, "list snapshots")
	}
	defer iter.Close()

	var out []*Snapshot
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key()[len(keyPrefix):])
		if err != nil {
			return nil, errors.Wrapf(err, "bad snapshot key %x", iter.Key())
		}
		snap, err := s.decode(id, iter.Value(), false)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "list snapshots")
	}
	return out, nil
}

// Latest returns the newest snapshot.
func (s *Store) Latest() (*Snapshot, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrNotFound
	}
	return s.Get(all[len(all)-1].ID)
}

// Delete removes a snapshot.
func (s *Store) Delete(id ksuid.KSUID) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return errors.Wrapf(s.db.Delete(key(id), pebble.Sync), "delete %s", id)
}

// Close releases the database and codecs.
func (s *Store) Close() error {
	s.dec.Close()
	if err := s.enc.Close(); err != nil {
		s.db.Close()
		return errors.Wrap(err, "close zstd encoder")
	}
	return errors.Wrap(s.db.Close(), "close archive")
}

func (s *Store) decode(id ksuid.KSUID, data []byte, withImage bool) (*Snapshot, error) {
	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrapf(err, "decode snapshot %s", id)
	}
	snap.ID = id
	if !withImage {
		snap.Image = nil
		return &snap, nil
	}
	image, err := s.dec.DecodeAll(snap.Image, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "decompress snapshot %s", id)
	}
	snap.Image = image
	return &snap, nil
}

// ParseID parses the string form of a snapshot ID.
func ParseID(s string) (ksuid.KSUID, error) {
	id, err := ksuid.Parse(s)
	if err != nil {
		return ksuid.Nil, errors.Wrapf(err, "invalid snapshot id %q", s)
	}
	return id, nil
}
