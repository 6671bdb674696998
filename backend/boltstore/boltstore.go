// Package boltstore provides a persistent backend that keeps each container
// in its own bolt database file.
//
// The file holds three buckets. "meta" stores the container header
// (annotations and global attributes), "objects" stores one record per
// object keyed by its (tag, ref) pair and "data" stores one sub-bucket per
// object holding its data chunks. Records are CBOR encoded and sealed with a
// lookup3 checksum. Chunks pass through the object's filter pipeline
// (shuffle, deflate, Fletcher-32).
package boltstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/errs"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/internal/checksum"
	"github.com/robert-malhotra/go-hdf4/internal/engine"
	"github.com/robert-malhotra/go-hdf4/internal/filter"
	"github.com/robert-malhotra/go-hdf4/internal/layout"
)

// Error is the error class for bolt store failures.
var Error = errs.Class("boltstore")

var (
	defaultTimeout = 1 * time.Second
)

const (
	// fileMode sets permissions so owner can read and write
	fileMode = 0600

	formatVersion = 1
)

var (
	metaBucket    = []byte("meta")
	objectsBucket = []byte("objects")
	dataBucket    = []byte("data")
	headerKey     = []byte("header")
)

var encMode, _ = cbor.EncOptions{
	Sort:        cbor.SortCanonical,
	IndefLength: cbor.IndefLengthForbidden,
}.EncMode()

var decMode, _ = cbor.DecOptions{
	MaxArrayElements: 1 << 20,
	MaxMapPairs:      1 << 16,
	MaxNestedLevels:  32,
	IndefLength:      cbor.IndefLengthForbidden,
	DupMapKey:        cbor.DupMapKeyEnforcedAPF,
}.DecMode()

// header is the container-level record.
type header struct {
	Version     int                                     `cbor:"1,keyasint"`
	Annotations []backend.Annotation                    `cbor:"2,keyasint,omitempty"`
	Global      map[backend.Subsystem][]backend.RawAttr `cbor:"3,keyasint,omitempty"`
}

// Backend is a backend.Backend persisting containers to bolt files.
type Backend struct {
	*engine.Engine
}

// New creates a bolt-backed backend. Container paths are file paths.
func New(log *zap.Logger, opts ...Option) *Backend {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{log: log, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return &Backend{Engine: engine.New(s, engine.WithLogger(log))}
}

// Option configures the store.
type Option func(*Store)

// WithTimeout sets how long to wait for the file lock.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// Store persists containers to bolt files.
type Store struct {
	log     *zap.Logger
	timeout time.Duration
}

func (s *Store) open(path string, readOnly bool) (*bbolt.DB, error) {
	return bbolt.Open(path, fileMode, &bbolt.Options{Timeout: s.timeout, ReadOnly: readOnly})
}

// Load reads the container stored in the file at path.
func (s *Store) Load(path string) (_ *engine.Container, err error) {
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		return nil, fmt.Errorf("%q: %w", path, backend.ErrNotFound)
	}

	db, err := s.open(path, true)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, Error.Wrap(db.Close())) }()

	c := &engine.Container{}
	err = db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		objects := tx.Bucket(objectsBucket)
		data := tx.Bucket(dataBucket)
		if meta == nil || objects == nil || data == nil {
			return Error.New("%q is not a container file", path)
		}

		var h header
		if err := unseal(meta.Get(headerKey), &h); err != nil {
			return Error.New("header: %v", err)
		}
		if h.Version != formatVersion {
			return Error.New("unsupported format version %d", h.Version)
		}
		c.Annotations = h.Annotations
		c.Global = h.Global

		return objects.ForEach(func(k, v []byte) error {
			obj := &engine.Object{}
			if err := unseal(v, obj); err != nil {
				return Error.New("object %x: %v", k, err)
			}
			if err := loadData(data.Bucket(k), obj); err != nil {
				return Error.New("object %s data: %v", obj.ID, err)
			}
			c.Objects = append(c.Objects, obj)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("container loaded", zap.String("path", path), zap.Int("objects", len(c.Objects)))
	return c, nil
}

// Save replaces the file at path with c.
func (s *Store) Save(path string, c *engine.Container) (err error) {
	db, err := s.open(path, false)
	if err != nil {
		return Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, Error.Wrap(db.Close())) }()

	return db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{metaBucket, objectsBucket, dataBucket} {
			if tx.Bucket(name) != nil {
				if err := tx.DeleteBucket(name); err != nil {
					return Error.Wrap(err)
				}
			}
		}
		meta, err := tx.CreateBucket(metaBucket)
		if err != nil {
			return Error.Wrap(err)
		}
		objects, err := tx.CreateBucket(objectsBucket)
		if err != nil {
			return Error.Wrap(err)
		}
		data, err := tx.CreateBucket(dataBucket)
		if err != nil {
			return Error.Wrap(err)
		}

		rec, err := seal(header{Version: formatVersion, Annotations: c.Annotations, Global: c.Global})
		if err != nil {
			return err
		}
		if err := meta.Put(headerKey, rec); err != nil {
			return Error.Wrap(err)
		}

		for _, obj := range c.Objects {
			key := objectKey(obj.ID)
			rec, err := seal(obj)
			if err != nil {
				return err
			}
			if err := objects.Put(key, rec); err != nil {
				return Error.Wrap(err)
			}
			chunks, err := data.CreateBucket(key)
			if err != nil {
				return Error.Wrap(err)
			}
			if err := saveData(chunks, obj); err != nil {
				return Error.New("object %s data: %v", obj.ID, err)
			}
		}
		return nil
	})
}

// objectKey orders records by tag, then ref.
func objectKey(id backend.ObjectID) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint32(key, uint32(id.Tag))
	binary.BigEndian.PutUint32(key[4:], uint32(id.Ref))
	return key
}

func seal(v any) ([]byte, error) {
	raw, err := encMode.Marshal(v)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return checksum.Seal(checksum.Lookup3, raw), nil
}

func unseal(rec []byte, v any) error {
	if rec == nil {
		return Error.New("missing record")
	}
	raw, err := checksum.Open(checksum.Lookup3, rec)
	if err != nil {
		return Error.Wrap(err)
	}
	return Error.Wrap(decMode.Unmarshal(raw, v))
}

func saveData(b *bbolt.Bucket, obj *engine.Object) error {
	if obj.Kind == backend.KindGroup {
		return nil
	}
	p, err := filter.NewPipeline(obj.Filters())
	if err != nil {
		return err
	}

	dims := obj.StorageDims()
	for _, chunk := range obj.ChunkGrid() {
		block, err := layout.Extract(obj.Data, dims, chunk, obj.ElemSize())
		if err != nil {
			return err
		}
		stored, err := p.Encode(block)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(layout.Key(chunk.Start)), stored); err != nil {
			return err
		}
	}
	return nil
}

func loadData(b *bbolt.Bucket, obj *engine.Object) error {
	if obj.Kind == backend.KindGroup {
		return nil
	}
	p, err := filter.NewPipeline(obj.Filters())
	if err != nil {
		return err
	}

	dims := obj.StorageDims()
	obj.Data = make([]byte, layout.Product(dims)*int64(obj.ElemSize()))
	for _, chunk := range obj.ChunkGrid() {
		var stored []byte
		if b != nil {
			stored = b.Get([]byte(layout.Key(chunk.Start)))
		}
		if stored == nil {
			return fmt.Errorf("chunk %v missing", chunk.Start)
		}
		block, err := p.Decode(stored, 0)
		if err != nil {
			return err
		}
		if err := layout.Insert(obj.Data, dims, chunk, obj.ElemSize(), block); err != nil {
			return err
		}
	}
	return nil
}
