package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/boltdb/bolt"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"voxelstream/internal/world"
)

var (
	worldBucket = []byte("world")
	chunkBucket = []byte("chunk")
)

var ErrNotFound = errors.New("save not found")

// PlayerState is the persisted part of the player.
type PlayerState struct {
	Position mgl32.Vec3 `json:"position"`
	Rotation mgl32.Vec2 `json:"rotation"`
	IsFlying bool       `json:"is_flying"`
}

// WorldState is one saved world. Chunks holds MarshalBlocks output for every
// chunk edited since generation; everything else is regenerated from Seed.
type WorldState struct {
	ID      uuid.UUID   `json:"id"`
	Name    string      `json:"name"`
	Seed    int64       `json:"seed"`
	Player  PlayerState `json:"player"`
	SavedAt time.Time   `json:"saved_at"`

	Chunks map[world.ChunkPosition][]byte `json:"-"`
}

// Summary describes a save without its chunk data.
type Summary struct {
	ID      uuid.UUID
	Name    string
	Seed    int64
	SavedAt time.Time
	Chunks  int
}

// Store keeps saves in a bolt database. Chunk blocks are zstd compressed.
type Store struct {
	db  *bolt.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
	log *slog.Logger
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening save database %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(worldBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(chunkBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		enc: enc,
		dec: dec,
		log: logger.With("component", "storage", "path", path),
		now: time.Now,
	}, nil
}

func (s *Store) Close() error {
	s.dec.Close()
	if err := s.enc.Close(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}

// Save writes state, replacing any previous save with the same ID. A zero ID
// is replaced by a fresh one. SavedAt is set to the current time.
func (s *Store) Save(state *WorldState) error {
	if state.ID == uuid.Nil {
		state.ID = uuid.New()
	}
	state.SavedAt = s.now().UTC()

	meta, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding save %s: %w", state.ID, err)
	}

	key := state.ID[:]
	err = s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(worldBucket).Put(key, meta); err != nil {
			return err
		}

		chunks := tx.Bucket(chunkBucket)
		if chunks.Bucket(key) != nil {
			if err := chunks.DeleteBucket(key); err != nil {
				return err
			}
		}
		bkt, err := chunks.CreateBucket(key)
		if err != nil {
			return err
		}
		for pos, data := range state.Chunks {
			if len(data) != world.ChunkVolume {
				return fmt.Errorf("chunk %v: expected %d bytes, got %d", pos, world.ChunkVolume, len(data))
			}
			if err := bkt.Put(encodeChunkKey(pos), s.enc.EncodeAll(data, nil)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving %s: %w", state.ID, err)
	}

	s.log.Info("world saved", "id", state.ID, "name", state.Name, "chunks", len(state.Chunks))
	return nil
}

// Load reads the save with the given ID.
func (s *Store) Load(id uuid.UUID) (*WorldState, error) {
	var state *WorldState
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		state, err = s.read(tx, id[:])
		return err
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// LoadByName returns the most recently saved world called name.
func (s *Store) LoadByName(name string) (*WorldState, error) {
	list, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, sum := range list {
		if sum.Name == name {
			return s.Load(sum.ID)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

func (s *Store) read(tx *bolt.Tx, key []byte) (*WorldState, error) {
	meta := tx.Bucket(worldBucket).Get(key)
	if meta == nil {
		return nil, fmt.Errorf("%w: %x", ErrNotFound, key)
	}
	state := &WorldState{}
	if err := json.Unmarshal(meta, state); err != nil {
		return nil, fmt.Errorf("decoding save %x: %w", key, err)
	}

	state.Chunks = make(map[world.ChunkPosition][]byte)
	bkt := tx.Bucket(chunkBucket).Bucket(key)
	if bkt == nil {
		return state, nil
	}
	err := bkt.ForEach(func(k, v []byte) error {
		pos, err := decodeChunkKey(k)
		if err != nil {
			return err
		}
		// Values are only valid for the life of the transaction; DecodeAll copies.
		data, err := s.dec.DecodeAll(v, make([]byte, 0, world.ChunkVolume))
		if err != nil {
			return fmt.Errorf("decompressing chunk %v: %w", pos, err)
		}
		state.Chunks[pos] = data
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading save %s: %w", state.ID, err)
	}
	return state, nil
}

// List returns every save, newest first.
func (s *Store) List() ([]Summary, error) {
	var out []Summary
	err := s.db.View(func(tx *bolt.Tx) error {
		chunks := tx.Bucket(chunkBucket)
		return tx.Bucket(worldBucket).ForEach(func(k, v []byte) error {
			var state WorldState
			if err := json.Unmarshal(v, &state); err != nil {
				return fmt.Errorf("decoding save %x: %w", k, err)
			}
			sum := Summary{ID: state.ID, Name: state.Name, Seed: state.Seed, SavedAt: state.SavedAt}
			if bkt := chunks.Bucket(k); bkt != nil {
				sum.Chunks = bkt.Stats().KeyN
			}
			out = append(out, sum)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b Summary) int {
		if c := b.SavedAt.Compare(a.SavedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// Delete removes a save and its chunks.
func (s *Store) Delete(id uuid.UUID) error {
	key := id[:]
	return s.db.Update(func(tx *bolt.Tx) error {
		worlds := tx.Bucket(worldBucket)
		if worlds.Get(key) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err := worlds.Delete(key); err != nil {
			return err
		}
		chunks := tx.Bucket(chunkBucket)
		if chunks.Bucket(key) != nil {
			return chunks.DeleteBucket(key)
		}
		return nil
	})
}

func encodeChunkKey(pos world.ChunkPosition) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint32(key[0:4], uint32(int32(pos.X)))
	binary.BigEndian.PutUint32(key[4:8], uint32(int32(pos.Z)))
	return key
}

func decodeChunkKey(key []byte) (world.ChunkPosition, error) {
	if len(key) != 8 {
		return world.ChunkPosition{}, fmt.Errorf("bad chunk key length %d", len(key))
	}
	return world.ChunkPosition{
		X: int(int32(binary.BigEndian.Uint32(key[0:4]))),
		Z: int(int32(binary.BigEndian.Uint32(key[4:8]))),
	}, nil
}
