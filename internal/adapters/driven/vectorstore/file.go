package vectorstore

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
	"github.com/custodia-labs/athena/internal/logger"
)

// Ensure FileSnapshotStore implements the interface.
var _ driven.SnapshotStore = (*FileSnapshotStore)(nil)

const (
	manifestName = "MANIFEST.json"
	indexPrefix  = "index-"
	chunksPrefix = "chunks-"
	metaPrefix   = "metadata-"
)

// manifest is the commit record of a snapshot generation.
// A generation is visible only once its manifest has been renamed into place.
type manifest struct {
	Generation int64             `json:"generation"`
	Count      int               `json:"count"`
	Dimensions int               `json:"dimensions"`
	Files      map[string]string `json:"files"` // file name -> sha256 hex
	WrittenAt  time.Time         `json:"written_at"`
}

// FileSnapshotStore persists snapshots as three artifacts in a directory:
// a binary float32 index, the chunk texts and the chunk sources.
type FileSnapshotStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileSnapshotStore creates a persister rooted at dir, creating it if needed.
func NewFileSnapshotStore(dir string) (*FileSnapshotStore, error) {
	if dir == "" {
		return nil, errors.New("vectorstore: directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileSnapshotStore{dir: dir}, nil
}

// Dir returns the store directory.
func (f *FileSnapshotStore) Dir() string {
	return f.dir
}

// Save writes snap as a new generation and commits it through the manifest.
func (f *FileSnapshotStore) Save(ctx context.Context, snap *domain.VectorSnapshot) error {
	if snap == nil {
		return errors.New("snapshot is nil")
	}
	if !snap.Consistent() {
		return fmt.Errorf("%w: snapshot arrays disagree", domain.ErrInvalidInput)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	prev, err := f.readManifest()
	if err != nil && !errors.Is(err, domain.ErrStoreNotFound) {
		return err
	}
	gen := int64(1)
	if prev != nil {
		gen = prev.Generation + 1
	}

	texts, err := json.Marshal(nonNil(snap.Texts))
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}
	sources, err := json.Marshal(nonNil(snap.Sources))
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	artifacts := []struct {
		name string
		data []byte
	}{
		{artifactName(indexPrefix, gen, ".bin"), encodeIndex(snap)},
		{artifactName(chunksPrefix, gen, ".json"), texts},
		{artifactName(metaPrefix, gen, ".json"), sources},
	}

	m := manifest{
		Generation: gen,
		Count:      snap.Len(),
		Dimensions: snap.Dimensions,
		Files:      make(map[string]string, len(artifacts)),
		WrittenAt:  time.Now().UTC(),
	}

	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeFileAtomic(filepath.Join(f.dir, a.name), a.data); err != nil {
			return fmt.Errorf("write %s: %w", a.name, err)
		}
		sum := sha256.Sum256(a.data)
		m.Files[a.name] = hex.EncodeToString(sum[:])
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(f.dir, manifestName), data); err != nil {
		return fmt.Errorf("commit manifest: %w", err)
	}
	syncDir(f.dir)

	f.removeStale(gen)
	return nil
}

// Load reads the committed generation.
// Any missing, truncated or checksum-mismatched artifact yields ErrStoreNotFound.
func (f *FileSnapshotStore) Load(ctx context.Context) (*domain.VectorSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.readManifest()
	if err != nil {
		return nil, err
	}

	read := func(prefix, ext string) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := artifactName(prefix, m.Generation, ext)
		want, ok := m.Files[name]
		if !ok {
			return nil, fmt.Errorf("%w: manifest does not list %s", domain.ErrStoreNotFound, name)
		}
		data, err := os.ReadFile(filepath.Join(f.dir, name))
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrStoreNotFound, name, err)
		}
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != want {
			return nil, fmt.Errorf("%w: checksum mismatch for %s", domain.ErrStoreNotFound, name)
		}
		return data, nil
	}

	indexData, err := read(indexPrefix, ".bin")
	if err != nil {
		return nil, err
	}
	textData, err := read(chunksPrefix, ".json")
	if err != nil {
		return nil, err
	}
	sourceData, err := read(metaPrefix, ".json")
	if err != nil {
		return nil, err
	}

	snap := &domain.VectorSnapshot{}
	snap.Dimensions, snap.Embeddings, err = decodeIndex(indexData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreNotFound, err)
	}
	if err := json.Unmarshal(textData, &snap.Texts); err != nil {
		return nil, fmt.Errorf("%w: decode chunks: %v", domain.ErrStoreNotFound, err)
	}
	if err := json.Unmarshal(sourceData, &snap.Sources); err != nil {
		return nil, fmt.Errorf("%w: decode metadata: %v", domain.ErrStoreNotFound, err)
	}

	if snap.Len() != m.Count || !snap.Consistent() {
		return nil, fmt.Errorf("%w: generation %d is partial", domain.ErrStoreNotFound, m.Generation)
	}
	return snap, nil
}

// Clear removes the manifest and every artifact.
func (f *FileSnapshotStore) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(filepath.Join(f.dir, manifestName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove manifest: %w", err)
	}
	f.removeStale(0)
	return nil
}

func (f *FileSnapshotStore) readManifest() (*manifest, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, manifestName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: decode manifest: %v", domain.ErrStoreNotFound, err)
	}
	return &m, nil
}

// removeStale deletes artifacts of every generation other than keep,
// including temp files left by an interrupted write.
func (f *FileSnapshotStore) removeStale(keep int64) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".tmp") {
			_ = os.Remove(filepath.Join(f.dir, name))
			continue
		}
		gen, ok := artifactGeneration(name)
		if !ok || gen == keep {
			continue
		}
		if err := os.Remove(filepath.Join(f.dir, name)); err != nil {
			logger.Warn("vectorstore: remove stale %s: %v", name, err)
		}
	}
}

func artifactName(prefix string, gen int64, ext string) string {
	return prefix + strconv.FormatInt(gen, 10) + ext
}

func artifactGeneration(name string) (int64, bool) {
	for _, prefix := range []string{indexPrefix, chunksPrefix, metaPrefix} {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := strings.TrimPrefix(name, prefix)
		rest = strings.TrimSuffix(strings.TrimSuffix(rest, ".bin"), ".json")
		gen, err := strconv.ParseInt(rest, 10, 64)
		return gen, err == nil
	}
	return 0, false
}

// encodeIndex lays out the embeddings as little-endian uint32 dimensions and
// count followed by count*dimensions float32 values.
func encodeIndex(snap *domain.VectorSnapshot) []byte {
	n := snap.Len()
	buf := make([]byte, 8+4*n*snap.Dimensions)
	binary.LittleEndian.PutUint32(buf[0:], uint32(snap.Dimensions))
	binary.LittleEndian.PutUint32(buf[4:], uint32(n))

	off := 8
	for _, e := range snap.Embeddings {
		for _, v := range e {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
			off += 4
		}
	}
	return buf
}

func decodeIndex(data []byte) (int, [][]float32, error) {
	if len(data) < 8 {
		return 0, nil, errors.New("index header truncated")
	}
	dims := int(binary.LittleEndian.Uint32(data[0:]))
	n := int(binary.LittleEndian.Uint32(data[4:]))
	if len(data) != 8+4*n*dims {
		return 0, nil, fmt.Errorf("index size %d does not match %d x %d", len(data), n, dims)
	}

	embeddings := make([][]float32, n)
	off := 8
	for i := range embeddings {
		e := make([]float32, dims)
		for j := range e {
			e[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		embeddings[i] = e
	}
	return dims, embeddings, nil
}

// writeFileAtomic writes data to a temp file, fsyncs it and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// syncDir flushes directory entries so renames survive a crash.
// Not every platform supports it, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
