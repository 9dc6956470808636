package index

import (
	"encoding/binary"
	"fmt"
	"math"

	badger "github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/revo-off/Vibeyf-ai/recommender/corpus"
)

// Cache keys. The cache holds exactly one snapshot: the corpus item list and
// its embedding matrix, written together and only valid together.
const (
	cacheKeyCorpus = "corpus"
	cacheKeyMatrix = "matrix"
)

// Cache persists {corpus, matrix} snapshots in a badger store at a fixed
// path, so restarts skip re-encoding the whole corpus.
type Cache struct {
	db     *badger.DB
	logger zerolog.Logger
}

// OpenCache opens (or creates) the badger store at path.
func OpenCache(path string, logger zerolog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open embedding cache at %s: %w", path, err)
	}
	return &Cache{
		db:     db,
		logger: logger.With().Str("component", "index.cache").Logger(),
	}, nil
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Save writes the snapshot in a single transaction.
func (c *Cache) Save(items []corpus.Item, matrix [][]float64) error {
	corpusData, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode corpus snapshot: %w", err)
	}
	matrixData := encodeMatrix(matrix)

	err = c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(cacheKeyCorpus), corpusData); err != nil {
			return err
		}
		return txn.Set([]byte(cacheKeyMatrix), matrixData)
	})
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	c.logger.Debug().Int("items", len(items)).Msg("snapshot saved")
	return nil
}

// Load restores the snapshot. It returns ok=false on any failure - missing
// keys, decode errors, or a corpus/matrix row mismatch - and never an error:
// a bad cache is a cache miss and the caller rebuilds.
func (c *Cache) Load() (items []corpus.Item, matrix [][]float64, ok bool) {
	var corpusData, matrixData []byte

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cacheKeyCorpus))
		if err != nil {
			return err
		}
		corpusData, err = item.ValueCopy(nil)
		if err != nil {
			return err
		}
		item, err = txn.Get([]byte(cacheKeyMatrix))
		if err != nil {
			return err
		}
		matrixData, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		c.logger.Debug().Err(err).Msg("snapshot unavailable")
		return nil, nil, false
	}

	if err := json.Unmarshal(corpusData, &items); err != nil {
		c.logger.Warn().Err(err).Msg("corrupt corpus snapshot, ignoring cache")
		return nil, nil, false
	}
	matrix, err = decodeMatrix(matrixData)
	if err != nil {
		c.logger.Warn().Err(err).Msg("corrupt matrix snapshot, ignoring cache")
		return nil, nil, false
	}
	if len(items) == 0 || len(items) != len(matrix) {
		c.logger.Warn().
			Int("items", len(items)).
			Int("rows", len(matrix)).
			Msg("snapshot corpus/matrix mismatch, ignoring cache")
		return nil, nil, false
	}

	return items, matrix, true
}

// encodeMatrix serializes a row-major float64 matrix as
// [uint32 rows][uint32 cols][rows*cols float64 little-endian].
func encodeMatrix(matrix [][]float64) []byte {
	rows := len(matrix)
	cols := 0
	if rows > 0 {
		cols = len(matrix[0])
	}

	buf := make([]byte, 8+rows*cols*8)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(rows))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(cols))

	off := 8
	for _, row := range matrix {
		for _, v := range row {
			binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
			off += 8
		}
	}
	return buf
}

// decodeMatrix is the inverse of encodeMatrix.
func decodeMatrix(data []byte) ([][]float64, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("matrix blob too short: %d bytes", len(data))
	}
	rows := int(binary.LittleEndian.Uint32(data[0:4]))
	cols := int(binary.LittleEndian.Uint32(data[4:8]))
	if len(data) != 8+rows*cols*8 {
		return nil, fmt.Errorf("matrix blob size mismatch: %d bytes for %dx%d", len(data), rows, cols)
	}

	matrix := make([][]float64, rows)
	off := 8
	for i := range matrix {
		row := make([]float64, cols)
		for j := range row {
			row[j] = math.Float64frombits(binary.LittleEndian.Uint64(data[off:]))
			off += 8
		}
		matrix[i] = row
	}
	return matrix, nil
}
