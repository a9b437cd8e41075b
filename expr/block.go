package expr

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/YuminosukeSato/gsva/pkg/errors"
)

// Block store file layout:
//
//	magic "GSVB" | uint32 header length | JSON header | zstd block frames
//
// Each block holds rowsPerBlock consecutive rows as little-endian float64 in
// row-major order, compressed as one zstd frame. The header records the frame
// offsets so blocks are independently addressable.
var blockMagic = [4]byte{'G', 'S', 'V', 'B'}

// DefaultRowsPerBlock is used by WriteBlocks when rowsPerBlock <= 0.
const DefaultRowsPerBlock = 256

// DefaultCachedBlocks bounds how many decoded blocks a BlockMatrix keeps in
// memory at once.
const DefaultCachedBlocks = 8

type blockHeader struct {
	Genes        []string `json:"genes"`
	Samples      []string `json:"samples"`
	RowsPerBlock int      `json:"rows_per_block"`
	Offsets      []int64  `json:"offsets"`
	Lengths      []int64  `json:"lengths"`
}

// WriteBlocks stores m at path in the row-block format. The source matrix is
// streamed one block of rows at a time, so m itself may be out-of-core.
func WriteBlocks(path string, m GeneMatrix, rowsPerBlock int) (err error) {
	if rowsPerBlock <= 0 {
		rowsPerBlock = DefaultRowsPerBlock
	}
	genes, samples := m.Dims()
	if genes == 0 || samples == 0 {
		return errors.Wrap(errors.ErrEmptyData, "expr.WriteBlocks")
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return errors.Wrap(err, "expr.WriteBlocks: zstd encoder")
	}
	defer func() { _ = enc.Close() }()

	header := blockHeader{
		Genes:        m.Genes(),
		Samples:      m.Samples(),
		RowsPerBlock: rowsPerBlock,
	}

	var frames [][]byte
	raw := make([]byte, 0, rowsPerBlock*samples*8)
	row := make([]float64, samples)
	for start := 0; start < genes; start += rowsPerBlock {
		end := start + rowsPerBlock
		if end > genes {
			end = genes
		}
		raw = raw[:0]
		for i := start; i < end; i++ {
			row = m.Row(row, i)
			for _, v := range row {
				raw = binary.LittleEndian.AppendUint64(raw, math.Float64bits(v))
			}
		}
		frames = append(frames, enc.EncodeAll(raw, nil))
	}

	var offset int64
	for _, frame := range frames {
		header.Offsets = append(header.Offsets, offset)
		header.Lengths = append(header.Lengths, int64(len(frame)))
		offset += int64(len(frame))
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "expr.WriteBlocks: header")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "expr.WriteBlocks")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "expr.WriteBlocks: close")
		}
	}()

	if _, err = f.Write(blockMagic[:]); err != nil {
		return errors.Wrap(err, "expr.WriteBlocks")
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(headerJSON)))
	if _, err = f.Write(lenBuf[:]); err != nil {
		return errors.Wrap(err, "expr.WriteBlocks")
	}
	if _, err = f.Write(headerJSON); err != nil {
		return errors.Wrap(err, "expr.WriteBlocks")
	}
	for _, frame := range frames {
		if _, err = f.Write(frame); err != nil {
			return errors.Wrap(err, "expr.WriteBlocks")
		}
	}
	return nil
}

// BlockMatrix is an out-of-core GeneMatrix reading row blocks from a block
// store file on demand. Decoded blocks are held in an LRU cache, so at most
// cachedBlocks blocks are materialized at any time regardless of matrix size.
// Safe for concurrent reads.
type BlockMatrix struct {
	f        *os.File
	dec      *zstd.Decoder
	header   blockHeader
	dataOff  int64
	nGenes   int
	nSamples int
	cache    *lru.Cache[int, []float64]
}

// OpenBlocks opens a block store written by WriteBlocks. cachedBlocks <= 0
// selects DefaultCachedBlocks.
func OpenBlocks(path string, cachedBlocks int) (*BlockMatrix, error) {
	if cachedBlocks <= 0 {
		cachedBlocks = DefaultCachedBlocks
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "expr.OpenBlocks")
	}

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil || magic != blockMagic {
		_ = f.Close()
		return nil, errors.NewValidationError("path", "not a gsva block store", path)
	}
	var lenBuf [4]byte
	if _, err := io.ReadFull(f, lenBuf[:]); err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "expr.OpenBlocks: header length")
	}
	headerJSON := make([]byte, binary.LittleEndian.Uint32(lenBuf[:]))
	if _, err := io.ReadFull(f, headerJSON); err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "expr.OpenBlocks: header")
	}

	var header blockHeader
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "expr.OpenBlocks: header")
	}
	if header.RowsPerBlock <= 0 || len(header.Offsets) != len(header.Lengths) {
		_ = f.Close()
		return nil, errors.NewValidationError("header", "corrupt block index", path)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "expr.OpenBlocks: zstd decoder")
	}

	cache, err := lru.New[int, []float64](cachedBlocks)
	if err != nil {
		dec.Close()
		_ = f.Close()
		return nil, errors.Wrap(err, "expr.OpenBlocks: cache")
	}

	return &BlockMatrix{
		f:        f,
		dec:      dec,
		header:   header,
		dataOff:  int64(8 + len(headerJSON)),
		nGenes:   len(header.Genes),
		nSamples: len(header.Samples),
		cache:    cache,
	}, nil
}

// Close releases the file handle and decoder.
func (b *BlockMatrix) Close() error {
	b.dec.Close()
	return b.f.Close()
}

// Dims implements GeneMatrix.
func (b *BlockMatrix) Dims() (int, int) { return b.nGenes, b.nSamples }

// Genes implements GeneMatrix.
func (b *BlockMatrix) Genes() []string { return b.header.Genes }

// Samples implements GeneMatrix.
func (b *BlockMatrix) Samples() []string { return b.header.Samples }

// At implements GeneMatrix.
func (b *BlockMatrix) At(i, j int) float64 {
	block, err := b.block(i / b.header.RowsPerBlock)
	if err != nil {
		// GeneMatrix access is panic-on-error like gonum's mat.At; the chunk
		// scheduler converts the panic into a PanicError.
		panic(err)
	}
	return block[(i%b.header.RowsPerBlock)*b.nSamples+j]
}

// Row implements GeneMatrix.
func (b *BlockMatrix) Row(dst []float64, i int) []float64 {
	block, err := b.block(i / b.header.RowsPerBlock)
	if err != nil {
		panic(err)
	}
	if cap(dst) < b.nSamples {
		dst = make([]float64, b.nSamples)
	}
	dst = dst[:b.nSamples]
	off := (i % b.header.RowsPerBlock) * b.nSamples
	copy(dst, block[off:off+b.nSamples])
	return dst
}

func (b *BlockMatrix) block(idx int) ([]float64, error) {
	if cached, ok := b.cache.Get(idx); ok {
		return cached, nil
	}

	frame := make([]byte, b.header.Lengths[idx])
	if _, err := b.f.ReadAt(frame, b.dataOff+b.header.Offsets[idx]); err != nil {
		return nil, errors.Wrapf(err, "expr.BlockMatrix: read block %d", idx)
	}
	raw, err := b.dec.DecodeAll(frame, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "expr.BlockMatrix: decode block %d", idx)
	}
	if len(raw)%8 != 0 {
		return nil, errors.Newf("expr.BlockMatrix: block %d has truncated payload", idx)
	}

	values := make([]float64, len(raw)/8)
	for k := range values {
		values[k] = math.Float64frombits(binary.LittleEndian.Uint64(raw[k*8:]))
	}
	b.cache.Add(idx, values)
	return values, nil
}
