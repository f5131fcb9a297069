package nnue

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Weight blob format constants. Scales are stored in tenths so the
// non-integer output scale fits the int32 header.
const (
	MagicNumber uint32 = 0x57505331 // "WPS1"
	Version     uint32 = 1

	ScaleL1x10  = 1270 // embeddings in [-1,1], x127
	ScaleL2x10  = 2560 // weights in [-0.49,0.49], x256
	ScaleL3x10  = 640  // weights in [-1.98,1.98], x64
	ScaleOutx10 = 787  // weights in [-1.61,1.61], x78.7 ~ 10000/127
)

// Hidden layer sizes.
const (
	Hidden1 = 16
	Hidden2 = 32
)

// Network holds the quantized weights. The same embedding table serves
// both perspectives.
type Network struct {
	// Layer 1: one int8 embedding row per feature, accumulated in int16.
	Embedding [NumFeatures][EmbeddingSize]int8

	// Layer 2: both perspectives concatenated -> Hidden1.
	L2Weights [Hidden1][2 * EmbeddingSize]int8
	L2Bias    [Hidden1]int16

	// Layer 3: Hidden1 -> Hidden2.
	L3Weights [Hidden2][Hidden1]int8
	L3Bias    [Hidden2]int16

	// Output layer: Hidden2 -> 1, in evaluation units (x10000).
	OutWeights [Hidden2]int8
	OutBias    int16

	// Embedding rows widened to int16 once at load, so the accumulator
	// update is a flat int16 vector add.
	rowsWide [NumFeatures][EmbeddingSize]int16
}

type blobHeader struct {
	Magic         uint32
	Version       uint32
	NumFeatures   int32
	EmbeddingSize int32
	Hidden1       int32
	Hidden2       int32
	Scales        [4]int32
}

// Load reads the decoded weight blob. Any mismatch with the compiled-in
// architecture is fatal to the caller.
func Load(r io.Reader) (*Network, error) {
	var h blobHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(err, "read weight header")
	}
	if h.Magic != MagicNumber {
		return nil, errors.Errorf("weight blob magic %08x, want %08x", h.Magic, MagicNumber)
	}
	if h.Version != Version {
		return nil, errors.Errorf("weight blob version %d, want %d", h.Version, Version)
	}
	if h.NumFeatures != NumFeatures || h.EmbeddingSize != EmbeddingSize ||
		h.Hidden1 != Hidden1 || h.Hidden2 != Hidden2 {
		return nil, errors.Errorf("weight blob architecture %dx%d/%d/%d does not match engine",
			h.NumFeatures, h.EmbeddingSize, h.Hidden1, h.Hidden2)
	}
	want := [4]int32{ScaleL1x10, ScaleL2x10, ScaleL3x10, ScaleOutx10}
	if h.Scales != want {
		return nil, errors.Errorf("weight blob scales %v, want %v", h.Scales, want)
	}

	n := &Network{}
	for i := range n.Embedding {
		if err := binary.Read(r, binary.LittleEndian, n.Embedding[i][:]); err != nil {
			return nil, errors.Wrapf(err, "read embedding row %d", i)
		}
	}
	for i := range n.L2Weights {
		if err := binary.Read(r, binary.LittleEndian, n.L2Weights[i][:]); err != nil {
			return nil, errors.Wrapf(err, "read layer-2 row %d", i)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, n.L2Bias[:]); err != nil {
		return nil, errors.Wrap(err, "read layer-2 bias")
	}
	for i := range n.L3Weights {
		if err := binary.Read(r, binary.LittleEndian, n.L3Weights[i][:]); err != nil {
			return nil, errors.Wrapf(err, "read layer-3 row %d", i)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, n.L3Bias[:]); err != nil {
		return nil, errors.Wrap(err, "read layer-3 bias")
	}
	if err := binary.Read(r, binary.LittleEndian, n.OutWeights[:]); err != nil {
		return nil, errors.Wrap(err, "read output weights")
	}
	if err := binary.Read(r, binary.LittleEndian, &n.OutBias); err != nil {
		return nil, errors.Wrap(err, "read output bias")
	}
	n.widenRows()
	return n, nil
}

// Save writes the blob in Load's format. Used by the training tooling and
// the round-trip tests.
func (n *Network) Save(w io.Writer) error {
	h := blobHeader{
		Magic:         MagicNumber,
		Version:       Version,
		NumFeatures:   NumFeatures,
		EmbeddingSize: EmbeddingSize,
		Hidden1:       Hidden1,
		Hidden2:       Hidden2,
		Scales:        [4]int32{ScaleL1x10, ScaleL2x10, ScaleL3x10, ScaleOutx10},
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return errors.Wrap(err, "write weight header")
	}
	for i := range n.Embedding {
		if err := binary.Write(w, binary.LittleEndian, n.Embedding[i][:]); err != nil {
			return errors.Wrapf(err, "write embedding row %d", i)
		}
	}
	for i := range n.L2Weights {
		if err := binary.Write(w, binary.LittleEndian, n.L2Weights[i][:]); err != nil {
			return errors.Wrapf(err, "write layer-2 row %d", i)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, n.L2Bias[:]); err != nil {
		return errors.Wrap(err, "write layer-2 bias")
	}
	for i := range n.L3Weights {
		if err := binary.Write(w, binary.LittleEndian, n.L3Weights[i][:]); err != nil {
			return errors.Wrapf(err, "write layer-3 row %d", i)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, n.L3Bias[:]); err != nil {
		return errors.Wrap(err, "write layer-3 bias")
	}
	if err := binary.Write(w, binary.LittleEndian, n.OutWeights[:]); err != nil {
		return errors.Wrap(err, "write output weights")
	}
	return errors.Wrap(binary.Write(w, binary.LittleEndian, n.OutBias), "write output bias")
}

func (n *Network) widenRows() {
	for i := range n.Embedding {
		for j, v := range n.Embedding[i] {
			n.rowsWide[i][j] = int16(v)
		}
	}
}

// InitRandom fills the network with small deterministic pseudo-random
// weights. For tests only; real weights come from offline training.
func (n *Network) InitRandom(seed uint64) {
	state := seed
	next := func() int8 {
		state = state*6364136223846793005 + 1442695040888963407
		return int8(state >> 56)
	}
	for i := range n.Embedding {
		for j := range n.Embedding[i] {
			n.Embedding[i][j] = next() / 4
		}
	}
	for i := range n.L2Weights {
		for j := range n.L2Weights[i] {
			n.L2Weights[i][j] = next() / 2
		}
		n.L2Bias[i] = int16(next()) * 16
	}
	for i := range n.L3Weights {
		for j := range n.L3Weights[i] {
			n.L3Weights[i][j] = next() / 2
		}
		n.L3Bias[i] = int16(next()) * 8
	}
	for i := range n.OutWeights {
		n.OutWeights[i] = next() / 2
	}
	n.OutBias = int16(next())
	n.widenRows()
}
