package nnue

import "github.com/tczajka/wazir-drop/internal/board"

// MaxScore bounds the network output: +-5.0 logits in x10000 units.
const MaxScore = 50000

// Forward computes the network output from the side to move's view.
//
// Fixed-point contract: activations live in [0,127] with 127 = 1.0.
// Layer 2 weights carry scale 256, so a product unit is 127*256 and the
// post-sum shift is 8; layer 3 carries scale 64 and shift 6; the output
// row carries scale 78.7 ~ 10000/127, so the final sum is already in
// x10000 evaluation units.
func (n *Network) Forward(acc *Accumulator, sideToMove board.Color) int {
	// Clipped ReLU over both perspectives, mover first.
	var x [2 * EmbeddingSize]int8
	creluInt16(x[:EmbeddingSize], acc.values[sideToMove][:])
	creluInt16(x[EmbeddingSize:], acc.values[sideToMove.Other()][:])

	var h1 [Hidden1]int8
	for i := 0; i < Hidden1; i++ {
		sum := int32(n.L2Bias[i]) + dotInt8(n.L2Weights[i][:], x[:])
		h1[i] = creluShift(sum, 8)
	}

	var h2 [Hidden2]int8
	for i := 0; i < Hidden2; i++ {
		sum := int32(n.L3Bias[i]) + dotInt8(n.L3Weights[i][:], h1[:])
		h2[i] = creluShift(sum, 6)
	}

	out := int32(n.OutBias) + dotInt8(n.OutWeights[:], h2[:])
	if out > MaxScore {
		out = MaxScore
	} else if out < -MaxScore {
		out = -MaxScore
	}
	return int(out)
}

// creluInt16 clamps int16 accumulator values into [0,127] int8.
func creluInt16(dst []int8, src []int16) {
	for i, v := range src {
		if v < 0 {
			v = 0
		} else if v > 127 {
			v = 127
		}
		dst[i] = int8(v)
	}
}

// creluShift rescales a layer sum and clamps it into [0,127].
func creluShift(sum int32, shift uint) int8 {
	v := sum >> shift
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return int8(v)
}

// dotInt8 is the int8 multiply-accumulate shared by all builds; keeping a
// single definition makes SIMD and scalar scores bit-identical.
func dotInt8(weights, inputs []int8) int32 {
	var sum int32
	i := 0
	for ; i+4 <= len(weights); i += 4 {
		sum += int32(weights[i]) * int32(inputs[i])
		sum += int32(weights[i+1]) * int32(inputs[i+1])
		sum += int32(weights[i+2]) * int32(inputs[i+2])
		sum += int32(weights[i+3]) * int32(inputs[i+3])
	}
	for ; i < len(weights); i++ {
		sum += int32(weights[i]) * int32(inputs[i])
	}
	return sum
}
