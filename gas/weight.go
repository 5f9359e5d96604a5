// Copyright (c) 2019 Perlin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package gas

import (
	"github.com/holiman/uint256"
	"github.com/perlin-network/pallets"
	"github.com/perlin-network/pallets/conf"
)

// WeightToGas converts a weight into the gas it costs:
//
//	ceil((ref_time * gas_per_ref_time + proof_size * gas_per_proof_size) / divisor)
//
// saturated to the largest representable amount of gas.
func WeightToGas(weight pallets.Weight) pallets.Gas {
	perRefTime := new(uint256.Int).SetUint64(conf.GetGasPerRefTime())
	perProofSize := new(uint256.Int).SetUint64(conf.GetGasPerProofSize())
	divisor := new(uint256.Int).SetUint64(conf.GetWeightToGasDivisor())

	refTime := new(uint256.Int).Mul(new(uint256.Int).SetUint64(weight.RefTime), perRefTime)
	proofSize := new(uint256.Int).Mul(new(uint256.Int).SetUint64(weight.ProofSize), perProofSize)

	total := new(uint256.Int).Add(refTime, proofSize)

	gas := new(uint256.Int).Div(total, divisor)
	if !new(uint256.Int).Mod(total, divisor).IsZero() {
		gas.AddUint64(gas, 1)
	}

	if !gas.IsUint64() {
		return ^pallets.Gas(0)
	}

	return pallets.Gas(gas.Uint64())
}
