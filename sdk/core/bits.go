// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"math"
	"math/bits"
	"slices"

	"github.com/zintix-labs/splitkey/errs"
	"github.com/zintix-labs/splitkey/sdk/threefry"
)

// Bits 是 RandomBits 的輸出：以 row-major 攤平的無號整數陣列。
//
// Data 一律以 uint64 儲存，每個元素只有低 Width 位元有效，範圍 [0, 2^Width)。
type Bits struct {
	Shape []int    `json:"shape"`
	Width int      `json:"width"`
	Data  []uint64 `json:"data"`
}

// Len 回傳元素個數。
func (b Bits) Len() int { return len(b.Data) }

// At 以多維索引取值；索引數量或範圍錯誤時會 panic（與切片索引行為一致）。
func (b Bits) At(idx ...int) uint64 {
	if len(idx) != len(b.Shape) {
		panic("core: Bits.At index rank mismatch")
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= b.Shape[i] {
			panic("core: Bits.At index out of range")
		}
		off = off*b.Shape[i] + v
	}
	return b.Data[off]
}

func (b Bits) Uint64s() []uint64 { return slices.Clone(b.Data) }

func (b Bits) Uint32s() []uint32 {
	out := make([]uint32, len(b.Data))
	for i, v := range b.Data {
		out[i] = uint32(v)
	}
	return out
}

func (b Bits) Uint16s() []uint16 {
	out := make([]uint16, len(b.Data))
	for i, v := range b.Data {
		out[i] = uint16(v)
	}
	return out
}

func (b Bits) Uint8s() []uint8 {
	out := make([]uint8, len(b.Data))
	for i, v := range b.Data {
		out[i] = uint8(v)
	}
	return out
}

func validWidth(w int) bool {
	return w == 8 || w == 16 || w == 32 || w == 64
}

// shapeSize 回傳元素總數；負維度為參數錯誤，乘積溢位視為 counter 溢位。
func shapeSize(shape []int) (int, error) {
	size := uint64(1)
	for i, d := range shape {
		if d < 0 {
			return 0, errs.Coded(errs.CodeInvalidShape, "dimension %d is negative (%d)", i, d)
		}
		hi, lo := bits.Mul64(size, uint64(d))
		if hi != 0 || lo > math.MaxInt {
			return 0, errs.Coded(errs.CodeCounterOverflow, "shape %v has too many elements", shape)
		}
		size = lo
	}
	return int(size), nil
}

// wordCount = ceil(width*size/32)，超過 counter 空間回傳 Fatal。
func wordCount(size, width int) (int, error) {
	hi, total := bits.Mul64(uint64(size), uint64(width))
	n := (total + 31) / 32
	if hi != 0 || n > threefry.MaxWords {
		return 0, errs.Coded(errs.CodeCounterOverflow, "%d elements of %d bits exceed counter space", size, width)
	}
	return int(n), nil
}

// compose 把 32-bit word 串流轉成指定寬度：
//   - 32：逐一對應。
//   - 64：前半 word 為高 32 位、後半 word 為低 32 位（words[i]<<32 | words[size+i]）。
//   - 8 / 16：每個 word 依 little-endian 切成多個 lane。
func compose(words []uint32, shape []int, size, width int) Bits {
	out := Bits{Shape: slices.Clone(shape), Width: width, Data: make([]uint64, size)}
	if out.Shape == nil {
		out.Shape = []int{}
	}
	switch width {
	case 32:
		for i := range out.Data {
			out.Data[i] = uint64(words[i])
		}
	case 64:
		for i := range out.Data {
			out.Data[i] = uint64(words[i])<<32 | uint64(words[size+i])
		}
	default:
		lanes := 32 / width
		mask := uint32(1)<<width - 1
		for e := range out.Data {
			w := words[e/lanes]
			out.Data[e] = uint64((w >> (width * (e % lanes))) & mask)
		}
	}
	return out
}
