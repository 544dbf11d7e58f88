// Package chunker implements FastCDC-2020 normalized content-defined
// chunking: input bytes are split at boundaries chosen by a rolling
// GearHash so that local edits perturb only a bounded window of
// chunks, with a two-mask normalization pass that keeps most chunks
// close to the target average size.
package chunker

// Size thresholds, in bytes. These are protocol constants: changing
// them changes where every future chunk boundary falls.
const (
	MinSize = 1 << 20 // 1 MiB
	AvgSize = 1 << 22 // 4 MiB
	MaxSize = 1 << 23 // 8 MiB
)

// avgBits is the bit width closest to AvgSize (2^22 == AvgSize
// exactly), used to derive the two normalization masks.
const avgBits = 22

// normalizationLevel controls how far the two masks diverge from
// avgBits. Level 1 matches the FastCDC-2020 paper's recommended
// default: strict enough to avoid a bimodal chunk-size distribution
// without flattening the curve into uniform-size chunking.
const normalizationLevel = 1

var (
	maskSmall = maskWithBits(avgBits + normalizationLevel) // stricter: used below AvgSize
	maskLarge = maskWithBits(avgBits - normalizationLevel) // looser: used at/above AvgSize
)

// maskWithBits returns a 64-bit mask with its top n bits set.
func maskWithBits(n uint) uint64 {
	if n == 0 {
		return 0
	}
	if n >= 64 {
		return ^uint64(0)
	}
	return ^uint64(0) << (64 - n)
}

// gearSkipBytes is how far a boundary scan jumps ahead before
// consulting the rolling hash. No boundary can occur before MinSize,
// and the gear hash's effective window is 64 bytes (each step shifts
// the accumulator left by one, so bytes older than 64 steps no longer
// influence the high bits used by the masks), so the first
// MinSize-64-1 bytes of a chunk can be skipped without changing the
// boundary found.
const gearSkipBytes = MinSize - 64 - 1

// Cut splits data into content-defined chunks and returns them in
// file order. Concatenating the returned slices reproduces data
// exactly.
func Cut(data []byte) [][]byte {
	var chunks [][]byte
	for len(data) > 0 {
		n := findBoundary(data)
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return chunks
}

// findBoundary scans data from the start and returns the length of
// the first chunk, forcing a cut at MaxSize if no boundary is found
// sooner.
func findBoundary(data []byte) int {
	length := len(data)
	if length <= MinSize {
		return length
	}

	var hash uint64
	position := gearSkipBytes
	if position > length {
		position = 0
	}

	for position < length {
		hash = (hash << 1) + gearTable[data[position]]
		position++

		if position < AvgSize {
			if position >= MinSize && hash&maskSmall == 0 {
				return position
			}
		} else {
			if hash&maskLarge == 0 {
				return position
			}
		}

		if position >= MaxSize {
			return position
		}
	}

	return length
}
