package calibration

import "runtime"

// GenerateModulusSizes returns the modulus bit lengths measured by a full
// calibration.
func GenerateModulusSizes() []int {
	return []int{256, 512, 1024, 2048, 3072, 4096}
}

// GenerateQuickModulusSizes returns a reduced set for a fast calibration.
func GenerateQuickModulusSizes() []int {
	return []int{256, 1024, 2048}
}

// RoundsFor returns how many exponentiations are timed for a modulus of
// the given size. Each exptmod is cubic in the size, so large moduli get
// fewer rounds; single-core machines get half as many to stay responsive.
func RoundsFor(bits int) int {
	rounds := 64
	for b := 256; b < bits && rounds > 2; b *= 2 {
		rounds /= 4
	}
	rounds = max(rounds, 2)
	if runtime.NumCPU() == 1 {
		rounds = max(rounds/2, 1)
	}
	return rounds
}
