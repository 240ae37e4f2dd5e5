package util

// Стабильные целочисленные хеши для детерминированной генерации.
// В отличие от math/rand, результат зависит только от (seed, координаты)
// и не меняется от порядка обхода.

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Hash2 возвращает хеш колонки (x, z)
func Hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

// Hash3 возвращает хеш вокселя (x, y, z)
func Hash3(seed int64, x, y, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uy := uint64(uint32(int32(y)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uy * 0xc2b2ae3d27d4eb4f) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

// Jitter возвращает смещение в диапазоне [-amp, amp] для подкрашивания цвета
func Jitter(h uint64, amp int) int {
	if amp <= 0 {
		return 0
	}
	return int(h%uint64(2*amp+1)) - amp
}

// ClampByte ограничивает значение диапазоном байта
func ClampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
