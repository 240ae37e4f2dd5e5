package world

import (
	"github.com/annel0/voxel-engine/internal/util"
	"github.com/annel0/voxel-engine/internal/world/block"
)

// Базовые цвета ландшафта
var (
	colorGrass = [3]int{86, 152, 58}
	colorDirt  = [3]int{124, 92, 64}
	colorStone = [3]int{118, 118, 122}
	colorSnow  = [3]int{236, 240, 244}
	colorSand  = [3]int{208, 190, 130}
	colorLamp  = [3]int{255, 214, 140}
)

// Параметры рельефа
const (
	perlinScale   = 0.045 // Масштаб основного шума (высота)
	simplexScale  = 0.06  // Масштаб 3D шума пещер
	lampRarity    = 211   // Один фонарь на столько колонок
	colorJitter   = 8     // Разброс оттенка
	dirtThickness = 3     // Слой земли под травой
)

func tint(c [3]int, h uint64) Voxel {
	return Voxel{
		Type: block.Solid,
		R:    util.ClampByte(c[0] + util.Jitter(h, colorJitter)),
		G:    util.ClampByte(c[1] + util.Jitter(h>>8, colorJitter)),
		B:    util.ClampByte(c[2] + util.Jitter(h>>16, colorJitter)),
	}
}

// FlatParams - параметры плоского мира
type FlatParams struct {
	// Layers - количество сплошных слоёв; верхний слой имеет y = Layers-1.
	// 0 - четверть высоты мира.
	Layers int `yaml:"layers"`
}

// FlatStrategy - равнина: каждая колонка залита до одной высоты
type FlatStrategy struct {
	Params FlatParams
}

func (s *FlatStrategy) Name() string { return GeneratorFlat }

func (s *FlatStrategy) Prepare(d Dimensions, seed int64) GeneratorFunc {
	layers := s.Params.Layers
	if layers <= 0 {
		layers = d.Height / 4
	}
	if layers < 1 {
		layers = 1
	}
	if layers > d.Height {
		layers = d.Height
	}
	top := layers - 1

	return func(x, y, z int) (Voxel, bool) {
		if y > top {
			return Voxel{}, false
		}
		h := util.Hash3(seed, x, y, z)
		if y == top {
			return tint(colorGrass, h), true
		}
		return tint(colorDirt, h), true
	}
}

// PerlinStrategy - карта высот из шума Перлина, полосы материалов и редкие фонари
type PerlinStrategy struct{}

func (s *PerlinStrategy) Name() string { return GeneratorPerlin }

func (s *PerlinStrategy) Prepare(d Dimensions, seed int64) GeneratorFunc {
	noise := util.NewPerlinNoise(seed)
	base := float64(d.Height) / 4
	amp := float64(d.Height) / 2
	snowLine := d.Height * 3 / 4
	sandLine := d.Height / 4

	// Кеш последней колонки: Generate обходит y во внутреннем цикле
	lastX, lastZ, top := -1, -1, 0
	lamp := false

	return func(x, y, z int) (Voxel, bool) {
		if x != lastX || z != lastZ {
			lastX, lastZ = x, z
			n := noise.Noise2D(float64(x)*perlinScale, float64(z)*perlinScale)
			top = clampInt(int(base+n*amp), 0, d.Height-2)
			lamp = util.Hash2(seed+7, x, z)%lampRarity == 0
		}

		h := util.Hash3(seed, x, y, z)
		switch {
		case y > top+1:
			return Voxel{}, false
		case y == top+1:
			if lamp {
				v := tint(colorLamp, h)
				v.Type = block.Light
				return v, true
			}
			return Voxel{}, false
		case y == top:
			switch {
			case top >= snowLine:
				return tint(colorSnow, h), true
			case top <= sandLine:
				return tint(colorSand, h), true
			default:
				return tint(colorGrass, h), true
			}
		case y >= top-dirtThickness:
			return tint(colorDirt, h), true
		default:
			return tint(colorStone, h), true
		}
	}
}

// SimplexStrategy - объёмный рельеф с пещерами из 3D шума OpenSimplex
type SimplexStrategy struct{}

func (s *SimplexStrategy) Name() string { return GeneratorSimplex }

func (s *SimplexStrategy) Prepare(d Dimensions, seed int64) GeneratorFunc {
	noise := util.NewSimplexNoise(seed)
	height := float64(d.Height)

	solid := func(x, y, z int) bool {
		if y == 0 {
			return true // коренная порода
		}
		if y >= d.Height {
			return false
		}
		n := noise.Noise3D(float64(x)*simplexScale, float64(y)*simplexScale, float64(z)*simplexScale)
		// градиент по высоте: внизу плотнее, наверху воздух
		density := n + 0.55 - float64(y)/height
		return density > 0.5
	}

	return func(x, y, z int) (Voxel, bool) {
		if !solid(x, y, z) {
			return Voxel{}, false
		}
		h := util.Hash3(seed, x, y, z)
		switch {
		case !solid(x, y+1, z):
			return tint(colorGrass, h), true
		case !solid(x, y+dirtThickness, z):
			return tint(colorDirt, h), true
		default:
			return tint(colorStone, h), true
		}
	}
}
