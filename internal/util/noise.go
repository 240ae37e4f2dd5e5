package util

import (
	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Параметры шума Перлина
const (
	perlinAlpha   = 2.0 // Сглаживание шума
	perlinBeta    = 2.0 // Частота шума
	perlinOctaves = 3   // Количество октав
)

// PerlinNoise - генератор шума Перлина, привязанный к одному сиду.
// Каждый экземпляр независим: глобального состояния нет, поэтому два движка
// с разными сидами не влияют друг на друга.
type PerlinNoise struct {
	p *perlin.Perlin
}

// NewPerlinNoise создаёт генератор шума Перлина с указанным сидом
func NewPerlinNoise(seed int64) *PerlinNoise {
	return &PerlinNoise{p: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed)}
}

// Noise2D возвращает значение шума для указанных координат (от 0 до 1)
func (n *PerlinNoise) Noise2D(x, y float64) float64 {
	return clamp01((n.p.Noise2D(x, y) + 1.0) / 2.0)
}

// SimplexNoise - генератор шума OpenSimplex (2D/3D), нормализованный в [0, 1]
type SimplexNoise struct {
	n opensimplex.Noise
}

// NewSimplexNoise создаёт генератор OpenSimplex с указанным сидом
func NewSimplexNoise(seed int64) *SimplexNoise {
	return &SimplexNoise{n: opensimplex.NewNormalized(seed)}
}

// Noise2D возвращает значение шума в [0, 1]
func (n *SimplexNoise) Noise2D(x, y float64) float64 {
	return n.n.Eval2(x, y)
}

// Noise3D возвращает значение шума в [0, 1]
func (n *SimplexNoise) Noise3D(x, y, z float64) float64 {
	return n.n.Eval3(x, y, z)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
