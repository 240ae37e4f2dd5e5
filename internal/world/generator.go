package world

import (
	"fmt"
	"sort"
)

// GeneratorFunc решает, что лежит в вокселе (x, y, z).
// false - воздух; иначе тип и цвет записываются в сетку как есть (свет игнорируется).
type GeneratorFunc func(x, y, z int) (Voxel, bool)

// Strategy - стратегия генерации ландшафта.
// Prepare вызывается один раз на Generate и должна быть детерминированной по (d, seed).
type Strategy interface {
	Name() string
	Prepare(d Dimensions, seed int64) GeneratorFunc
}

// Имена встроенных стратегий
const (
	GeneratorFlat    = "flat"
	GeneratorPerlin  = "perlin"
	GeneratorSimplex = "simplex"
	GeneratorEmpty   = "empty"

	DefaultGenerator = GeneratorPerlin
)

// GeneratorNames возвращает имена встроенных стратегий
func GeneratorNames() []string {
	names := []string{GeneratorFlat, GeneratorPerlin, GeneratorSimplex, GeneratorEmpty}
	sort.Strings(names)
	return names
}

// SetGenerator выбирает встроенную стратегию по имени
func (g *Grid) SetGenerator(name string) error {
	var s Strategy
	switch name {
	case GeneratorFlat:
		s = &FlatStrategy{Params: g.flat}
	case GeneratorPerlin:
		s = &PerlinStrategy{}
	case GeneratorSimplex:
		s = &SimplexStrategy{}
	case GeneratorEmpty:
		s = emptyStrategy{}
	default:
		return fmt.Errorf("%w: %q (доступны: %v)", ErrUnknownGenerator, name, GeneratorNames())
	}
	g.strategy = s
	return nil
}

// SetStrategy подключает произвольную стратегию
func (g *Grid) SetStrategy(s Strategy) {
	if s != nil {
		g.strategy = s
	}
}

// SetGeneratorFunc подключает пользовательский колбэк вместо стратегии
func (g *Grid) SetGeneratorFunc(fn GeneratorFunc) {
	if fn != nil {
		g.strategy = funcStrategy{fn: fn}
	}
}

// Generator возвращает имя текущей стратегии
func (g *Grid) Generator() string {
	return g.strategy.Name()
}

// funcStrategy оборачивает колбэк вызывающей стороны
type funcStrategy struct {
	fn GeneratorFunc
}

func (s funcStrategy) Name() string { return "func" }

func (s funcStrategy) Prepare(Dimensions, int64) GeneratorFunc { return s.fn }

type emptyStrategy struct{}

func (emptyStrategy) Name() string { return GeneratorEmpty }

func (emptyStrategy) Prepare(Dimensions, int64) GeneratorFunc {
	return func(int, int, int) (Voxel, bool) { return Voxel{}, false }
}
