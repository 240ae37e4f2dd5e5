package world

// Box - выровненный по осям бокс коллайдера в вокселях
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Z      int `json:"z"`
	Width  int `json:"w"`
	Height int `json:"h"`
	Depth  int `json:"d"`
}

// Contains проверяет, покрывает ли бокс воксель
func (b Box) Contains(x, y, z int) bool {
	return x >= b.X && x < b.X+b.Width &&
		y >= b.Y && y < b.Y+b.Height &&
		z >= b.Z && z < b.Z+b.Depth
}

// Volume возвращает объём бокса в вокселях
func (b Box) Volume() int {
	return b.Width * b.Height * b.Depth
}

// Waypoint - узел пути или найденная цель: позиция пола и упакованный свет
type Waypoint struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Z           int    `json:"z"`
	LightPacked uint16 `json:"light"`
}

// PackLight упаковывает два канала света в одно число: light<<8 | sunlight
func PackLight(light, sunlight uint8) uint16 {
	return uint16(light)<<8 | uint16(sunlight)
}

// UnpackLight распаковывает значение, собранное PackLight
func UnpackLight(packed uint16) (light, sunlight uint8) {
	return uint8(packed >> 8), uint8(packed)
}

// Light возвращает блочный свет точки пути
func (w Waypoint) Light() uint8 {
	l, _ := UnpackLight(w.LightPacked)
	return l
}

// Sunlight возвращает солнечный свет точки пути
func (w Waypoint) Sunlight() uint8 {
	_, s := UnpackLight(w.LightPacked)
	return s
}
