package vec

// Vec3 представляет трехмерный вектор с целочисленными координатами (в вокселях)
type Vec3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// ManhattanXZ возвращает манхэттенское расстояние в горизонтальной плоскости
func (v Vec3) ManhattanXZ(other Vec3) int {
	return abs(v.X-other.X) + abs(v.Z-other.Z)
}

// ChebyshevXZ возвращает расстояние Чебышёва в горизонтальной плоскости
func (v Vec3) ChebyshevXZ(other Vec3) int {
	dx := abs(v.X - other.X)
	dz := abs(v.Z - other.Z)
	if dx > dz {
		return dx
	}
	return dz
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
