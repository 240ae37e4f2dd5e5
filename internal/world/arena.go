package world

import "unsafe"

// Байтовые размеры элементов регионов арены
const (
	// VoxelStride - 6 байт на воксель: type, r, g, b, light, sunlight
	VoxelStride = 6
	// MeshVertexStride - байт на вершину меша: x, y, z, r, g, b, light, sunlight
	MeshVertexStride = 8

	quadsPerVoxel   = 6
	verticesPerQuad = 4
	indicesPerQuad  = 6
)

// Layout - рассчитанные при создании ёмкости всех регионов арены.
// Ни один регион не растёт после NewArena.
type Layout struct {
	Volume           int // вокселей в мире
	Columns          int // колонок (x, z)
	ChunkVolume      int // вокселей в чанке
	QueueCapacity    int // элементов в каждой очереди заливки
	PathCapacity     int // максимальная длина пути
	VertexCapacity   int // вершин в скретче меша
	IndexCapacity    int // индексов в скретче меша
	ColliderCapacity int // боксов в скретче коллайдеров
}

// TotalBytes возвращает суммарный объём арены
func (l Layout) TotalBytes() int {
	total := l.Volume * VoxelStride    // сетка
	total += l.Columns * 4             // карта высот
	total += 2 * l.QueueCapacity * 4   // очереди света
	total += l.Volume * (4 * 4)        // A*: g, f, parent, heap index
	total += l.Volume * (3 * 4)        // A*: seq, stamp, closed
	total += l.Volume * 4              // A*: куча
	total += l.PathCapacity * int(unsafe.Sizeof(Waypoint{}))
	total += l.VertexCapacity * MeshVertexStride
	total += l.IndexCapacity * 4
	total += l.ChunkVolume // битмап покрытия коллайдеров
	total += l.ColliderCapacity * int(unsafe.Sizeof(Box{}))
	return total
}

// NewLayout рассчитывает раскладку арены по размерам мира
func NewLayout(d Dimensions) Layout {
	volume := d.Volume()
	// каждый воксель попадает в очередь уровня не более одного раза;
	// воксели кольца вокруг бокса пересвета могут попасть повторно
	queue := volume + (2*(d.Width+d.Depth)+4)*d.Height
	if queue < d.Columns()*3 {
		queue = d.Columns() * 3
	}
	chunkVolume := d.ChunkVolume()
	return Layout{
		Volume:        volume,
		Columns:       d.Columns(),
		ChunkVolume:   chunkVolume,
		QueueCapacity: queue,
		// узел пути - пол со свободной клеткой над ним, в колонке их не больше ceil(H/2)
		PathCapacity:     d.Columns() * ((d.Height + 1) / 2),
		VertexCapacity:   chunkVolume * quadsPerVoxel * verticesPerQuad,
		IndexCapacity:    chunkVolume * quadsPerVoxel * indicesPerQuad,
		ColliderCapacity: chunkVolume,
	}
}

// NavScratch - регионы арены для A*
type NavScratch struct {
	G         []int32  // стоимость от старта
	F         []int32  // приоритет g + h
	Parent    []int32  // индекс родителя
	HeapIndex []int32  // позиция в куче, -1 - не в куче
	Seq       []uint32 // порядковый номер вставки (FIFO при равенстве)
	Stamp     []uint32 // поколение запроса; узел "чистый", если Stamp != текущего
	Closed    []uint32 // поколение, в котором узел закрыт
	Heap      []int32  // бинарная куча индексов
	Path      []Waypoint
	Gen       uint32 // текущее поколение
}

// NextGeneration начинает новый запрос без обнуления массивов
func (n *NavScratch) NextGeneration() uint32 {
	n.Gen++
	if n.Gen == 0 {
		// переполнение счётчика: один раз честно чистим метки
		for i := range n.Stamp {
			n.Stamp[i] = 0
			n.Closed[i] = 0
		}
		n.Gen = 1
	}
	return n.Gen
}

// Arena владеет всей памятью движка. Компоненты читают и пишут только
// в свои регионы; после создания аллокаций нет.
type Arena struct {
	Layout Layout

	Voxels    []byte  // Volume * VoxelStride
	Heightmap []int32 // Columns

	// Две очереди уровней для многоисточниковой заливки света
	QueueCur  []int32
	QueueNext []int32

	Nav NavScratch

	// Скретч меша чанка
	MeshVertices []byte
	MeshIndices  []uint32

	// Скретч коллайдеров чанка
	Covered []bool
	Boxes   []Box
}

// NewArena проверяет размеры и выделяет все регионы один раз
func NewArena(d Dimensions) (*Arena, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	l := NewLayout(d)

	a := &Arena{
		Layout:       l,
		Voxels:       make([]byte, l.Volume*VoxelStride),
		Heightmap:    make([]int32, l.Columns),
		QueueCur:     make([]int32, l.QueueCapacity),
		QueueNext:    make([]int32, l.QueueCapacity),
		MeshVertices: make([]byte, 0, l.VertexCapacity*MeshVertexStride),
		MeshIndices:  make([]uint32, 0, l.IndexCapacity),
		Covered:      make([]bool, l.ChunkVolume),
		Boxes:        make([]Box, 0, l.ColliderCapacity),
		Nav: NavScratch{
			G:         make([]int32, l.Volume),
			F:         make([]int32, l.Volume),
			Parent:    make([]int32, l.Volume),
			HeapIndex: make([]int32, l.Volume),
			Seq:       make([]uint32, l.Volume),
			Stamp:     make([]uint32, l.Volume),
			Closed:    make([]uint32, l.Volume),
			Heap:      make([]int32, 0, l.Volume),
			Path:      make([]Waypoint, 0, l.PathCapacity),
		},
	}
	for i := range a.Heightmap {
		a.Heightmap[i] = -1
	}
	return a, nil
}
