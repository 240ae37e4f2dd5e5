package block

import "fmt"

// Type представляет тип вокселя (первый байт из шести в сетке)
type Type uint8

// Константы встроенных типов
const (
	Air   Type = iota // 0 - пустота
	Solid             // 1 - непрозрачный твёрдый блок
	Light             // 2 - излучатель света
	Glass             // 3 - твёрдый, но пропускает свет
)

// Properties описывает физические свойства типа вокселя
type Properties struct {
	Type     Type   `yaml:"id"`
	Name     string `yaml:"name"`
	Solid    bool   `yaml:"solid"`    // участвует в коллизиях и поиске пути
	Opaque   bool   `yaml:"opaque"`   // блокирует свет, отсекает грани
	Emissive bool   `yaml:"emissive"` // источник блочного света
}

var builtins = [...]Properties{
	{Type: Air, Name: "air"},
	{Type: Solid, Name: "solid", Solid: true, Opaque: true},
	{Type: Light, Name: "light", Solid: true, Opaque: true, Emissive: true},
	{Type: Glass, Name: "glass", Solid: true},
}

// Registry - таблица типов вокселей одного мира.
// Индексируется напрямую по Type: горячие циклы (свет, меши, A*) не должны ходить в map.
type Registry struct {
	props [256]Properties
	known [256]bool
}

// NewRegistry создаёт таблицу со встроенными типами и добавляет custom поверх них
func NewRegistry(custom ...Properties) (*Registry, error) {
	r := &Registry{}
	for _, p := range builtins {
		r.set(p)
	}
	for _, p := range custom {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) set(p Properties) {
	r.props[p.Type] = p
	r.known[p.Type] = true
}

// Register добавляет (или переопределяет) тип.
// Встроенный Air переопределять нельзя: на нём держится инвариант карты высот.
func (r *Registry) Register(p Properties) error {
	if p.Type == Air {
		return fmt.Errorf("тип %d (%s): air нельзя переопределить", p.Type, p.Name)
	}
	if p.Emissive && !p.Solid {
		return fmt.Errorf("тип %d (%s): излучатель должен быть твёрдым", p.Type, p.Name)
	}
	r.set(p)
	return nil
}

// Get возвращает свойства для указанного типа
func (r *Registry) Get(t Type) (Properties, bool) {
	return r.props[t], r.known[t]
}

// IsAir возвращает true для пустого вокселя
func IsAir(t Type) bool {
	return t == Air
}

// IsSolid проверяет, является ли тип твёрдым. Неизвестные типы считаются твёрдыми.
func (r *Registry) IsSolid(t Type) bool {
	if !r.known[t] {
		return true
	}
	return r.props[t].Solid
}

// IsOpaque проверяет, блокирует ли тип свет. Неизвестные типы считаются непрозрачными.
func (r *Registry) IsOpaque(t Type) bool {
	if !r.known[t] {
		return true
	}
	return r.props[t].Opaque
}

// IsEmissive проверяет, излучает ли тип блочный свет
func (r *Registry) IsEmissive(t Type) bool {
	return r.known[t] && r.props[t].Emissive
}

// Name возвращает имя типа
func (r *Registry) Name(t Type) string {
	if !r.known[t] {
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
	return r.props[t].Name
}

// ParseType ищет тип по имени
func (r *Registry) ParseType(name string) (Type, bool) {
	for i := range r.props {
		if r.known[i] && r.props[i].Name == name {
			return Type(i), true
		}
	}
	return Air, false
}
