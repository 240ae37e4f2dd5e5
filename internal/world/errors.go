package world

import "errors"

var (
	// ErrOutOfBounds - координата вокселя или чанка вне мира.
	// Это ошибка вызывающей стороны, а не штатная ситуация.
	ErrOutOfBounds = errors.New("coordinates out of bounds")

	// ErrConfig - недопустимые параметры мира при создании
	ErrConfig = errors.New("invalid world configuration")

	// ErrUnknownGenerator - запрошена неизвестная стратегия генерации
	ErrUnknownGenerator = errors.New("unknown generator")
)
