package entity

import "github.com/san-kum/simwatch/internal/geo"

// Handle identifies one drawn entity inside a Renderer.
type Handle uint64

// Renderer is the drawing surface. The manager owns no rendering state; it
// only issues these calls.
type Renderer interface {
	CreateEntity(v Visual, p geo.Point) Handle
	UpdateEntity(h Handle, p geo.Point, annotation string)
	DestroyEntity(h Handle)
}

// Interactor is implemented by renderers that support hover text. The text
// func may be called at any time until UnregisterHover returns.
type Interactor interface {
	RegisterHover(h Handle, text func() string)
	UnregisterHover(h Handle)
}
