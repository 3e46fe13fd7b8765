package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vk/phasegrid/internal/binding"
	"github.com/vk/phasegrid/internal/drawing"
	"github.com/vk/phasegrid/internal/graph"
	"github.com/vk/phasegrid/internal/quantity"
)

// ErrUnknownPage is returned by Build for names not in Names.
var ErrUnknownPage = errors.New("unknown page")

// Page names.
const (
	SimpleName      = "simple"
	CombinationName = "combination"
	GameName        = "game"
	FourierName     = "fourier"
)

// Roles used by the pages.
const (
	RolePhase     quantity.Role = "phase"
	RoleFreq      quantity.Role = "freq"
	RoleAmp       quantity.Role = "amp"
	RoleShiftY    quantity.Role = "shift_y"
	RoleSinOutput quantity.Role = "sin_output"
)

// Page is a built demo.
type Page interface {
	Name() string
	// Drawables returns the shapes to render, in paint order.
	Drawables() []drawing.Drawable
}

// Names lists the pages Build knows, in menu order.
func Names() []string {
	return []string{SimpleName, CombinationName, GameName, FourierName}
}

// Build declares the named page in m.
func Build(ctx context.Context, name string, m *graph.Manager) (Page, error) {
	switch name {
	case SimpleName:
		return NewSimple(m)
	case CombinationName:
		return NewCombination(m)
	case GameName:
		g, err := NewGame(m)
		if err != nil {
			return nil, err
		}
		return g, nil
	case FourierName:
		f, err := NewFourier(ctx, m)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownPage, name, strings.Join(Names(), ", "))
}

// builder binds quantities and collects shapes, keeping the first error.
type builder struct {
	m         *graph.Manager
	drawables []drawing.Drawable
	err       error
}

func (b *builder) bind(id quantity.ID) *binding.Binding {
	bb, err := b.m.Bind(id)
	if err != nil && b.err == nil {
		b.err = err
	}
	return bb
}

func (b *builder) point(x, y quantity.ID) drawing.Point {
	return drawing.Point{X: b.bind(x), Y: b.bind(y)}
}

func (b *builder) add(ds ...drawing.Drawable) {
	b.drawables = append(b.drawables, ds...)
}

// static is a page whose shapes never change after construction.
type static struct {
	name      string
	drawables []drawing.Drawable
}

func (p *static) Name() string                  { return p.name }
func (p *static) Drawables() []drawing.Drawable { return p.drawables }
