package generator

import (
	"errors"
	"fmt"

	"go-page-builder/internal/model"

	"github.com/google/uuid"
)

// ErrUnknownType is returned when a component is requested for a type with no definition.
var ErrUnknownType = errors.New("unknown component type")

// Factory creates components with fresh ids and their type's defaults.
type Factory struct {
	NewID func() string
}

// NewFactory returns a factory generating UUID ids.
func NewFactory() *Factory {
	return &Factory{NewID: uuid.NewString}
}

var defaultFactory = NewFactory()

// Create builds a new component of type t. Containers get an empty children list;
// a row is pre-populated with exactly two columns.
func (f *Factory) Create(t model.ComponentType) (*model.Component, error) {
	def, ok := definitionIndex[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	c := &model.Component{
		ID:     f.ID(),
		Type:   t,
		Props:  def.DefaultProps.Clone(),
		Styles: def.DefaultStyles.Clone(),
	}
	if c.Props == nil {
		c.Props = model.Props{}
	}
	if c.Styles == nil {
		c.Styles = model.Styles{}
	}

	switch {
	case t == model.TypeRow:
		left, err := f.Create(model.TypeColumn)
		if err != nil {
			return nil, err
		}
		right, err := f.Create(model.TypeColumn)
		if err != nil {
			return nil, err
		}
		c.Children = []*model.Component{left, right}
	case def.IsContainer:
		c.Children = []*model.Component{}
	}
	return c, nil
}

// MustCreate is Create for callers holding a type known at compile time.
// It panics on an unregistered type.
func (f *Factory) MustCreate(t model.ComponentType) *model.Component {
	c, err := f.Create(t)
	if err != nil {
		panic(err)
	}
	return c
}

// ID returns a fresh component id.
func (f *Factory) ID() string {
	if f == nil || f.NewID == nil {
		return uuid.NewString()
	}
	return f.NewID()
}

// NewComponent creates a component with the default UUID factory.
func NewComponent(t model.ComponentType) (*model.Component, error) {
	return defaultFactory.Create(t)
}
