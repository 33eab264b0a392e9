package siren

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

// ErrInvalidEntity indicates a document that is not a valid Siren entity.
var ErrInvalidEntity = errors.New("siren: invalid entity")

// Parse decodes data as a Siren entity and validates its structure.
//
// Validation follows the Siren rules the store depends on: links need rel and
// href, embedded sub-entities need rel, and actions need name and href.
func Parse(data []byte) (*Entity, error) {
	var e Entity
	if err := sonic.ConfigStd.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEntity, err)
	}
	if err := validate(&e, false, "entity"); err != nil {
		return nil, err
	}
	return &e, nil
}

func validate(e *Entity, embedded bool, path string) error {
	if e == nil {
		return fmt.Errorf("%w: %s is null", ErrInvalidEntity, path)
	}
	if embedded && len(e.Rel) == 0 {
		return fmt.Errorf("%w: %s is missing rel", ErrInvalidEntity, path)
	}
	for i, l := range e.Links {
		if len(l.Rel) == 0 {
			return fmt.Errorf("%w: %s.links[%d] is missing rel", ErrInvalidEntity, path, i)
		}
		if l.Href == "" {
			return fmt.Errorf("%w: %s.links[%d] is missing href", ErrInvalidEntity, path, i)
		}
	}
	for i, a := range e.Actions {
		if a.Name == "" {
			return fmt.Errorf("%w: %s.actions[%d] is missing name", ErrInvalidEntity, path, i)
		}
		if a.Href == "" {
			return fmt.Errorf("%w: %s.actions[%d] is missing href", ErrInvalidEntity, path, i)
		}
	}
	for i, sub := range e.Entities {
		if err := validate(sub, true, fmt.Sprintf("%s.entities[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}
