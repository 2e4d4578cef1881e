package entities

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/linkrel/hypermedia/pkg/hypermedia/types"
)

type EntityDecoratorFunc func(e *EntityImpl)

func New(entityID, entityType string, decorators ...EntityDecoratorFunc) (types.Entity, error) {
	e := &EntityImpl{
		entityID:   entityID,
		entityType: entityType,
		attributes: map[string]any{},
	}

	for _, decorator := range decorators {
		decorator(e)
	}

	return e, nil
}

func NewFromJSON(body []byte) (types.Entity, error) {
	e := &EntityImpl{}
	err := json.Unmarshal(body, e)

	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal entity: %w", err)
	}

	if e.Type() == "" {
		return nil, fmt.Errorf("failed to parse entity")
	}

	return e, nil
}

func NewFromSlice(body []byte) ([]types.Entity, error) {
	impls := []EntityImpl{}
	err := json.Unmarshal(body, &impls)
	if err != nil {
		return nil, err
	}

	arr := make([]types.Entity, 0, len(impls))

	for _, e := range impls {
		arr = append(arr, e)
	}

	return arr, nil
}

type EntityImpl struct {
	entityID   string
	entityType string

	attributes map[string]any
}

func (e EntityImpl) ID() string {
	return e.entityID
}

func (e EntityImpl) Type() string {
	return e.entityType
}

func (e EntityImpl) ForEachAttribute(callback func(attributeName string, value any)) error {
	names := make([]string, 0, len(e.attributes))
	for name := range e.attributes {
		names = append(names, name)
	}

	// attributes are visited in a stable order so that repeated builds over
	// the same entity yield identical output
	sort.Strings(names)

	for _, name := range names {
		callback(name, e.attributes[name])
	}

	return nil
}

func (e EntityImpl) MarshalJSON() ([]byte, error) {
	contents := map[string]any{
		"type": e.Type(),
	}

	if e.entityID != "" {
		contents["id"] = e.entityID
	}

	for k, v := range e.attributes {
		contents[k] = v
	}

	return json.Marshal(&contents)
}

func (e *EntityImpl) UnmarshalJSON(data []byte) error {
	var contents map[string]any
	err := json.Unmarshal(data, &contents)
	if err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}

	header := struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}{}

	err = json.Unmarshal(data, &header)
	if err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}

	// Delete the members we have already dealt with
	delete(contents, "id")
	delete(contents, "type")

	e.entityID = header.ID
	e.entityType = header.Type
	e.attributes = contents

	return nil
}

// WithID returns a copy of the entity carrying the supplied identifier. The
// original entity is left untouched.
func WithID(e types.Entity, entityID string) (types.Entity, error) {
	decorators := make([]EntityDecoratorFunc, 0, 8)

	e.ForEachAttribute(func(attributeName string, value any) {
		decorators = append(decorators, A(attributeName, value))
	})

	return New(entityID, e.Type(), decorators...)
}

// A decorates an entity with a named attribute value
func A(name string, value any) EntityDecoratorFunc {
	return func(e *EntityImpl) { e.attributes[name] = value }
}
