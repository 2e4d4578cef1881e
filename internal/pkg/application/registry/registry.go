package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/linkrel/hypermedia/pkg/hypermedia"
	"github.com/linkrel/hypermedia/pkg/hypermedia/builder"
	"github.com/linkrel/hypermedia/pkg/hypermedia/entities"
	"github.com/linkrel/hypermedia/pkg/hypermedia/relations"
	"github.com/linkrel/hypermedia/pkg/hypermedia/types"
)

// ResourceRegistry holds the configured resource type definitions together
// with the resources themselves, and produces representation documents for
// them on request
type ResourceRegistry interface {
	CreateResource(ctx context.Context, resourceType string, entity types.Entity) (*hypermedia.CreateResourceResult, error)
	RetrieveResource(ctx context.Context, resourceType, resourceID string, format hypermedia.Format) (hypermedia.Document, error)
	QueryResources(ctx context.Context, resourceType string, format hypermedia.Format) ([]hypermedia.Document, error)
	DeleteResource(ctx context.Context, resourceType, resourceID string) error

	ResourceTypes() []string
}

type relationDef struct {
	name        string
	href        string
	cardinality relations.Cardinality
}

type resourceTypeDef struct {
	selfHref  string
	relations []relationDef
}

type resourceRegistry struct {
	definitions map[string]resourceTypeDef

	mu      sync.RWMutex
	storage map[string]map[string]types.Entity
}

func New(ctx context.Context, cfg Config) (ResourceRegistry, error) {
	reg := &resourceRegistry{
		definitions: map[string]resourceTypeDef{},
		storage:     map[string]map[string]types.Entity{},
	}

	for _, rtc := range cfg.Resources {
		if rtc.Type == "" {
			return nil, fmt.Errorf("resource type definitions must have a type name")
		}

		if _, exists := reg.definitions[rtc.Type]; exists {
			return nil, fmt.Errorf("resource type %s is defined more than once", rtc.Type)
		}

		// probe all templates once so that misconfigurations are caught at
		// startup instead of on first request
		if _, err := builder.Expand(rtc.SelfHref, "probe"); err != nil {
			return nil, fmt.Errorf("self href of resource type %s: %w", rtc.Type, err)
		}

		def := resourceTypeDef{selfHref: rtc.SelfHref}
		names := map[string]struct{}{}

		for _, rc := range rtc.Relations {
			if _, err := builder.Expand(rc.Href, "probe"); err != nil {
				return nil, fmt.Errorf("relation %s of resource type %s: %w", rc.Name, rtc.Type, err)
			}

			if _, exists := names[rc.Name]; exists {
				return nil, fmt.Errorf("relation %s of resource type %s is defined more than once", rc.Name, rtc.Type)
			}
			names[rc.Name] = struct{}{}

			cardinality := relations.Cardinality(rc.Cardinality)
			if cardinality != relations.CardinalityOne && cardinality != relations.CardinalityMany {
				return nil, fmt.Errorf("relation %s of resource type %s has unknown cardinality %s", rc.Name, rtc.Type, rc.Cardinality)
			}

			def.relations = append(def.relations, relationDef{
				name:        rc.Name,
				href:        rc.Href,
				cardinality: cardinality,
			})
		}

		reg.definitions[rtc.Type] = def
		reg.storage[rtc.Type] = map[string]types.Entity{}
	}

	return reg, nil
}

func (reg *resourceRegistry) CreateResource(ctx context.Context, resourceType string, entity types.Entity) (*hypermedia.CreateResourceResult, error) {
	def, ok := reg.definitions[resourceType]
	if !ok {
		return nil, NewUnknownResourceTypeError(resourceType)
	}

	if entity.Type() != resourceType {
		return nil, NewBadRequestDataError(
			fmt.Sprintf("entity type %s does not match resource type %s", entity.Type(), resourceType),
		)
	}

	if entity.ID() == "" {
		withID, err := entities.WithID(entity, uuid.NewString())
		if err != nil {
			return nil, NewBadRequestDataError(err.Error())
		}
		entity = withID
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.storage[resourceType][entity.ID()]; exists {
		return nil, NewAlreadyExistsError(
			fmt.Sprintf("%s %s already exists", resourceType, entity.ID()),
		)
	}

	reg.storage[resourceType][entity.ID()] = entity

	location, err := builder.Expand(def.selfHref, entity.ID())
	if err != nil {
		return nil, err
	}

	return hypermedia.NewCreateResourceResult(location), nil
}

func (reg *resourceRegistry) RetrieveResource(ctx context.Context, resourceType, resourceID string, format hypermedia.Format) (hypermedia.Document, error) {
	def, ok := reg.definitions[resourceType]
	if !ok {
		return nil, NewUnknownResourceTypeError(resourceType)
	}

	reg.mu.RLock()
	entity, found := reg.storage[resourceType][resourceID]
	reg.mu.RUnlock()

	if !found {
		return nil, NewNotFoundError(
			fmt.Sprintf("no %s with id %s has been registered", resourceType, resourceID),
		)
	}

	return builder.Build(entity, def.selfHref, descriptorsFor(def, entity), format)
}

func (reg *resourceRegistry) QueryResources(ctx context.Context, resourceType string, format hypermedia.Format) ([]hypermedia.Document, error) {
	def, ok := reg.definitions[resourceType]
	if !ok {
		return nil, NewUnknownResourceTypeError(resourceType)
	}

	reg.mu.RLock()
	found := make([]types.Entity, 0, len(reg.storage[resourceType]))
	for _, entity := range reg.storage[resourceType] {
		found = append(found, entity)
	}
	reg.mu.RUnlock()

	sort.Slice(found, func(i, j int) bool {
		return found[i].ID() < found[j].ID()
	})

	documents := make([]hypermedia.Document, 0, len(found))

	for _, entity := range found {
		doc, err := builder.Build(entity, def.selfHref, descriptorsFor(def, entity), format)
		if err != nil {
			return nil, err
		}

		documents = append(documents, doc)
	}

	return documents, nil
}

func (reg *resourceRegistry) DeleteResource(ctx context.Context, resourceType, resourceID string) error {
	if _, ok := reg.definitions[resourceType]; !ok {
		return NewUnknownResourceTypeError(resourceType)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, found := reg.storage[resourceType][resourceID]; !found {
		return NewNotFoundError(
			fmt.Sprintf("no %s with id %s has been registered", resourceType, resourceID),
		)
	}

	delete(reg.storage[resourceType], resourceID)

	return nil
}

func (reg *resourceRegistry) ResourceTypes() []string {
	typeNames := make([]string, 0, len(reg.definitions))
	for name := range reg.definitions {
		typeNames = append(typeNames, name)
	}

	sort.Strings(typeNames)

	return typeNames
}

// descriptorsFor turns the configured relations of a resource type into
// descriptors for one specific entity. Related resource identifiers are
// picked up from an entity attribute sharing the relation's name, when one
// exists.
func descriptorsFor(def resourceTypeDef, entity types.Entity) []relations.Descriptor {
	attributes := map[string]any{}
	entity.ForEachAttribute(func(attributeName string, value any) {
		attributes[attributeName] = value
	})

	descriptors := make([]relations.Descriptor, 0, len(def.relations))

	for _, rd := range def.relations {
		relatedIDs := relatedIDsFromAttribute(attributes[rd.name])

		if rd.cardinality == relations.CardinalityMany {
			descriptors = append(descriptors, relations.Many(rd.name, rd.href, relations.RelatedIDs(relatedIDs...)))
		} else {
			descriptors = append(descriptors, relations.One(rd.name, rd.href, relations.RelatedIDs(relatedIDs...)))
		}
	}

	return descriptors
}

func relatedIDsFromAttribute(value any) []string {
	switch typedValue := value.(type) {
	case string:
		return []string{typedValue}
	case []string:
		return typedValue
	case []any:
		ids := make([]string, 0, len(typedValue))
		for _, v := range typedValue {
			if str, ok := v.(string); ok {
				ids = append(ids, str)
			}
		}
		return ids
	}

	return nil
}
