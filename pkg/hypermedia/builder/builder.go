// Package builder assembles serializable resource representations from
// domain entities and relation descriptors. Building is a pure function of
// its inputs and is safe to call concurrently without coordination.
package builder

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/linkrel/hypermedia/pkg/hypermedia"
	"github.com/linkrel/hypermedia/pkg/hypermedia/errors"
	"github.com/linkrel/hypermedia/pkg/hypermedia/relations"
	"github.com/linkrel/hypermedia/pkg/hypermedia/types"
)

var placeholderMatcher = regexp.MustCompile(`\{[^{}]+\}`)

// Expand substitutes the supplied identifier into the single placeholder of
// an href template. Templates with zero placeholders, or more than one, are
// rejected with an error matching errors.ErrInvalidTemplate.
func Expand(template, id string) (string, error) {
	placeholders := placeholderMatcher.FindAllStringIndex(template, -1)

	if len(placeholders) != 1 {
		return "", errors.NewInvalidTemplateError(
			fmt.Sprintf("template %s must contain exactly one placeholder, found %d", template, len(placeholders)),
		)
	}

	p := placeholders[0]
	return template[:p[0]] + url.PathEscape(id) + template[p[1]:], nil
}

// Build produces a document containing the entity's attributes plus a links
// section shaped according to the requested representation format. The
// entity is never mutated and all inputs are validated before any part of
// the output is produced.
func Build(entity types.Entity, selfHrefTemplate string, descriptors []relations.Descriptor, format hypermedia.Format) (hypermedia.Document, error) {
	if entity == nil || entity.ID() == "" {
		return nil, errors.NewMissingIdentifierError("entity lacks an identifier")
	}

	selfHref, err := Expand(selfHrefTemplate, entity.ID())
	if err != nil {
		return nil, err
	}

	relatedHrefs := map[string]string{}

	for _, d := range descriptors {
		if d.Name() == "self" {
			return nil, errors.NewDuplicateRelationNameError("relation name self collides with the self link")
		}

		if _, exists := relatedHrefs[d.Name()]; exists {
			return nil, errors.NewDuplicateRelationNameError(
				fmt.Sprintf("two relation descriptors share the name %s", d.Name()),
			)
		}

		href, err := Expand(d.HrefTemplate(), entity.ID())
		if err != nil {
			return nil, err
		}

		relatedHrefs[d.Name()] = href
	}

	if format == hypermedia.FormatJSONAPI {
		return buildJSONAPI(entity, selfHref, descriptors), nil
	}

	return buildHAL(entity, selfHref, descriptors, relatedHrefs), nil
}

func buildHAL(entity types.Entity, selfHref string, descriptors []relations.Descriptor, relatedHrefs map[string]string) hypermedia.Document {
	doc := hypermedia.Document{}

	entity.ForEachAttribute(func(attributeName string, value any) {
		doc[attributeName] = value
	})

	doc["id"] = entity.ID()
	doc["type"] = entity.Type()

	links := map[string]any{
		"self": map[string]any{"href": selfHref},
	}

	for _, d := range descriptors {
		href := relatedHrefs[d.Name()]

		// a collection relation with known members links to each member,
		// otherwise a single link to the related resource (or collection)
		if d.Cardinality() == relations.CardinalityMany && len(d.RelatedIDs()) > 0 {
			members := make([]any, 0, len(d.RelatedIDs()))
			for _, relatedID := range d.RelatedIDs() {
				members = append(members, map[string]any{"href": href + "/" + url.PathEscape(relatedID)})
			}
			links[d.Name()] = members
		} else {
			links[d.Name()] = map[string]any{"href": href}
		}
	}

	doc["_links"] = links

	return doc
}

func buildJSONAPI(entity types.Entity, selfHref string, descriptors []relations.Descriptor) hypermedia.Document {
	attributes := map[string]any{}

	entity.ForEachAttribute(func(attributeName string, value any) {
		attributes[attributeName] = value
	})

	data := map[string]any{
		"type":       entity.Type(),
		"id":         entity.ID(),
		"attributes": attributes,
		"links": map[string]any{
			"self": selfHref,
		},
	}

	if len(descriptors) > 0 {
		rels := map[string]any{}

		for _, d := range descriptors {
			relationship := map[string]any{
				"links": map[string]any{
					"related": selfHref + "/relationships/" + d.Name(),
				},
			}

			if d.Cardinality() == relations.CardinalityMany {
				linkage := make([]any, 0, len(d.RelatedIDs()))
				for _, relatedID := range d.RelatedIDs() {
					linkage = append(linkage, relatedID)
				}
				relationship["data"] = linkage
			} else if len(d.RelatedIDs()) > 0 {
				relationship["data"] = d.RelatedIDs()[0]
			} else {
				relationship["data"] = nil
			}

			rels[d.Name()] = relationship
		}

		data["relationships"] = rels
	}

	return hypermedia.Document{"data": data}
}
