package builder

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/linkrel/hypermedia/pkg/hypermedia"
	"github.com/linkrel/hypermedia/pkg/hypermedia/entities"
	"github.com/linkrel/hypermedia/pkg/hypermedia/entities/decorators"
	hypermediaerrors "github.com/linkrel/hypermedia/pkg/hypermedia/errors"
	"github.com/linkrel/hypermedia/pkg/hypermedia/relations"
	"github.com/linkrel/hypermedia/pkg/hypermedia/types"
)

func TestBuildHALRepresentation(t *testing.T) {
	is := is.New(t)
	order := newOrder(is, "1")

	doc, err := Build(order, "/orders/{id}", []relations.Descriptor{
		relations.Many("items", "/orders/{id}/items"),
	}, hypermedia.FormatHAL)

	is.NoErr(err)

	b, err := json.Marshal(doc)
	is.NoErr(err)
	is.Equal(string(b), `{"_links":{"items":{"href":"/orders/1/items"},"self":{"href":"/orders/1"}},"id":"1","status":"pending","type":"Order"}`)
}

func TestBuildJSONAPIRepresentation(t *testing.T) {
	is := is.New(t)
	order := newOrder(is, "1")

	doc, err := Build(order, "/orders/{id}", []relations.Descriptor{
		relations.Many("items", "/orders/{id}/items", relations.RelatedIDs("10", "11")),
	}, hypermedia.FormatJSONAPI)

	is.NoErr(err)

	b, err := json.Marshal(doc)
	is.NoErr(err)
	is.Equal(string(b), `{"data":{"attributes":{"status":"pending"},"id":"1","links":{"self":"/orders/1"},"relationships":{"items":{"data":["10","11"],"links":{"related":"/orders/1/relationships/items"}}},"type":"Order"}}`)
}

func TestBuildIsIdempotent(t *testing.T) {
	is := is.New(t)
	order := newOrder(is, "37")

	descriptors := []relations.Descriptor{
		relations.Many("items", "/orders/{id}/items", relations.RelatedIDs("10", "11")),
		relations.One("customer", "/orders/{id}/customer"),
	}

	for _, format := range []hypermedia.Format{hypermedia.FormatHAL, hypermedia.FormatJSONAPI} {
		first, err := Build(order, "/orders/{id}", descriptors, format)
		is.NoErr(err)
		second, err := Build(order, "/orders/{id}", descriptors, format)
		is.NoErr(err)

		b1, err := json.Marshal(first)
		is.NoErr(err)
		b2, err := json.Marshal(second)
		is.NoErr(err)

		is.Equal(string(b1), string(b2)) // identical inputs must yield identical documents
	}
}

func TestManyRelationLinkageIsAlwaysASequence(t *testing.T) {
	is := is.New(t)
	order := newOrder(is, "1")

	doc, err := Build(order, "/orders/{id}", []relations.Descriptor{
		relations.Many("items", "/orders/{id}/items"),
	}, hypermedia.FormatJSONAPI)
	is.NoErr(err)

	data := doc["data"].(map[string]any)
	rels := data["relationships"].(map[string]any)
	items := rels["items"].(map[string]any)

	linkage, ok := items["data"].([]any)
	is.True(ok) // linkage of a many relation must be a sequence
	is.Equal(len(linkage), 0)
}

func TestOneRelationWithoutRelatedIDHasNullLinkage(t *testing.T) {
	is := is.New(t)
	order := newOrder(is, "1")

	doc, err := Build(order, "/orders/{id}", []relations.Descriptor{
		relations.One("customer", "/orders/{id}/customer"),
	}, hypermedia.FormatJSONAPI)
	is.NoErr(err)

	data := doc["data"].(map[string]any)
	rels := data["relationships"].(map[string]any)
	customer := rels["customer"].(map[string]any)

	linkage, exists := customer["data"]
	is.True(exists)
	is.Equal(linkage, nil)
}

func TestOneRelationWithRelatedIDHasScalarLinkage(t *testing.T) {
	is := is.New(t)
	order := newOrder(is, "1")

	doc, err := Build(order, "/orders/{id}", []relations.Descriptor{
		relations.One("customer", "/orders/{id}/customer", relations.RelatedIDs("c-17")),
	}, hypermedia.FormatJSONAPI)
	is.NoErr(err)

	data := doc["data"].(map[string]any)
	rels := data["relationships"].(map[string]any)
	customer := rels["customer"].(map[string]any)

	is.Equal(customer["data"], "c-17")
}

func TestManyRelationWithKnownMembersLinksToEachMember(t *testing.T) {
	is := is.New(t)
	order := newOrder(is, "1")

	doc, err := Build(order, "/orders/{id}", []relations.Descriptor{
		relations.Many("items", "/orders/{id}/items", relations.RelatedIDs("10", "11")),
	}, hypermedia.FormatHAL)
	is.NoErr(err)

	links := doc["_links"].(map[string]any)
	members, ok := links["items"].([]any)
	is.True(ok)
	is.Equal(len(members), 2)
	is.Equal(members[0].(map[string]any)["href"], "/orders/1/items/10")
	is.Equal(members[1].(map[string]any)["href"], "/orders/1/items/11")
}

func TestBuildFailsOnMissingIdentifier(t *testing.T) {
	is := is.New(t)
	order := newOrder(is, "")

	_, err := Build(order, "/orders/{id}", nil, hypermedia.FormatHAL)

	is.True(errors.Is(err, hypermediaerrors.ErrMissingIdentifier))
}

func TestBuildFailsOnTemplateWithoutPlaceholder(t *testing.T) {
	is := is.New(t)
	order := newOrder(is, "1")

	_, err := Build(order, "/orders", nil, hypermedia.FormatHAL)

	is.True(errors.Is(err, hypermediaerrors.ErrInvalidTemplate))
}

func TestBuildFailsOnTemplateWithTwoPlaceholders(t *testing.T) {
	is := is.New(t)
	order := newOrder(is, "1")

	_, err := Build(order, "/orders/{id}", []relations.Descriptor{
		relations.Many("items", "/orders/{id}/items/{itemId}"),
	}, hypermedia.FormatHAL)

	is.True(errors.Is(err, hypermediaerrors.ErrInvalidTemplate))
}

func TestBuildFailsOnDuplicateRelationName(t *testing.T) {
	is := is.New(t)
	order := newOrder(is, "1")

	_, err := Build(order, "/orders/{id}", []relations.Descriptor{
		relations.Many("items", "/orders/{id}/items"),
		relations.One("items", "/orders/{id}/itemlist"),
	}, hypermedia.FormatHAL)

	is.True(errors.Is(err, hypermediaerrors.ErrDuplicateRelationName))
}

func TestBuildFailsOnRelationNamedSelf(t *testing.T) {
	is := is.New(t)
	order := newOrder(is, "1")

	_, err := Build(order, "/orders/{id}", []relations.Descriptor{
		relations.One("self", "/orders/{id}/itself"),
	}, hypermedia.FormatHAL)

	is.True(errors.Is(err, hypermediaerrors.ErrDuplicateRelationName))
}

func TestExpandEscapesTheIdentifier(t *testing.T) {
	is := is.New(t)

	href, err := Expand("/orders/{id}", "a/b")

	is.NoErr(err)
	is.Equal(href, "/orders/a%2Fb")
}

func newOrder(is *is.I, id string) types.Entity {
	e, err := entities.New(id, "Order", decorators.Status("pending"))
	is.NoErr(err)
	return e
}
