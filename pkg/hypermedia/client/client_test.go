package client

import (
	"context"
	"errors"
	"net/http"
	"testing"

	testutils "github.com/diwise/service-chassis/pkg/test/http"
	"github.com/diwise/service-chassis/pkg/test/http/expects"
	"github.com/diwise/service-chassis/pkg/test/http/response"

	"github.com/matryer/is"

	"github.com/linkrel/hypermedia/pkg/hypermedia"
	"github.com/linkrel/hypermedia/pkg/hypermedia/entities"
	"github.com/linkrel/hypermedia/pkg/hypermedia/entities/decorators"
	hypermediaerrors "github.com/linkrel/hypermedia/pkg/hypermedia/errors"
	"github.com/linkrel/hypermedia/pkg/hypermedia/types"
)

var Expects = testutils.Expects
var Returns = testutils.Returns
var anyInput = expects.AnyInput
var method = expects.RequestMethod
var path = expects.RequestPath
var body = expects.RequestBody

func TestCreateResource(t *testing.T) {
	is := is.New(t)

	locationHeader := "/api/Order/order-1"
	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodPost),
			path("/api/Order"),
			body(`{"id":"order-1","status":"pending","type":"Order"}`),
		),
		Returns(
			response.ContentType(hypermedia.ContentTypeHAL),
			response.Location(locationHeader),
			response.Code(http.StatusCreated),
		),
	)
	defer s.Close()

	c := NewResourceClient(s.URL())

	result, err := c.CreateResource(context.Background(), "Order", testOrder("order-1"), nil)

	is.NoErr(err)
	is.Equal(result.Location(), locationHeader)
}

func TestCreateResourceHandlesProblemReport(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(is, anyInput()),
		Returns(
			response.ContentType("application/problem+json"),
			response.Code(http.StatusConflict),
			response.Body([]byte(`{"type":"https://linkrel.io/hypermedia/problems/already-exists","title":"Already Exists","detail":"order-1 already exists"}`)),
		),
	)
	defer s.Close()

	c := NewResourceClient(s.URL())

	_, err := c.CreateResource(context.Background(), "Order", testOrder("order-1"), nil)

	is.True(errors.Is(err, hypermediaerrors.ErrAlreadyExists))
}

func TestRetrieveResource(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodGet),
			path("/api/Order/order-1"),
		),
		Returns(
			response.ContentType(hypermedia.ContentTypeHAL),
			response.Code(http.StatusOK),
			response.Body([]byte(orderHAL)),
		),
	)
	defer s.Close()

	c := NewResourceClient(s.URL())

	doc, err := c.RetrieveResource(context.Background(), "/api/Order/order-1", nil)

	is.NoErr(err)
	is.Equal(doc["status"], "pending")

	href, ok := doc.LinkHref("items")
	is.True(ok)
	is.Equal(href, "/api/Order/order-1/items")
}

func TestRetrieveResourceHandlesNotFound(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(is, anyInput()),
		Returns(
			response.ContentType("application/problem+json"),
			response.Code(http.StatusNotFound),
			response.Body([]byte(`{"type":"https://linkrel.io/hypermedia/problems/resource-not-found","title":"Not Found","detail":"no such order"}`)),
		),
	)
	defer s.Close()

	c := NewResourceClient(s.URL())

	_, err := c.RetrieveResource(context.Background(), "/api/Order/order-x", nil)

	is.True(errors.Is(err, hypermediaerrors.ErrNotFound))
}

func TestFollowLink(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodGet),
			path("/api/Order/order-1/items"),
		),
		Returns(
			response.ContentType(hypermedia.ContentTypeHAL),
			response.Code(http.StatusOK),
			response.Body([]byte(`{"count":2,"_links":{"self":{"href":"/api/Order/order-1/items"}}}`)),
		),
	)
	defer s.Close()

	doc, err := hypermedia.NewDocumentFromJSON([]byte(orderHAL))
	is.NoErr(err)

	c := NewResourceClient(s.URL())

	items, err := c.FollowLink(context.Background(), doc, "items", nil)

	is.NoErr(err)
	is.Equal(items["count"], float64(2))
}

func TestFollowLinkFailsOnUnknownRelation(t *testing.T) {
	is := is.New(t)

	doc, err := hypermedia.NewDocumentFromJSON([]byte(orderHAL))
	is.NoErr(err)

	c := NewResourceClient("http://localhost")

	_, err = c.FollowLink(context.Background(), doc, "nosuchrel", nil)

	is.True(errors.Is(err, hypermediaerrors.ErrNotFound))
}

func testOrder(id string) types.Entity {
	e, _ := entities.New(id, "Order", decorators.Status("pending"))
	return e
}

const orderHAL string = `{"id":"order-1","status":"pending","type":"Order","_links":{"self":{"href":"/api/Order/order-1"},"items":{"href":"/api/Order/order-1/items"}}}`
