package entities

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
)

func TestJSONMarshalling(t *testing.T) {
	is := is.New(t)
	e, err := NewFromJSON([]byte(orderJSON))

	is.NoErr(err)
	is.Equal(e.ID(), "order-1")
	is.Equal(e.Type(), "Order")

	b, err := json.Marshal(e)

	is.NoErr(err)
	is.Equal(string(b), `{"id":"order-1","items":["10","11"],"status":"pending","total":118.5,"type":"Order"}`)
}

func TestNewFromJSONFailsWithoutType(t *testing.T) {
	is := is.New(t)
	_, err := NewFromJSON([]byte(`{"id":"order-1","status":"pending"}`))

	is.True(err != nil) // entities without a type are not valid
}

func TestNewFromJSONFailsOnMalformedBody(t *testing.T) {
	is := is.New(t)
	_, err := NewFromJSON([]byte("this is not my json"))

	is.True(err != nil)
}

func TestAttributesAreVisitedInStableOrder(t *testing.T) {
	is := is.New(t)
	e, err := NewFromJSON([]byte(orderJSON))
	is.NoErr(err)

	names := []string{}
	e.ForEachAttribute(func(attributeName string, value any) {
		names = append(names, attributeName)
	})

	is.Equal(names, []string{"items", "status", "total"})
}

func TestWithIDLeavesTheOriginalUntouched(t *testing.T) {
	is := is.New(t)
	original, err := New("", "Order", A("status", "pending"))
	is.NoErr(err)

	copied, err := WithID(original, "order-2")
	is.NoErr(err)

	is.Equal(original.ID(), "")
	is.Equal(copied.ID(), "order-2")
	is.Equal(copied.Type(), "Order")

	b, err := json.Marshal(copied)
	is.NoErr(err)
	is.Equal(string(b), `{"id":"order-2","status":"pending","type":"Order"}`)
}

var orderJSON string = `{
    "id": "order-1",
    "type": "Order",
    "status": "pending",
    "total": 118.5,
    "items": ["10", "11"]
}`
