package relations

import (
	"testing"

	"github.com/matryer/is"
)

func TestOne(t *testing.T) {
	is := is.New(t)

	d := One("customer", "/orders/{id}/customer")

	is.Equal(d.Name(), "customer")
	is.Equal(d.HrefTemplate(), "/orders/{id}/customer")
	is.Equal(d.Cardinality(), CardinalityOne)
	is.Equal(len(d.RelatedIDs()), 0)
}

func TestManyWithRelatedIDs(t *testing.T) {
	is := is.New(t)

	d := Many("items", "/orders/{id}/items", RelatedIDs("10", "11"))

	is.Equal(d.Cardinality(), CardinalityMany)
	is.Equal(d.RelatedIDs(), []string{"10", "11"})
}

func TestRelatedIDsAreCopied(t *testing.T) {
	is := is.New(t)

	ids := []string{"10", "11"}
	d := Many("items", "/orders/{id}/items", RelatedIDs(ids...))

	ids[0] = "mutated"

	is.Equal(d.RelatedIDs()[0], "10") // descriptors must not alias caller data
}
