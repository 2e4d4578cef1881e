package relations

// Cardinality states whether a relation navigates to a single resource or to
// a collection of resources
type Cardinality string

const (
	CardinalityOne  Cardinality = "one"
	CardinalityMany Cardinality = "many"
)

// Descriptor describes one navigable relationship from an entity to one or
// more related resources
type Descriptor struct {
	name        string
	href        string
	cardinality Cardinality
	relatedIDs  []string
}

func (d Descriptor) Name() string {
	return d.name
}

func (d Descriptor) HrefTemplate() string {
	return d.href
}

func (d Descriptor) Cardinality() Cardinality {
	return d.cardinality
}

func (d Descriptor) RelatedIDs() []string {
	return d.relatedIDs
}

type DescriptorDecoratorFunc func(d *Descriptor)

// RelatedIDs records the identifiers of the related resources so that they
// can be included as resource linkage in JSON:API representations
func RelatedIDs(ids ...string) DescriptorDecoratorFunc {
	return func(d *Descriptor) {
		d.relatedIDs = append([]string{}, ids...)
	}
}

// One creates a descriptor for a relation to a single resource
func One(name, hrefTemplate string, decorators ...DescriptorDecoratorFunc) Descriptor {
	return newDescriptor(name, hrefTemplate, CardinalityOne, decorators...)
}

// Many creates a descriptor for a relation to a collection of resources
func Many(name, hrefTemplate string, decorators ...DescriptorDecoratorFunc) Descriptor {
	return newDescriptor(name, hrefTemplate, CardinalityMany, decorators...)
}

func newDescriptor(name, hrefTemplate string, cardinality Cardinality, decorators ...DescriptorDecoratorFunc) Descriptor {
	d := &Descriptor{
		name:        name,
		href:        hrefTemplate,
		cardinality: cardinality,
	}

	for _, decorator := range decorators {
		decorator(d)
	}

	return *d
}
