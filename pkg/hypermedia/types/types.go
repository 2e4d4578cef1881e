package types

type EntityFragment interface {
	ForEachAttribute(func(attributeName string, value any)) error
	MarshalJSON() ([]byte, error)
}

type Entity interface {
	EntityFragment

	ID() string
	Type() string
}
