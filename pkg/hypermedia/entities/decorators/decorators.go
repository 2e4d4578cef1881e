package decorators

import (
	"github.com/linkrel/hypermedia/pkg/hypermedia/entities"
)

func Bool(name string, value bool) entities.EntityDecoratorFunc {
	return entities.A(name, value)
}

func Number(name string, value float64) entities.EntityDecoratorFunc {
	return entities.A(name, value)
}

func Text(name string, value string) entities.EntityDecoratorFunc {
	return entities.A(name, value)
}

func TextList(name string, values []string) entities.EntityDecoratorFunc {
	return entities.A(name, values)
}

// Timestamp stores an RFC3339 formatted point in time
func Timestamp(name string, value string) entities.EntityDecoratorFunc {
	return entities.A(name, value)
}

func Status(value string) entities.EntityDecoratorFunc {
	return Text("status", value)
}
