package hypermedia

import (
	"encoding/json"
	"fmt"
)

const (
	//ContentTypeHAL is the media type for HAL shaped representations
	ContentTypeHAL string = "application/hal+json"
	//ContentTypeJSONAPI is the media type for JSON:API shaped representations
	ContentTypeJSONAPI string = "application/vnd.api+json"
)

// Format selects the shape of the links section in a built representation
type Format int

const (
	FormatHAL Format = iota
	FormatJSONAPI
)

func (f Format) ContentType() string {
	if f == FormatJSONAPI {
		return ContentTypeJSONAPI
	}

	return ContentTypeHAL
}

func (f Format) String() string {
	if f == FormatJSONAPI {
		return "json:api"
	}

	return "hal"
}

// FormatFromContentType maps a media type to the matching representation
// format. The second return value is false for unsupported media types.
func FormatFromContentType(contentType string) (Format, bool) {
	switch contentType {
	case ContentTypeHAL:
		return FormatHAL, true
	case ContentTypeJSONAPI:
		return FormatJSONAPI, true
	}

	return FormatHAL, false
}

// Document is the serializable output of the representation builder. It is a
// value with no identity of its own and is never mutated after being built.
type Document map[string]any

func NewDocumentFromJSON(body []byte) (Document, error) {
	d := Document{}

	err := json.Unmarshal(body, &d)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	return d, nil
}

// LinkHref looks up the href of a named link in the document. It understands
// both the HAL _links section and the links of a JSON:API resource object.
func (d Document) LinkHref(rel string) (string, bool) {
	if links, ok := d["_links"].(map[string]any); ok {
		if href, ok := hrefFromLinkValue(links[rel]); ok {
			return href, true
		}
	}

	data, ok := d["data"].(map[string]any)
	if !ok {
		return "", false
	}

	if rel == "self" {
		if links, ok := data["links"].(map[string]any); ok {
			if href, ok := links["self"].(string); ok {
				return href, true
			}
		}
		return "", false
	}

	relationships, ok := data["relationships"].(map[string]any)
	if !ok {
		return "", false
	}

	relationship, ok := relationships[rel].(map[string]any)
	if !ok {
		return "", false
	}

	links, ok := relationship["links"].(map[string]any)
	if !ok {
		return "", false
	}

	href, ok := links["related"].(string)
	return href, ok
}

func hrefFromLinkValue(value any) (string, bool) {
	switch link := value.(type) {
	case map[string]any:
		href, ok := link["href"].(string)
		return href, ok
	case []any:
		// multi valued links resolve to their first member
		if len(link) > 0 {
			return hrefFromLinkValue(link[0])
		}
	}

	return "", false
}

type CreateResourceResult struct {
	location string
}

func NewCreateResourceResult(location string) *CreateResourceResult {
	return &CreateResourceResult{
		location: location,
	}
}

func (r CreateResourceResult) Location() string {
	return r.location
}
