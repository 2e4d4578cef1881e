package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linkrel/hypermedia/pkg/hypermedia"
	"github.com/linkrel/hypermedia/pkg/hypermedia/errors"
	"github.com/linkrel/hypermedia/pkg/hypermedia/types"
)

type ResourceClient interface {
	CreateResource(ctx context.Context, resourceType string, entity types.Entity, headers map[string][]string) (*hypermedia.CreateResourceResult, error)
	RetrieveResource(ctx context.Context, href string, headers map[string][]string) (hypermedia.Document, error)
	FollowLink(ctx context.Context, doc hypermedia.Document, rel string, headers map[string][]string) (hypermedia.Document, error)
	DeleteResource(ctx context.Context, href string) error
}

func Debug(enabled string) func(*rsClient) {
	return func(c *rsClient) {
		c.debug = (enabled == "true")
	}
}

// Format selects the representation format that the client asks servers for.
// The default is HAL.
func Format(f hypermedia.Format) func(*rsClient) {
	return func(c *rsClient) {
		c.format = f
	}
}

func NewResourceClient(server string, options ...func(*rsClient)) ResourceClient {
	c := &rsClient{
		baseURL: strings.TrimSuffix(server, "/"),
		format:  hypermedia.FormatHAL,
		debug:   false,
	}

	for _, option := range options {
		option(c)
	}

	return c
}

const (
	TraceAttributeResourceType string = "resource-type"
	TraceAttributeLinkRelation string = "link-relation"
)

var tracer = otel.Tracer("hypermedia-client")

type rsClient struct {
	baseURL string
	format  hypermedia.Format
	debug   bool
}

func (c rsClient) CreateResource(ctx context.Context, resourceType string, entity types.Entity, headers map[string][]string) (*hypermedia.CreateResourceResult, error) {
	var err error

	ctx, span := tracer.Start(ctx, "create-resource",
		trace.WithAttributes(attribute.String(TraceAttributeResourceType, resourceType)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	body, err := entity.MarshalJSON()
	if err != nil {
		err = fmt.Errorf("failed to marshal entity: %s (%w)", err.Error(), errors.ErrInternal)
		return nil, err
	}

	resp, respBody, err := c.callResourceServer(
		ctx, http.MethodPost, c.baseURL+"/api/"+url.PathEscape(resourceType), bytes.NewBuffer(body), headers,
	)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		err = errors.NewErrorFromProblemReport(resp.StatusCode, resp.Header.Get("Content-Type"), respBody)
		return nil, err
	}

	if resp.StatusCode != http.StatusCreated {
		err = fmt.Errorf("unexpected response code %d (%w)", resp.StatusCode, errors.ErrInternal)
		return nil, err
	}

	location := resp.Header.Get("Location")
	if location == "" {
		log := logging.GetFromContext(ctx)
		log.Warn("resource server failed to provide a location header with created response")
	}

	return hypermedia.NewCreateResourceResult(location), nil
}

func (c rsClient) RetrieveResource(ctx context.Context, href string, headers map[string][]string) (hypermedia.Document, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-resource")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	response, responseBody, err := c.callResourceServer(
		ctx, http.MethodGet, c.resolve(href), nil, headers,
	)

	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		contentType := response.Header.Get("Content-Type")
		if response.StatusCode >= http.StatusBadRequest && response.StatusCode <= http.StatusInternalServerError {
			err = errors.NewErrorFromProblemReport(response.StatusCode, contentType, responseBody)
			return nil, err
		}

		err = fmt.Errorf("unexpected response code %d (%w)", response.StatusCode, errors.ErrInternal)
		return nil, err
	}

	doc, err := hypermedia.NewDocumentFromJSON(responseBody)
	if err != nil {
		err = fmt.Errorf("%s (%w)", err.Error(), errors.ErrBadResponse)
		return nil, err
	}

	return doc, nil
}

// FollowLink retrieves the resource that the named link of a previously
// retrieved document points at
func (c rsClient) FollowLink(ctx context.Context, doc hypermedia.Document, rel string, headers map[string][]string) (hypermedia.Document, error) {
	var err error

	ctx, span := tracer.Start(ctx, "follow-link",
		trace.WithAttributes(attribute.String(TraceAttributeLinkRelation, rel)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	href, ok := doc.LinkHref(rel)
	if !ok {
		err = fmt.Errorf("document has no link with relation %s (%w)", rel, errors.ErrNotFound)
		return nil, err
	}

	return c.RetrieveResource(ctx, href, headers)
}

func (c rsClient) DeleteResource(ctx context.Context, href string) error {
	var err error

	ctx, span := tracer.Start(ctx, "delete-resource")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	response, responseBody, err := c.callResourceServer(ctx, http.MethodDelete, c.resolve(href), nil, nil)
	if err != nil {
		return err
	}

	if response.StatusCode >= http.StatusBadRequest {
		err = errors.NewErrorFromProblemReport(response.StatusCode, response.Header.Get("Content-Type"), responseBody)
		return err
	}

	if response.StatusCode != http.StatusNoContent {
		err = fmt.Errorf("unexpected response code %d (%w)", response.StatusCode, errors.ErrInternal)
		return err
	}

	return nil
}

// resolve turns server relative hrefs, such as those found in link sections,
// into absolute URLs
func (c rsClient) resolve(href string) string {
	if strings.HasPrefix(href, "/") {
		return c.baseURL + href
	}

	return href
}

func (c rsClient) callResourceServer(ctx context.Context, method, endpoint string, body io.Reader, headers map[string][]string) (*http.Response, []byte, error) {
	httpClient := http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %s (%w)", err.Error(), errors.ErrInternal)
	}

	req.Header.Set("Accept", c.format.ContentType())

	for header, headerValue := range headers {
		for _, val := range headerValue {
			req.Header.Add(header, val)
		}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request: %s (%w)", err.Error(), errors.ErrRequest)
	}

	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %s (%w)", err.Error(), errors.ErrBadResponse)
	}

	if c.debug && resp.StatusCode >= http.StatusBadRequest {
		if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusNotFound {
			reqbytes, _ := httputil.DumpRequest(req, false)
			respbytes, _ := httputil.DumpResponse(resp, false)

			log := logging.GetFromContext(ctx)
			log.Error("request failed", "request", string(reqbytes), "response", string(respbytes))
		}
	}

	return resp, respBody, nil
}
