package hypermedia

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"

	"github.com/linkrel/hypermedia/internal/pkg/application/registry"
	"github.com/linkrel/hypermedia/internal/pkg/presentation/api/hypermedia/auth"
	"github.com/linkrel/hypermedia/pkg/hypermedia"
	"github.com/linkrel/hypermedia/pkg/hypermedia/entities"
	"github.com/linkrel/hypermedia/pkg/hypermedia/errors"
)

var tracer = otel.Tracer("hypermedia-api/resources")

//NewCreateResourceHandler handles incoming POST requests for new resources
func NewCreateResourceHandler(app registry.ResourceRegistry, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "create-resource")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		traceID := traceIDFromSpan(span)
		resourceType := chi.URLParam(r, "resourceType")

		if err = authenticator.CheckAccess(ctx, r, []string{resourceType}); err != nil {
			errors.ReportUnauthorizedRequest(w, "access denied", traceID)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			errors.ReportNewBadRequestData(w, "unable to read request body", traceID)
			return
		}

		entity, err := entities.NewFromJSON(body)
		if err != nil {
			errors.ReportNewBadRequestData(w, "unable to decode request payload: "+err.Error(), traceID)
			return
		}

		result, err := app.CreateResource(ctx, resourceType, entity)
		if err != nil {
			reportRegistryError(w, err, traceID)
			return
		}

		logger := logging.GetFromContext(ctx)
		logger.Debug("resource created", "type", resourceType, "location", result.Location())

		w.Header().Add("Location", result.Location())
		w.WriteHeader(http.StatusCreated)
	})
}

//NewRetrieveResourceHandler handles GET requests for a single resource
func NewRetrieveResourceHandler(app registry.ResourceRegistry, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "retrieve-resource")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		traceID := traceIDFromSpan(span)
		resourceType := chi.URLParam(r, "resourceType")
		resourceID := chi.URLParam(r, "resourceID")

		if err = authenticator.CheckAccess(ctx, r, []string{resourceType}); err != nil {
			errors.ReportUnauthorizedRequest(w, "access denied", traceID)
			return
		}

		format, err := negotiateFormat(r)
		if err != nil {
			errors.ReportNotAcceptableError(w, err.Error(), traceID)
			return
		}

		doc, err := app.RetrieveResource(ctx, resourceType, resourceID, format)
		if err != nil {
			reportRegistryError(w, err, traceID)
			return
		}

		respondWithDocument(w, doc, format, traceID)
	})
}

//NewQueryResourcesHandler handles GET requests for collections of resources
func NewQueryResourcesHandler(app registry.ResourceRegistry, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "query-resources")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		traceID := traceIDFromSpan(span)
		resourceType := chi.URLParam(r, "resourceType")

		if err = authenticator.CheckAccess(ctx, r, []string{resourceType}); err != nil {
			errors.ReportUnauthorizedRequest(w, "access denied", traceID)
			return
		}

		format, err := negotiateFormat(r)
		if err != nil {
			errors.ReportNotAcceptableError(w, err.Error(), traceID)
			return
		}

		documents, err := app.QueryResources(ctx, resourceType, format)
		if err != nil {
			reportRegistryError(w, err, traceID)
			return
		}

		var responseBody []byte

		if format == hypermedia.FormatJSONAPI {
			// collections are a single document with the members as primary data
			members := make([]any, 0, len(documents))
			for _, doc := range documents {
				members = append(members, doc["data"])
			}
			responseBody, err = json.Marshal(map[string]any{"data": members})
		} else {
			responseBody, err = json.Marshal(documents)
		}

		if err != nil {
			errors.ReportNewInternalError(w, "failed to marshal query result", traceID)
			return
		}

		w.Header().Add("Content-Type", format.ContentType())
		w.WriteHeader(http.StatusOK)
		w.Write(responseBody)
	})
}

//NewDeleteResourceHandler handles DELETE requests for resources
func NewDeleteResourceHandler(app registry.ResourceRegistry, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "delete-resource")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		traceID := traceIDFromSpan(span)
		resourceType := chi.URLParam(r, "resourceType")
		resourceID := chi.URLParam(r, "resourceID")

		if err = authenticator.CheckAccess(ctx, r, []string{resourceType}); err != nil {
			errors.ReportUnauthorizedRequest(w, "access denied", traceID)
			return
		}

		if err = app.DeleteResource(ctx, resourceType, resourceID); err != nil {
			reportRegistryError(w, err, traceID)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func respondWithDocument(w http.ResponseWriter, doc hypermedia.Document, format hypermedia.Format, traceID string) {
	responseBody, err := json.Marshal(doc)
	if err != nil {
		errors.ReportNewInternalError(w, "failed to marshal document", traceID)
		return
	}

	w.Header().Add("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(responseBody)
}

func reportRegistryError(w http.ResponseWriter, err error, traceID string) {
	switch e := err.(type) {
	case registry.AlreadyExistsError:
		errors.ReportNewAlreadyExistsError(w, e.Error(), traceID)
	case registry.BadRequestDataError:
		errors.ReportNewBadRequestData(w, e.Error(), traceID)
	case registry.NotFoundError:
		errors.ReportNotFoundError(w, e.Error(), traceID)
	case registry.UnknownResourceTypeError:
		errors.ReportUnknownResourceTypeError(w, e.Error(), traceID)
	default:
		errors.ReportNewInternalError(w, e.Error(), traceID)
	}
}
