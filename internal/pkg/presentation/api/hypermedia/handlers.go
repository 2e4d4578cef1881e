package hypermedia

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/linkrel/hypermedia/internal/pkg/application/registry"
	"github.com/linkrel/hypermedia/internal/pkg/presentation/api/hypermedia/auth"
	"github.com/linkrel/hypermedia/pkg/hypermedia"
	"github.com/linkrel/hypermedia/pkg/hypermedia/errors"
)

func RegisterHandlers(ctx context.Context, r chi.Router, policies io.Reader, app registry.ResourceRegistry) error {

	authenticator, err := auth.NewAuthenticator(ctx, policies)
	if err != nil {
		return fmt.Errorf("failed to create api authenticator: %w", err)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(
			Logger(logging.GetFromContext(ctx)),
			RequiredContentTypes([]string{"application/json"}),
		)

		r.Route("/{resourceType}", func(r chi.Router) {
			r.Get("/", NewQueryResourcesHandler(app, authenticator))
			r.Post("/", NewCreateResourceHandler(app, authenticator))

			r.Route("/{resourceID}", func(r chi.Router) {
				r.Get("/", NewRetrieveResourceHandler(app, authenticator))
				r.Delete("/", NewDeleteResourceHandler(app, authenticator))
			})
		})
	})

	return nil
}

func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			_, ctx, _ = o11y.AddTraceIDToLoggerAndStoreInContext(
				trace.SpanFromContext(ctx),
				logger,
				ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequiredContentTypes(validTypes []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			contentType := r.Header.Get("Content-Type")
			isValidContentType := true

			if len(contentType) > 0 {
				isValidContentType = false

				for _, t := range validTypes {
					if strings.HasPrefix(contentType, t) {
						isValidContentType = true
						break
					}
				}
			}

			if isValidContentType {
				next.ServeHTTP(w, r)
			} else {
				http.Error(w, "unsupported media type", http.StatusUnsupportedMediaType)
			}
		})
	}
}

// negotiateFormat selects the representation format from the Accept header
// of an incoming request. Requests without preferences get HAL.
func negotiateFormat(r *http.Request) (hypermedia.Format, error) {
	accept := r.Header.Get("Accept")

	if accept == "" {
		return hypermedia.FormatHAL, nil
	}

	for _, mediaType := range strings.Split(accept, ",") {
		mediaType = strings.TrimSpace(mediaType)

		if semicolon := strings.Index(mediaType, ";"); semicolon != -1 {
			mediaType = mediaType[:semicolon]
		}

		if mediaType == "*/*" || mediaType == "application/*" || mediaType == "application/json" {
			return hypermedia.FormatHAL, nil
		}

		if format, ok := hypermedia.FormatFromContentType(mediaType); ok {
			return format, nil
		}
	}

	return hypermedia.FormatHAL, errors.NewBadRequestDataError(
		fmt.Sprintf("none of the accepted media types (%s) can be produced", accept),
	)
}

func traceIDFromSpan(span trace.Span) string {
	if span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}

	return ""
}
