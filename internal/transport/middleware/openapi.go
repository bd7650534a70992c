package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/frahmantamala/pass-management/internal"
	"github.com/frahmantamala/pass-management/internal/transport"
	"github.com/frahmantamala/pass-management/pkg/logger"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
)

// RequestValidator checks requests against an OpenAPI document before they
// reach a handler. Requests for operations the document does not describe
// pass through untouched.
type RequestValidator struct {
	router routers.Router
}

// NewRequestValidator loads and validates the OpenAPI document in spec.
func NewRequestValidator(ctx context.Context, spec []byte) (*RequestValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	router, err := legacyrouter.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &RequestValidator{router: router}, nil
}

func (v *RequestValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := v.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			transport.NewBaseHandler(logger.From(r.Context())).WriteAppError(w, validationError(err))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func validationError(err error) *internal.AppError {
	if transport.IsBodyTooLarge(err) {
		return internal.ErrBodyTooLarge
	}
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		field := "body"
		if reqErr.Parameter != nil {
			field = reqErr.Parameter.Name
		}
		msg := reqErr.Reason
		if msg == "" && reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return internal.NewValidationFieldError(field, msg, internal.ErrCodeValidationFailed).WithCause(err)
	}
	return internal.NewValidationError("request does not match the API contract", internal.ErrCodeValidationFailed).WithCause(err)
}
