package http

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

//go:embed openapi.yaml
var rawSpec []byte

var (
	specOnce   sync.Once
	specDoc    *openapi3.T
	specRouter routers.Router
	specErr    error
)

// GetSwagger parses and validates the embedded API contract.
func GetSwagger() (*openapi3.T, error) {
	specOnce.Do(func() {
		loader := openapi3.NewLoader()
		specDoc, specErr = loader.LoadFromData(rawSpec)
		if specErr != nil {
			specErr = fmt.Errorf("failed to parse openapi spec: %w", specErr)
			return
		}
		specRouter, specErr = legacy.NewRouter(specDoc)
	})
	return specDoc, specErr
}

// validateRequests rejects requests that do not match the contract. Paths the contract
// does not describe (metrics, docs) pass through untouched.
func validateRequests(logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	if _, err := GetSwagger(); err != nil {
		return nil, err
	}
	opts := &openapi3filter.Options{
		MultiError:         false,
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, params, err := specRouter.FindRoute(r)
			if err != nil || route == nil {
				next.ServeHTTP(w, r)
				return
			}
			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: params,
				Route:      route,
				Options:    opts,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				logger.Warn("Request rejected by contract", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusBadRequest, "invalid_request", describeValidation(err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

func describeValidation(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) && reqErr.Parameter != nil {
		return fmt.Sprintf("parameter %q is invalid", reqErr.Parameter.Name)
	}
	return err.Error()
}
