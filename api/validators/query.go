package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ParsePagination reads limit and cursor from the query string.
func ParsePagination(r *http.Request) (pagination.Params, error) {
	params, err := pagination.FromQuery(r.URL.Query())
	if err != nil {
		return pagination.Params{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pagination").
			WithDetails(map[string]any{"field": "limit"})
	}
	return params, nil
}

// QueryString returns the trimmed query value, cut to maxLen bytes.
func QueryString(r *http.Request, key string, maxLen int) string {
	trimmed := strings.TrimSpace(r.URL.Query().Get(key))
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

// URLParamUUID parses a chi route parameter as a UUID.
func URLParamUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+key).WithDetails(map[string]any{"field": key})
	}
	return id, nil
}
