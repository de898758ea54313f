package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/pkordes/travel-desk/internal/domain"
)

// paginate applies the optional ?page= and ?limit= parameters to items and
// reports the unpaged length in X-Total-Count. Without either parameter the
// full list is returned.
func paginate[T any](w http.ResponseWriter, r *http.Request, items []T) ([]T, error) {
	q := r.URL.Query()
	if !q.Has("page") && !q.Has("limit") {
		return items, nil
	}
	page, err := queryInt(r, "page")
	if err != nil {
		return nil, err
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		return nil, err
	}

	params := domain.NewPaginationParams(page, limit)
	lo, hi := params.Bounds(len(items))
	w.Header().Set("X-Total-Count", strconv.Itoa(len(items)))
	return items[lo:hi], nil
}

func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return nil, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return &v, nil
}
