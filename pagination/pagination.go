package pagination

import (
	"context"
	"fmt"
)

const (
	FirstPage       = 0
	DefaultPageSize = 100
	MaxPageSize     = 200
)

// PageFunc fetches one page of results.
type PageFunc[T any] func(ctx context.Context, page, perPage int) ([]T, error)

func Normalize(page, pageSize int) (int, int) {
	if page < FirstPage {
		page = FirstPage
	}

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	} else if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return page, pageSize
}

// Collect fetches pages from FirstPage on and concatenates them. It stops at
// the first page whose length differs from pageSize: a short page is the last
// one, and a longer page means the server ignored paging and sent everything.
func Collect[T any](ctx context.Context, pageSize int, fetch PageFunc[T]) ([]T, error) {
	page, pageSize := Normalize(FirstPage, pageSize)

	var all []T

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, err := fetch(ctx, page, pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}

		all = append(all, items...)

		if len(items) != pageSize {
			return all, nil
		}

		page++
	}
}
