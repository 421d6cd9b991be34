package iga

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/gia/internal/constants"
)

// PaginationClient fetches a single page of a list endpoint.
type PaginationClient[T any] interface {
	ListWithPath(ctx context.Context, path string, params *QueryParams) (*ListResponse[T], error)
}

// PaginationOptions configures FetchAllPages.
type PaginationOptions struct {
	// PageSize is the number of items requested per page.
	PageSize int
	// MaxPages stops pagination early when non-zero. The partial result is
	// returned without an error.
	MaxPages int
	// Logger receives a note when MaxPages truncates the result.
	Logger Logger
}

// DefaultPaginationOptions returns the default pagination options.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{
		PageSize: constants.StandardPageSize,
	}
}

// FetchAllPages walks the offset cursor of a list endpoint and returns the
// concatenation of every page's result. It stops on an empty page, once the
// server-reported total is reached, or after MaxPages pages.
func FetchAllPages[T any](ctx context.Context, client PaginationClient[T], path string, params *QueryParams, options *PaginationOptions) ([]T, error) {
	if options == nil {
		options = DefaultPaginationOptions()
	}

	pageSize := options.PageSize
	if params != nil && params.PageSize > 0 {
		pageSize = params.PageSize
	}

	if pageSize <= 0 {
		pageSize = constants.StandardPageSize
	}

	pageParams := params.Clone()
	pageParams.PageSize = pageSize
	offset := pageParams.Offset

	var (
		all          []T
		pagesFetched int
	)

	for {
		pageParams.Offset = offset

		page, err := client.ListWithPath(ctx, path, pageParams)
		if err != nil {
			return nil, fmt.Errorf("fetching page at offset %d: %w", offset, err)
		}

		all = append(all, page.Result...)
		pagesFetched++

		if len(page.Result) == 0 || len(all) >= page.TotalCount {
			break
		}

		if options.MaxPages > 0 && pagesFetched >= options.MaxPages {
			if options.Logger != nil {
				options.Logger.Info("Stopped pagination at page limit", map[string]interface{}{
					"path":        path,
					"pages":       pagesFetched,
					"results":     len(all),
					"total_count": page.TotalCount,
				})
			}

			break
		}

		offset += pageSize
	}

	return all, nil
}
