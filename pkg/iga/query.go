package iga

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/gia/internal/constants"
)

// QueryParams holds the common query options of list endpoints.
type QueryParams struct {
	Filter   string
	Fields   []string
	SortKeys string
	SortDir  string
	PageSize int
	Offset   int
	Extra    map[string]string
}

// NewQueryParams creates an empty set of query parameters.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Extra: make(map[string]string),
	}
}

// WithFilter sets the _queryFilter expression.
func (p *QueryParams) WithFilter(filter string) *QueryParams {
	p.Filter = filter

	return p
}

// WithFields limits the returned fields.
func (p *QueryParams) WithFields(fields ...string) *QueryParams {
	p.Fields = append(p.Fields, fields...)

	return p
}

// WithSort sets the sort key and direction.
func (p *QueryParams) WithSort(keys, dir string) *QueryParams {
	p.SortKeys = keys
	p.SortDir = dir

	return p
}

// WithPageSize sets the page size.
func (p *QueryParams) WithPageSize(size int) *QueryParams {
	p.PageSize = size

	return p
}

// WithOffset sets the starting offset.
func (p *QueryParams) WithOffset(offset int) *QueryParams {
	p.Offset = offset

	return p
}

// WithParam sets an arbitrary query parameter.
func (p *QueryParams) WithParam(key, value string) *QueryParams {
	if p.Extra == nil {
		p.Extra = make(map[string]string)
	}

	p.Extra[key] = value

	return p
}

// Clone returns a copy that can be mutated independently.
func (p *QueryParams) Clone() *QueryParams {
	if p == nil {
		return NewQueryParams()
	}

	clone := *p
	clone.Fields = append([]string(nil), p.Fields...)
	clone.Extra = make(map[string]string, len(p.Extra))

	for key, value := range p.Extra {
		clone.Extra[key] = value
	}

	return &clone
}

// ToValues converts the parameters to url.Values.
func (p *QueryParams) ToValues() url.Values {
	values := url.Values{}
	if p == nil {
		return values
	}

	for key, value := range p.Extra {
		values.Set(key, value)
	}

	if p.Filter != "" {
		values.Set(constants.QueryFilter, p.Filter)
	}

	if len(p.Fields) > 0 {
		values.Set(constants.QueryFields, strings.Join(p.Fields, ","))
	}

	if p.SortKeys != "" {
		values.Set(constants.QuerySortKeys, p.SortKeys)
	}

	if p.SortDir != "" {
		values.Set(constants.QuerySortDir, p.SortDir)
	}

	if p.PageSize > 0 {
		values.Set(constants.QueryPageSize, strconv.Itoa(p.PageSize))
	}

	if p.Offset > 0 {
		values.Set(constants.QueryPagedResultsOffset, strconv.Itoa(p.Offset))
	}

	return values
}

// NameEquals builds the equality filter used to look an application up by name.
func NameEquals(name string) string {
	return fmt.Sprintf("name eq %q", name)
}
