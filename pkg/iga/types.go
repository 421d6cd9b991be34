package iga

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Object is the raw JSON representation of a remote resource.
type Object map[string]interface{}

// String returns the value at key formatted as a string, or "" when absent.
func (o Object) String(key string) string {
	value, ok := o[key]
	if !ok || value == nil {
		return ""
	}

	switch typed := value.(type) {
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case json.Number:
		return typed.String()
	default:
		return fmt.Sprintf("%v", typed)
	}
}

// Int returns the value at key as an int, or 0 when absent or not numeric.
func (o Object) Int(key string) int {
	switch typed := o[key].(type) {
	case float64:
		return int(typed)
	case int:
		return typed
	case json.Number:
		n, err := typed.Int64()
		if err != nil {
			return 0
		}

		return int(n)
	case string:
		n, err := strconv.Atoi(typed)
		if err != nil {
			return 0
		}

		return n
	default:
		return 0
	}
}

// Objects returns the array at key as a slice of Object, skipping entries
// that are not JSON objects.
func (o Object) Objects(key string) []Object {
	items, ok := o[key].([]interface{})
	if !ok {
		return nil
	}

	result := make([]Object, 0, len(items))

	for _, item := range items {
		switch typed := item.(type) {
		case map[string]interface{}:
			result = append(result, Object(typed))
		case Object:
			result = append(result, typed)
		}
	}

	return result
}

// ListResponse represents a paginated list response.
type ListResponse[T any] struct {
	Result                  []T    `json:"result"                            yaml:"result"`
	ResultCount             int    `json:"resultCount"                       yaml:"resultCount"`
	TotalCount              int    `json:"totalCount"                        yaml:"totalCount"`
	PagedResultsCookie      string `json:"pagedResultsCookie,omitempty"      yaml:"pagedResultsCookie,omitempty"`
	RemainingPagedResults   int    `json:"remainingPagedResults,omitempty"   yaml:"remainingPagedResults,omitempty"`
	TotalPagedResultsPolicy string `json:"totalPagedResultsPolicy,omitempty" yaml:"totalPagedResultsPolicy,omitempty"`
}

// GetApplicationOptions are the optional query parameters of a single
// application read.
type GetApplicationOptions struct {
	Fields          string
	ScopePermission string
	EndUserID       string
}

// ObjectKind is the kind of records an object type describes.
type ObjectKind string

const (
	// ObjectKindAccount describes account records.
	ObjectKindAccount ObjectKind = "account"

	// ObjectKindResource describes resource (entitlement) records.
	ObjectKindResource ObjectKind = "resource"
)

// ParseObjectKind validates a kind read from user input.
func ParseObjectKind(value string) (ObjectKind, error) {
	switch ObjectKind(value) {
	case ObjectKindAccount, ObjectKindResource:
		return ObjectKind(value), nil
	default:
		return "", fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidObjectKind, value, ObjectKindAccount, ObjectKindResource)
	}
}
