package client

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fivetwenty-io/gia/internal/constants"
	"github.com/fivetwenty-io/gia/internal/http"
	"github.com/fivetwenty-io/gia/pkg/iga"
)

// ApplicationsClient implements iga.ApplicationsClient.
type ApplicationsClient struct {
	httpClient *http.Client
	pageSize   int
	logger     iga.Logger
}

// NewApplicationsClient creates a new applications client.
func NewApplicationsClient(httpClient *http.Client, pageSize int, logger iga.Logger) *ApplicationsClient {
	if pageSize <= 0 {
		pageSize = constants.StandardPageSize
	}

	return &ApplicationsClient{
		httpClient: httpClient,
		pageSize:   pageSize,
		logger:     logger,
	}
}

func applicationPath(id string, segments ...string) string {
	path := constants.APIPathApplications + "/" + url.PathEscape(id)
	for _, segment := range segments {
		path += "/" + segment
	}

	return path
}

// ListWithPath fetches a single page. The offset is always sent so the
// server-side cursor is explicit.
func (c *ApplicationsClient) ListWithPath(ctx context.Context, path string, params *iga.QueryParams) (*iga.ListResponse[iga.Object], error) {
	query := params.ToValues()
	if params != nil {
		query.Set(constants.QueryPagedResultsOffset, strconv.Itoa(params.Offset))
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}

	var page iga.ListResponse[iga.Object]

	err = resp.DecodeJSON(&page)
	if err != nil {
		return nil, fmt.Errorf("parsing list response: %w", err)
	}

	return &page, nil
}

// List implements iga.ApplicationsClient.List.
func (c *ApplicationsClient) List(ctx context.Context, params *iga.QueryParams) ([]iga.Object, error) {
	apps, err := iga.FetchAllPages[iga.Object](ctx, c, constants.APIPathApplications, params, &iga.PaginationOptions{
		PageSize: c.pageSize,
		Logger:   c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}

	return apps, nil
}

// Get implements iga.ApplicationsClient.Get.
func (c *ApplicationsClient) Get(ctx context.Context, id string, options *iga.GetApplicationOptions) (iga.Object, error) {
	query := url.Values{}

	if options != nil {
		if options.Fields != "" {
			query.Set(constants.QueryFields, options.Fields)
		}

		if options.ScopePermission != "" {
			query.Set("scopePermission", options.ScopePermission)
		}

		if options.EndUserID != "" {
			query.Set("endUserId", options.EndUserID)
		}
	}

	resp, err := c.httpClient.Get(ctx, applicationPath(id), query)
	if err != nil {
		return nil, fmt.Errorf("getting application: %w", err)
	}

	return decodeObject(resp, "application")
}

// Create implements iga.ApplicationsClient.Create.
func (c *ApplicationsClient) Create(ctx context.Context, payload interface{}) (iga.Object, error) {
	query := url.Values{"action": []string{"create"}}

	resp, err := c.httpClient.PostWithQuery(ctx, constants.APIPathApplications, query, payload)
	if err != nil {
		return nil, fmt.Errorf("creating application: %w", err)
	}

	return decodeObject(resp, "application")
}

// Update implements iga.ApplicationsClient.Update. The payload replaces the
// whole application.
func (c *ApplicationsClient) Update(ctx context.Context, id string, payload interface{}) (iga.Object, error) {
	resp, err := c.httpClient.Put(ctx, applicationPath(id), payload)
	if err != nil {
		return nil, fmt.Errorf("updating application: %w", err)
	}

	return decodeObject(resp, "application")
}

// Delete implements iga.ApplicationsClient.Delete.
func (c *ApplicationsClient) Delete(ctx context.Context, id string) error {
	_, err := c.httpClient.Delete(ctx, applicationPath(id))
	if err != nil {
		return fmt.Errorf("deleting application: %w", err)
	}

	return nil
}

// FindByName returns the first application whose name equals name, or nil.
func (c *ApplicationsClient) FindByName(ctx context.Context, name string) (iga.Object, error) {
	apps, err := c.List(ctx, iga.NewQueryParams().WithFilter(iga.NameEquals(name)))
	if err != nil {
		return nil, err
	}

	if len(apps) == 0 {
		return nil, nil
	}

	return apps[0], nil
}

// AddObjectType implements iga.ApplicationsClient.AddObjectType.
func (c *ApplicationsClient) AddObjectType(ctx context.Context, applicationID string, payload interface{}) (iga.Object, error) {
	resp, err := c.httpClient.Post(ctx, applicationPath(applicationID, "objectType"), payload)
	if err != nil {
		return nil, fmt.Errorf("adding object type: %w", err)
	}

	return decodeObject(resp, "object type")
}

// GetObjectType implements iga.ApplicationsClient.GetObjectType.
func (c *ApplicationsClient) GetObjectType(ctx context.Context, applicationID, objectTypeID string) (iga.Object, error) {
	resp, err := c.httpClient.Get(ctx, applicationPath(applicationID, "objectType", url.PathEscape(objectTypeID)), nil)
	if err != nil {
		return nil, fmt.Errorf("getting object type: %w", err)
	}

	return decodeObject(resp, "object type")
}

// UpdateObjectType implements iga.ApplicationsClient.UpdateObjectType.
func (c *ApplicationsClient) UpdateObjectType(ctx context.Context, applicationID, objectTypeID string, payload interface{}) (iga.Object, error) {
	resp, err := c.httpClient.Put(ctx, applicationPath(applicationID, "objectType", url.PathEscape(objectTypeID)), payload)
	if err != nil {
		return nil, fmt.Errorf("updating object type: %w", err)
	}

	return decodeObject(resp, "object type")
}

// DeleteObjectType implements iga.ApplicationsClient.DeleteObjectType.
func (c *ApplicationsClient) DeleteObjectType(ctx context.Context, applicationID, objectTypeID string) error {
	_, err := c.httpClient.Delete(ctx, applicationPath(applicationID, "objectType", url.PathEscape(objectTypeID)))
	if err != nil {
		return fmt.Errorf("deleting object type: %w", err)
	}

	return nil
}

// GetObjectTypeSchema implements iga.ApplicationsClient.GetObjectTypeSchema.
func (c *ApplicationsClient) GetObjectTypeSchema(ctx context.Context, applicationID, objectType string) (iga.Object, error) {
	resp, err := c.httpClient.Get(ctx, applicationPath(applicationID, url.PathEscape(objectType), "schema"), nil)
	if err != nil {
		return nil, fmt.Errorf("getting object type schema: %w", err)
	}

	return decodeObject(resp, "schema")
}

// UploadFile sends a CSV file for objectType as multipart/form-data.
func (c *ApplicationsClient) UploadFile(ctx context.Context, applicationID, filePath, objectType string) (iga.Object, error) {
	file, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return nil, fmt.Errorf("opening upload file: %w", err)
	}

	defer func() { _ = file.Close() }()

	query := url.Values{constants.QueryAction: []string{"upload"}}

	resp, err := c.httpClient.Upload(ctx, applicationPath(applicationID), query, &http.MultipartFile{
		FieldName: constants.UploadFileField,
		FileName:  filepath.Base(filePath),
		Content:   file,
		Fields:    map[string]string{constants.UploadObjectTypeField: objectType},
	})
	if err != nil {
		return nil, fmt.Errorf("uploading file: %w", err)
	}

	return decodeObject(resp, "upload")
}

// GetFiles implements iga.ApplicationsClient.GetFiles.
func (c *ApplicationsClient) GetFiles(ctx context.Context, applicationID string) ([]iga.Object, error) {
	return c.getResult(ctx, applicationPath(applicationID, "files"), "files")
}

// GetUploadStatus implements iga.ApplicationsClient.GetUploadStatus.
func (c *ApplicationsClient) GetUploadStatus(ctx context.Context, applicationID, uploadID string) (iga.Object, error) {
	resp, err := c.httpClient.Get(ctx, applicationPath(applicationID, "upload", ":"+url.PathEscape(uploadID)), nil)
	if err != nil {
		return nil, fmt.Errorf("getting upload status: %w", err)
	}

	return decodeObject(resp, "upload status")
}

// GetUploadFailures implements iga.ApplicationsClient.GetUploadFailures.
func (c *ApplicationsClient) GetUploadFailures(ctx context.Context, applicationID, uploadID string) (iga.Object, error) {
	resp, err := c.httpClient.Get(ctx, applicationPath(applicationID, "upload", ":"+url.PathEscape(uploadID), "failures"), nil)
	if err != nil {
		return nil, fmt.Errorf("getting upload failures: %w", err)
	}

	return decodeObject(resp, "upload failures")
}

// ListAccounts implements iga.ApplicationsClient.ListAccounts.
func (c *ApplicationsClient) ListAccounts(ctx context.Context, applicationID string) ([]iga.Object, error) {
	return c.getResult(ctx, applicationPath(applicationID, "account"), "accounts")
}

// GetAccount implements iga.ApplicationsClient.GetAccount.
func (c *ApplicationsClient) GetAccount(ctx context.Context, applicationID, accountID string) (iga.Object, error) {
	resp, err := c.httpClient.Get(ctx, applicationPath(applicationID, "account", url.PathEscape(accountID)), nil)
	if err != nil {
		return nil, fmt.Errorf("getting account: %w", err)
	}

	return decodeObject(resp, "account")
}

// ListResources implements iga.ApplicationsClient.ListResources.
func (c *ApplicationsClient) ListResources(ctx context.Context, applicationID string) ([]iga.Object, error) {
	return c.getResult(ctx, applicationPath(applicationID, "resource"), "resources")
}

// GetResource implements iga.ApplicationsClient.GetResource.
func (c *ApplicationsClient) GetResource(ctx context.Context, applicationID, resourceID string) (iga.Object, error) {
	resp, err := c.httpClient.Get(ctx, applicationPath(applicationID, "resource", url.PathEscape(resourceID)), nil)
	if err != nil {
		return nil, fmt.Errorf("getting resource: %w", err)
	}

	return decodeObject(resp, "resource")
}

// getResult GETs path and returns the "result" array of the body.
func (c *ApplicationsClient) getResult(ctx context.Context, path, what string) ([]iga.Object, error) {
	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", what, err)
	}

	body, err := decodeObject(resp, what)
	if err != nil {
		return nil, err
	}

	result := body.Objects("result")
	if result == nil {
		result = []iga.Object{}
	}

	return result, nil
}

func decodeObject(resp *http.Response, what string) (iga.Object, error) {
	obj, err := resp.Object()
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", what, err)
	}

	return obj, nil
}
