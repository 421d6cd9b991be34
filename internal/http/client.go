package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/gia/internal/auth"
	"github.com/fivetwenty-io/gia/internal/constants"
	"github.com/fivetwenty-io/gia/pkg/iga"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "gia-go/1.0"

// Client is the HTTP transport for the IGA API.
type Client struct {
	baseURL      string
	apiPrefix    string
	tokenManager auth.TokenManager
	httpClient   *retryablehttp.Client
	logger       iga.Logger
	debug        bool
	userAgent    string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger iga.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig sets the number of retries after the first attempt and
// the backoff bounds.
func WithRetryConfig(maxRetries int, minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = maxRetries
		c.httpClient.RetryWaitMin = minWait
		c.httpClient.RetryWaitMax = maxWait
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout sets the per-attempt request deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithAPIPrefix replaces the /iga path prefix.
func WithAPIPrefix(prefix string) Option {
	return func(c *Client) {
		c.apiPrefix = "/" + strings.Trim(prefix, "/")
		if c.apiPrefix == "/" {
			c.apiPrefix = ""
		}
	}
}

// Request is one logical API call.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Upload  *MultipartFile
	Headers map[string]string
}

// MultipartFile is a file sent as multipart/form-data together with
// plain form fields.
type MultipartFile struct {
	FieldName string
	FileName  string
	Content   io.Reader
	Fields    map[string]string
}

// Response is a raw API response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Object decodes the body as a JSON object. An empty body yields an empty
// object. Any other JSON value, such as a bare array, is returned under the
// "result" key, the same key list envelopes use.
func (r *Response) Object() (iga.Object, error) {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return iga.Object{}, nil
	}

	var value interface{}

	err := json.Unmarshal(r.Body, &value)
	if err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	switch typed := value.(type) {
	case map[string]interface{}:
		return iga.Object(typed), nil
	case nil:
		return iga.Object{}, nil
	default:
		return iga.Object{"result": typed}, nil
	}
}

// DecodeJSON decodes the body into v. An empty body leaves v untouched.
func (r *Response) DecodeJSON(v interface{}) error {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}

	err := json.Unmarshal(r.Body, v)
	if err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// NewClient creates a Client for baseURL. tokenManager may be nil for
// unauthenticated calls.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.CheckRetry = checkRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		apiPrefix:    constants.APIPrefix,
		tokenManager: tokenManager,
		httpClient:   retryClient,
		userAgent:    DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.logger != nil {
		retryClient.Logger = &leveledLogger{logger: client.logger}
		retryClient.RequestLogHook = client.logRetry
	}

	return client
}

// BuildURL joins path with the base URL, adding the API prefix unless the
// path already carries it.
func (c *Client) BuildURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	if c.apiPrefix != "" && path != c.apiPrefix && !strings.HasPrefix(path, c.apiPrefix+"/") {
		path = c.apiPrefix + path
	}

	return c.baseURL + path
}

// Do executes req. On an error response the Response is returned together
// with the error. A 401 drops the cached token and repeats the call once
// with a freshly granted one.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL := c.BuildURL(req.Path)
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, req, fullURL, body, contentType)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.tokenManager != nil {
		if c.logger != nil {
			c.logger.Debug("Access token rejected, requesting a new one", map[string]interface{}{
				"method": req.Method,
				"url":    fullURL,
			})
		}

		c.tokenManager.InvalidateToken()

		resp, err = c.send(ctx, req, fullURL, body, contentType)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return resp, c.responseError(req.Path, resp)
	}

	return resp, nil
}

// send performs one logical call, including transient retries, and returns
// the raw response whatever its status.
func (c *Client) send(ctx context.Context, req *Request, fullURL string, body interface{}, contentType string) (*Response, error) {
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting token: %w", err)
		}

		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	requestID := uuid.New().String()

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", requestID)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     req.Method,
			"url":        fullURL,
			"request_id": requestID,
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if httpResp != nil {
			_ = httpResp.Body.Close()
		}

		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":     httpResp.StatusCode,
			"duration":   time.Since(start).String(),
			"request_id": requestID,
		})
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// PostWithQuery performs a POST request with query parameters and a JSON body.
func (c *Client) PostWithQuery(ctx context.Context, path string, query url.Values, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Query: query, Body: body})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// Upload POSTs file as multipart/form-data.
func (c *Client) Upload(ctx context.Context, path string, query url.Values, file *MultipartFile) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Query: query, Upload: file})
}

func (c *Client) responseError(path string, resp *Response) error {
	if resp.StatusCode != http.StatusNotFound {
		return iga.ParseClientError(resp.StatusCode, resp.Body)
	}

	notFound := &iga.NotFoundError{Path: path}

	var body struct {
		Message string `json:"message"`
	}

	if json.Unmarshal(resp.Body, &body) == nil {
		notFound.Message = body.Message
	}

	return notFound
}

func (c *Client) logRetry(_ retryablehttp.Logger, req *http.Request, attempt int) {
	if attempt == 0 {
		return
	}

	c.logger.Warn("Retrying HTTP request", map[string]interface{}{
		"method":     req.Method,
		"url":        req.URL.String(),
		"attempt":    attempt + 1,
		"request_id": req.Header.Get("X-Request-ID"),
	})
}

// encodeBody returns the request body bytes and their content type.
// Bodies are fully buffered so every retry can resend them.
func encodeBody(req *Request) (interface{}, string, error) {
	if req.Upload != nil {
		data, contentType, err := encodeMultipart(req.Upload)
		if err != nil {
			return nil, "", err
		}

		return data, contentType, nil
	}

	if req.Body == nil {
		return nil, "", nil
	}

	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("marshaling request body: %w", err)
	}

	return data, "application/json", nil
}

func encodeMultipart(file *MultipartFile) ([]byte, string, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(file.Fields))
	for key := range file.Fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		err := writer.WriteField(key, file.Fields[key])
		if err != nil {
			return nil, "", fmt.Errorf("writing form field %s: %w", key, err)
		}
	}

	fieldName := file.FieldName
	if fieldName == "" {
		fieldName = constants.UploadFileField
	}

	part, err := writer.CreateFormFile(fieldName, file.FileName)
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}

	if file.Content != nil {
		_, err = io.Copy(part, file.Content)
		if err != nil {
			return nil, "", fmt.Errorf("copying file content: %w", err)
		}
	}

	err = writer.Close()
	if err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

// checkRetry retries connection errors and the transient statuses
// 429, 500, 502, 503 and 504.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true, nil
	default:
		return false, nil
	}
}

// leveledLogger feeds retryablehttp warnings and errors into iga.Logger.
// Per-attempt debug chatter is dropped; retries are logged by logRetry.
type leveledLogger struct {
	logger iga.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keyValueFields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keyValueFields(keysAndValues))
}

func (l *leveledLogger) Info(string, ...interface{}) {}

func (l *leveledLogger) Debug(string, ...interface{}) {}

func keyValueFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}
