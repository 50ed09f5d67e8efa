package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-surveyform/pkg/contract"
)

const (
	// DefaultBaseURL matches the backend's development address.
	DefaultBaseURL = "http://localhost:8000/api"
	// DefaultTimeout bounds each request when no HTTP client is supplied.
	DefaultTimeout = 15 * time.Second

	HeaderRequestID      = "X-Request-ID"
	HeaderIdempotencyKey = "Idempotency-Key"

	maxErrorBody = 64 << 10
)

// Client implements SurveyService against the REST backend.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	logger   *zap.Logger
	contract *contract.Contract
	newID    func() string
}

var _ SurveyService = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			clone := *c.http
			clone.Timeout = d
			c.http = &clone
		}
	}
}

// WithLogger attaches a zap logger. A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	}
}

// WithContract checks JSON create bodies against the backend contract before
// they are sent.
func WithContract(ct *contract.Contract) Option {
	return func(c *Client) {
		c.contract = ct
	}
}

// WithIDGenerator replaces the request and idempotency id source.
func WithIDGenerator(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// New constructs a Client for baseURL. An empty baseURL selects
// DefaultBaseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("client: base url %q must be http or https", baseURL)
	}

	c := &Client{
		baseURL: parsed,
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  zap.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// List returns every survey known to the backend.
func (c *Client) List(ctx context.Context) ([]Survey, error) {
	var out []Survey
	if err := c.do(ctx, "list surveys", http.MethodGet, "/surveys/", nil, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one survey.
func (c *Client) Get(ctx context.Context, id int64) (Survey, error) {
	var out Survey
	err := c.do(ctx, "get survey", http.MethodGet, surveyPath(id), nil, "", nil, &out)
	return out, err
}

// Approve moves a draft survey to approved.
func (c *Client) Approve(ctx context.Context, id int64) (ApproveResult, error) {
	var out ApproveResult
	err := c.do(ctx, "approve survey", http.MethodPost, surveyPath(id)+"/approve", nil, "", nil, allowEmpty{&out})
	return out, err
}

// Delete removes a survey. Any response body is ignored, so 204 and an
// empty 200 both succeed.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, "delete survey", http.MethodDelete, surveyPath(id), nil, "", nil, nil)
}

// Create submits a new survey in the encoding selected by req.
func (c *Client) Create(ctx context.Context, req CreateRequest) (Survey, error) {
	var (
		body        []byte
		contentType string
		err         error
	)
	if req.Multipart {
		body, contentType, err = encodeMultipart(req)
	} else {
		body, err = json.Marshal(req.Survey)
		contentType = "application/json"
	}
	if err != nil {
		return Survey{}, fmt.Errorf("client: encode create request: %w", err)
	}

	if !req.Multipart && c.contract != nil {
		if err := c.contract.ValidateCreate(ctx, body); err != nil {
			return Survey{}, fmt.Errorf("client: create survey: %w", err)
		}
	}

	headers := http.Header{}
	headers.Set(HeaderIdempotencyKey, c.newID())

	var out Survey
	err = c.do(ctx, "create survey", http.MethodPost, "/surveys/", body, contentType, headers, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte, contentType string, headers http.Header, out any) error {
	endpoint := c.baseURL.String() + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	requestID := c.newID()
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Info("backend request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := decodeAPIError(resp.StatusCode, raw)
		apiErr.RequestID = requestID
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	}
	emptyOK := false
	if opt, ok := out.(allowEmpty); ok {
		out, emptyOK = opt.out, true
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			if emptyOK {
				return nil
			}
			return &TransportError{Op: op, Err: errors.New("empty response body")}
		}
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// allowEmpty marks a response target whose body may be absent.
type allowEmpty struct{ out any }

func encodeMultipart(req CreateRequest) ([]byte, string, error) {
	if req.File == nil {
		return nil, "", errors.New("multipart create requires a questions file")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"title", req.Survey.Title},
		{"recipient_email", req.Survey.RecipientEmail},
		{"question_type", req.Survey.QuestionType},
	}
	for _, field := range fields {
		if err := writer.WriteField(field.name, field.value); err != nil {
			return nil, "", err
		}
	}

	name := req.File.Name
	if name == "" {
		name = "questions.txt"
	}
	part, err := writer.CreateFormFile("questions_file", name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.File.Content); err != nil {
		return nil, "", err
	}

	if len(req.Survey.Questions) > 0 {
		questions, err := json.Marshal(req.Survey.Questions)
		if err != nil {
			return nil, "", err
		}
		if err := writer.WriteField("questions", string(questions)); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

func surveyPath(id int64) string {
	return "/surveys/" + strconv.FormatInt(id, 10)
}
