package cvapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cv-site/internal/domain"

	"github.com/google/uuid"
)

// ErrUnauthorized matches StatusError values for 401 and 403 answers.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is returned for any non-2xx answer of the CV service.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cv service %s %s returned %d: %s", e.Method, e.Path, e.Status, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// Client calls the CV data service. Admin calls carry the bearer token;
// the public aggregate read works without one.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Token   string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: &http.Client{Timeout: timeout}}
}

// WithToken returns a copy of c that authenticates as token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.Token = token
	return &cp
}

// FetchCV reads the whole aggregate. Sub-documents are returned in their
// wire form; decoding is up to the caller.
func (c *Client) FetchCV(ctx context.Context) (domain.CvDocument, error) {
	var doc domain.CvDocument
	err := c.do(ctx, http.MethodGet, "/api/cv", nil, &doc)
	return doc, err
}

func (c *Client) Me(ctx context.Context) (domain.AuthUser, error) {
	var u domain.AuthUser
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u)
	return u, err
}

func (c *Client) UpdatePersonalInfo(ctx context.Context, info domain.PersonalInfo) (domain.PersonalInfo, error) {
	var out domain.PersonalInfo
	err := c.do(ctx, http.MethodPut, "/api/admin/personal-info", info, &out)
	return out, err
}

func (c *Client) CreateEntity(ctx context.Context, kind domain.Kind, e domain.Entity) (domain.Entity, error) {
	if !kind.IsCollection() {
		return nil, fmt.Errorf("%s is not a collection", kind)
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/admin/"+kind.Path(), e, &raw); err != nil {
		return nil, err
	}
	return domain.DecodeEntity(kind, raw)
}

func (c *Client) UpdateEntity(ctx context.Context, kind domain.Kind, id int64, e domain.Entity) (domain.Entity, error) {
	if !kind.IsCollection() {
		return nil, fmt.Errorf("%s is not a collection", kind)
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPut, entityPath(kind, id), e, &raw); err != nil {
		return nil, err
	}
	return domain.DecodeEntity(kind, raw)
}

func (c *Client) DeleteEntity(ctx context.Context, kind domain.Kind, id int64) error {
	if !kind.IsCollection() {
		return fmt.Errorf("%s is not a collection", kind)
	}
	return c.do(ctx, http.MethodDelete, entityPath(kind, id), nil, nil)
}

func entityPath(kind domain.Kind, id int64) string {
	return "/api/admin/" + kind.Path() + "/" + strconv.FormatInt(id, 10)
}

// do performs one request. There is no retry: a failed call is reported
// and has to be triggered again by the user.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		slog.Error("cv service request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	slog.Debug("cv service request", "method", method, "path", path, "request_id", reqID,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: string(bytes.TrimSpace(rb))}
	}
	if out == nil || len(bytes.TrimSpace(rb)) == 0 {
		return nil
	}
	if err := json.Unmarshal(rb, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
