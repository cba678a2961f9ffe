package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/client/models"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

const (
	usersPath       = "/rest/v1/users"
	sessionsPath    = "/rest/v1/user_sessions"
	verifyEmailPath = "/rest/v1/rpc/verify_user_email"
	sendEmailPath   = "/functions/v1/send-verification-email"
	rootPath        = "/rest/v1/"
	returnRepresent = "return=representation"
	returnMinimal   = "return=minimal"
)

// DefaultTimeout bounds every backend request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// RESTClient implements Backend over the PostgREST-shaped HTTP API.
type RESTClient struct {
	http   *resty.Client
	health *HealthChecker
}

var _ Backend = (*RESTClient)(nil)

// NewRESTClient returns a client for baseURL that authenticates every
// request with apiKey.
func NewRESTClient(baseURL, apiKey string, timeout time.Duration) *RESTClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	h := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader(common.APIKeyHeaderName, apiKey).
		SetAuthToken(apiKey).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	return &RESTClient{http: h}
}

// WithHealth makes Ping use the gRPC health service instead of an HTTP request.
func (c *RESTClient) WithHealth(h *HealthChecker) *RESTClient {
	c.health = h
	return c
}

func eq(v string) string { return "eq." + v }

func (c *RESTClient) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

func (c *RESTClient) InsertUser(ctx context.Context, u models.NewUser) (*models.User, error) {
	resp, err := c.request(ctx).
		SetHeader(common.PreferHeaderName, returnRepresent).
		SetBody(u).
		Post(usersPath)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return firstRow[models.User](resp.Body())
}

func (c *RESTClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return c.getUser(ctx, "email", email)
}

func (c *RESTClient) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return c.getUser(ctx, "id", id)
}

func (c *RESTClient) getUser(ctx context.Context, col, value string) (*models.User, error) {
	resp, err := c.request(ctx).
		SetQueryParam(col, eq(value)).
		SetQueryParam("select", "*").
		Get(usersPath)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return firstRow[models.User](resp.Body())
}

func (c *RESTClient) CreateSession(ctx context.Context, s models.Session) error {
	resp, err := c.request(ctx).
		SetHeader(common.PreferHeaderName, returnMinimal).
		SetBody(s).
		Post(sessionsPath)
	return check(resp, err)
}

func (c *RESTClient) GetSession(ctx context.Context, token string) (*models.Session, error) {
	resp, err := c.request(ctx).
		SetQueryParam("token", eq(token)).
		SetQueryParam("select", "*").
		Get(sessionsPath)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return firstRow[models.Session](resp.Body())
}

func (c *RESTClient) ExtendSession(ctx context.Context, token string, expiresAt, lastActivity time.Time) error {
	resp, err := c.request(ctx).
		SetQueryParam("token", eq(token)).
		SetHeader(common.PreferHeaderName, returnMinimal).
		SetBody(map[string]time.Time{
			"expires_at":    expiresAt.UTC(),
			"last_activity": lastActivity.UTC(),
		}).
		Patch(sessionsPath)
	return check(resp, err)
}

func (c *RESTClient) DeleteSession(ctx context.Context, token string) error {
	resp, err := c.request(ctx).
		SetQueryParam("token", eq(token)).
		Delete(sessionsPath)
	return check(resp, err)
}

func (c *RESTClient) VerifyUserEmail(ctx context.Context, token string) (bool, error) {
	resp, err := c.request(ctx).
		SetBody(map[string]string{"token": token}).
		Post(verifyEmailPath)
	if err := check(resp, err); err != nil {
		return false, err
	}
	res := gjson.ParseBytes(resp.Body())
	if res.Type != gjson.True && res.Type != gjson.False {
		return false, fmt.Errorf("verify_user_email: unexpected result %q", resp.String())
	}
	return res.Bool(), nil
}

func (c *RESTClient) SendVerificationEmail(ctx context.Context, email, firstName string) error {
	body := map[string]string{"email": email}
	if firstName != "" {
		body["firstName"] = firstName
	}
	resp, err := c.request(ctx).
		SetBody(body).
		Post(sendEmailPath)
	return check(resp, err)
}

// Ping checks that the backend is reachable.
func (c *RESTClient) Ping(ctx context.Context) error {
	if c.health != nil {
		return c.health.Check(ctx)
	}
	resp, err := c.request(ctx).Head(rootPath)
	return check(resp, err)
}

func (c *RESTClient) Close() error {
	if c.health != nil {
		return c.health.Close()
	}
	return nil
}

// check turns transport failures and error responses into errors.
func check(resp *resty.Response, err error) error {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !resp.IsError() {
		return nil
	}
	return parseAPIError(resp.StatusCode(), resp.Body())
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	if gjson.ValidBytes(body) {
		res := gjson.ParseBytes(body)
		apiErr.Code = res.Get("code").String()
		apiErr.Message = res.Get("message").String()
		apiErr.Details = res.Get("details").String()
	}
	if apiErr.Message == "" && len(body) > 0 && !gjson.ValidBytes(body) {
		apiErr.Message = string(body)
	}
	if apiErr.Message == "" && status == http.StatusNotFound {
		apiErr.Message = "not found"
	}
	return apiErr
}

// firstRow decodes a PostgREST row array and returns its first element.
func firstRow[T any](body []byte) (*T, error) {
	var rows []T
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}
