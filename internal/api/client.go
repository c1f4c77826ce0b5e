package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/ghaggin/growtech/internal/config"
	"github.com/ghaggin/growtech/internal/forms"
	"github.com/ghaggin/growtech/internal/metrics"
	"github.com/ghaggin/growtech/internal/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	signupPath = "api/auth/signup"
	loginPath  = "api/auth/login"
	usersPath  = "api/admin/users"

	// cap on error and success bodies we are willing to read
	maxBodyBytes = 1 << 20
)

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the external API. It never retries.
type Client struct {
	client  httpClient
	baseURL url.URL
	log     *zap.Logger
}

type Params struct {
	fx.In

	Config *config.Config
	Log    *zap.Logger
}

func New(p Params) (*Client, error) {
	base, err := url.Parse(p.Config.API.URL)
	if err != nil {
		return nil, err
	}

	return NewClient(&http.Client{Timeout: p.Config.API.Timeout}, *base, p.Log), nil
}

func NewClient(client httpClient, baseURL url.URL, log *zap.Logger) *Client {
	return &Client{
		client:  client,
		baseURL: baseURL,
		log:     log,
	}
}

type signupRequest struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	FullName string     `json:"fullName"`
	Role     model.Role `json:"role"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Signup registers a student account. It does not log the visitor in.
func (c *Client) Signup(ctx context.Context, f forms.Signup) error {
	body := signupRequest{
		Email:    f.Email,
		Password: f.Password,
		FullName: f.FullName,
		Role:     model.RoleStudent,
	}
	return c.do(ctx, "signup", http.MethodPost, signupPath, "", body, nil)
}

func (c *Client) Login(ctx context.Context, f forms.Login) (model.Session, error) {
	var resp loginResponse
	if err := c.do(ctx, "login", http.MethodPost, loginPath, "", f, &resp); err != nil {
		return model.Session{}, err
	}

	if resp.Token == "" || resp.User == nil {
		return model.Session{}, transportError("login", errors.New("response without token or user"))
	}

	return model.Session{Token: resp.Token, User: resp.User}, nil
}

func (c *Client) ListUsers(ctx context.Context, token string) ([]model.User, error) {
	var users []model.User
	if err := c.do(ctx, "list_users", http.MethodGet, usersPath, token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, token string, f forms.CreateUser) (model.User, error) {
	var user model.User
	if err := c.do(ctx, "create_user", http.MethodPost, usersPath, token, f, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any) error {
	err := c.roundTrip(ctx, op, method, path, token, in, out)

	outcome := metrics.OutcomeOK
	var serverErr *ServerError
	switch {
	case err == nil:
	case errors.As(err, &serverErr):
		outcome = metrics.OutcomeServer
	default:
		outcome = metrics.OutcomeTransport
	}
	metrics.APICalls.WithLabelValues(op, outcome).Inc()

	if err != nil {
		c.log.Warn("api call failed", zap.String("op", op), zap.Error(err))
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path, token string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return transportError(op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return transportError(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var er errorResponse
		// a body that is not JSON just means no message
		_ = json.Unmarshal(body, &er)
		return &ServerError{StatusCode: resp.StatusCode, Message: er.Message}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return transportError(op, err)
	}
	return nil
}
