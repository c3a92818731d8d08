// Package client talks to the BookBrief HTTP API on behalf of a reader.
//
// The client owns no session of its own: the bearer token lives in an
// appstate.State. Any 401 resets that state and calls the OnUnauthorized
// hook, which is where a UI sends the user back to the login route.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bookbrief/bookbrief/internal/appstate"
	"github.com/bookbrief/bookbrief/internal/chapters"
	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/pagination"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL        string
	httpClient     *http.Client
	state          *appstate.State
	onUnauthorized func()
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// OnUnauthorized sets the hook run after a 401 has reset the state.
func OnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func New(baseURL string, state *appstate.State, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		state:      state,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) State() *appstate.State {
	return c.state
}

// envelope is the consumer API's response wrapper.
type envelope struct {
	Success    bool             `json:"success"`
	Data       json.RawMessage  `json:"data"`
	Message    string           `json:"message"`
	Error      any              `json:"error"`
	Pagination *pagination.Meta `json:"pagination"`
	Count      *int64           `json:"count"`
}

type loginResponse struct {
	Token struct {
		AccessToken string `json:"access_token"`
	} `json:"token"`
	User appstate.Account `json:"user"`
}

// Login signs in and stores the token and account in the state.
func (c *Client) Login(ctx context.Context, email, password string) (*appstate.Account, error) {
	var resp loginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	if resp.Token.AccessToken == "" {
		return nil, fmt.Errorf("login response carried no token")
	}
	c.state.SignIn(resp.Token.AccessToken, resp.User)
	return c.state.Account(), nil
}

// Logout forgets the session. Tokens are not revocable server-side.
func (c *Client) Logout() {
	c.state.Reset()
}

// GetBook loads a published book with its chapters in storage order. A book
// that is not free comes back without chapters.
func (c *Client) GetBook(ctx context.Context, bookID string) (*entities.Book, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/books/id/"+url.PathEscape(bookID), nil, &env); err != nil {
		return nil, err
	}
	var book entities.Book
	if err := json.Unmarshal(env.Data, &book); err != nil {
		return nil, fmt.Errorf("decode book: %w", err)
	}
	return &book, nil
}

// Chapter fetches the server-side navigation view of one chapter.
func (c *Client) Chapter(ctx context.Context, bookID string, ordinal int) (*chapters.View, error) {
	path := "/api/books/id/" + url.PathEscape(bookID) + "/chapters/" + chapters.Token(ordinal)
	var env envelope
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	var view chapters.View
	if err := json.Unmarshal(env.Data, &view); err != nil {
		return nil, fmt.Errorf("decode chapter: %w", err)
	}
	return &view, nil
}

func (c *Client) FreeBooks(ctx context.Context, req pagination.Request) (*pagination.Page[entities.Book], error) {
	return c.bookPage(ctx, http.MethodGet, "/api/books/free", req, nil)
}

func (c *Client) DailyReads(ctx context.Context, req pagination.Request) (*pagination.Page[entities.Book], error) {
	return c.bookPage(ctx, http.MethodGet, "/api/books/daily-reads", req, nil)
}

// SearchQuery is the body of a search request. Empty fields match all.
type SearchQuery struct {
	Keyword  string `json:"keyword,omitempty"`
	Category string `json:"category,omitempty"`
}

func (c *Client) Search(ctx context.Context, q SearchQuery, req pagination.Request) (*pagination.Page[entities.Book], error) {
	return c.bookPage(ctx, http.MethodPost, "/api/search", req, q)
}

// Categories returns the active categories, served from the state's cache
// after the first successful call.
func (c *Client) Categories(ctx context.Context) ([]entities.CategoryWithCount, error) {
	if cached, ok := c.state.Categories(); ok {
		return cached, nil
	}

	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, &env); err != nil {
		return nil, err
	}
	var list []entities.CategoryWithCount
	if err := json.Unmarshal(env.Data, &list); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	c.state.SetCategories(list)
	return list, nil
}

// AddReadCount bumps the book's read counter.
func (c *Client) AddReadCount(ctx context.Context, bookID string) error {
	return c.do(ctx, http.MethodPut, "/api/books/add-read-counts", map[string]string{"book_id": bookID}, nil)
}

func (c *Client) bookPage(ctx context.Context, method, path string, req pagination.Request, body any) (*pagination.Page[entities.Book], error) {
	req = pagination.NewRequest(req.Offset, req.Limit)
	q := url.Values{}
	q.Set("offset", strconv.Itoa(req.Offset))
	q.Set("limit", strconv.Itoa(req.Limit))

	var env envelope
	if err := c.do(ctx, method, path+"?"+q.Encode(), body, &env); err != nil {
		return nil, err
	}

	page := &pagination.Page[entities.Book]{Window: pagination.Window{Offset: req.Offset, Limit: req.Limit}}
	if err := json.Unmarshal(env.Data, &page.Items); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	if env.Pagination != nil {
		page.TotalCount = env.Pagination.TotalCount
	}
	return page, nil
}

// do sends one request and decodes a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.state.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.state.Reset()
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func errorMessage(data []byte) string {
	var body struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != nil {
		return fmt.Sprint(body.Error)
	}
	return strings.TrimSpace(string(data))
}
