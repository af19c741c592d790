package pylon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/Tomas-vilte/sonar-funnel/internal/errors"
	"github.com/Tomas-vilte/sonar-funnel/internal/httpclient"
	"github.com/Tomas-vilte/sonar-funnel/internal/logger"
	"github.com/Tomas-vilte/sonar-funnel/internal/models"
	"github.com/Tomas-vilte/sonar-funnel/internal/tickets"
	"golang.org/x/oauth2"
)

const DefaultBaseURL = "https://api.usepylon.com"

var _ tickets.IssueSource = (*Client)(nil)

// Client talks to the Pylon REST API.
type Client struct {
	baseURL string
	client  httpclient.HTTPClient
}

// NewClient creates a Pylon client over an already authenticated HTTP client.
func NewClient(baseURL string, client httpclient.HTTPClient) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// NewClientWithToken creates a Pylon client that sends the API token as a
// bearer token on every request.
func NewClientWithToken(ctx context.Context, baseURL, token string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return NewClient(baseURL, oauth2.NewClient(ctx, ts))
}

func (c *Client) Name() string {
	return "pylon"
}

type (
	pagination struct {
		Cursor      string `json:"cursor"`
		HasNextPage bool   `json:"has_next_page"`
	}

	issueResponse struct {
		Data       []pylonIssue `json:"data"`
		Pagination pagination   `json:"pagination"`
	}

	messageResponse struct {
		Data       []pylonMessage `json:"data"`
		Pagination pagination     `json:"pagination"`
	}

	pylonIssue struct {
		ID        string     `json:"id"`
		Number    *int       `json:"number"`
		Title     *string    `json:"title"`
		Link      *string    `json:"link"`
		State     *string    `json:"state"`
		CreatedAt *string    `json:"created_at"`
		Tags      []pylonTag `json:"tags"`
	}

	pylonMessage struct {
		MessageHTML *string      `json:"message_html"`
		Author      *pylonAuthor `json:"author"`
	}

	pylonAuthor struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Contact *struct {
			Email string `json:"email"`
		} `json:"contact"`
		User *struct {
			Email string `json:"email"`
		} `json:"user"`
	}
)

// pylonTag accepts both plain string tags and {"name": ...} objects.
type pylonTag struct {
	Name string
}

func (t *pylonTag) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		t.Name = name
		return nil
	}

	var obj struct {
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("tag must be a string or an object with a name: %w", err)
	}
	if obj.Name != nil {
		t.Name = *obj.Name
	}
	return nil
}

// ListIssues lists issues created in the requested window.
func (c *Client) ListIssues(ctx context.Context, req tickets.IssueListRequest) (*models.Page[models.Issue], error) {
	query := url.Values{}
	query.Set("start_time", req.StartTime)
	query.Set("end_time", req.EndTime)
	if req.Cursor != "" {
		query.Set("cursor", req.Cursor)
	}

	var resp issueResponse
	if err := c.get(ctx, "/issues", query, &resp); err != nil {
		return nil, err
	}

	page := &models.Page[models.Issue]{
		Items:       make([]models.Issue, 0, len(resp.Data)),
		HasNextPage: resp.Pagination.HasNextPage,
		NextCursor:  resp.Pagination.Cursor,
	}
	for _, raw := range resp.Data {
		page.Items = append(page.Items, raw.toModel())
	}
	return page, nil
}

// ListMessages lists the messages of one issue.
func (c *Client) ListMessages(ctx context.Context, req tickets.MessageListRequest) (*models.Page[models.Message], error) {
	query := url.Values{}
	if req.Cursor != "" {
		query.Set("cursor", req.Cursor)
	}

	var resp messageResponse
	path := fmt.Sprintf("/issues/%s/messages", url.PathEscape(req.IssueID))
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, err
	}

	page := &models.Page[models.Message]{
		Items:       make([]models.Message, 0, len(resp.Data)),
		HasNextPage: resp.Pagination.HasNextPage,
		NextCursor:  resp.Pagination.Cursor,
	}
	for _, raw := range resp.Data {
		page.Items = append(page.Items, raw.toModel())
	}
	return page, nil
}

func (i pylonIssue) toModel() models.Issue {
	issue := models.Issue{
		ID:        i.ID,
		Number:    i.Number,
		Link:      i.Link,
		State:     i.State,
		CreatedAt: i.CreatedAt,
		Tags:      make([]string, 0, len(i.Tags)),
	}
	if i.Title != nil {
		issue.Title = *i.Title
	}
	for _, tag := range i.Tags {
		if tag.Name != "" {
			issue.Tags = append(issue.Tags, tag.Name)
		}
	}
	return issue
}

func (m pylonMessage) toModel() models.Message {
	var msg models.Message
	if m.MessageHTML != nil {
		msg.BodyHTML = *m.MessageHTML
	}
	if a := m.Author; a != nil {
		msg.Author.Name = a.Name
		msg.Author.Email = a.Email
		if msg.Author.Email == "" && a.Contact != nil {
			msg.Author.Email = a.Contact.Email
		}
		if msg.Author.Email == "" && a.User != nil {
			msg.Author.Email = a.User.Email
		}
	}
	return msg
}

// get performs a GET request and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return appErrors.ErrTicketingRequest.WithError(err).WithContext("endpoint", path)
	}
	req.Header.Set("Accept", "application/json")

	logger.Debug(ctx, "pylon request", "method", req.Method, "path", path, "query", query.Encode())

	resp, err := c.client.Do(req)
	if err != nil {
		return appErrors.ErrTicketingRequest.WithError(err).WithContext("endpoint", path)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Debug(ctx, "error closing response body", "error", err)
		}
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return appErrors.NewRateLimitError(c.Name(), parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()), nil)
	case http.StatusUnauthorized, http.StatusForbidden:
		return appErrors.ErrTicketingUnauthorized.
			WithContext("endpoint", path).
			WithContext("status", resp.Status)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return appErrors.ErrTicketingRequest.
			WithError(fmt.Errorf("%s", strings.TrimSpace(string(body)))).
			WithContext("endpoint", path).
			WithContext("status", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErrors.ErrTicketingDecode.WithError(err).WithContext("endpoint", path)
	}
	return nil
}

// parseRetryAfter reads a Retry-After header given either in seconds or as an
// HTTP date. It returns zero when the header is absent or unusable.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs * float64(time.Second))
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
