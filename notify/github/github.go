// Package github delivers alert notifications as GitHub issues.
// An open issue with the same title is commented on instead of opening a duplicate
package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sig-0/fxwatch/alert"
)

const (
	DefaultAPIURL  = "https://api.github.com"
	DefaultTimeout = 20 * time.Second

	// issuesPageSize is the number of open issues scanned for a title match
	issuesPageSize = 50
)

var (
	ErrMissingToken      = errors.New("missing GitHub token")
	ErrInvalidRepository = errors.New("invalid repository (must be owner/name)")
)

type issue struct {
	Title   string `json:"title"`
	HTMLURL string `json:"html_url"`
	Number  int    `json:"number"`
}

type comment struct {
	HTMLURL string `json:"html_url"`
}

type createIssueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels,omitempty"`
}

type createCommentRequest struct {
	Body string `json:"body"`
}

// Client is the GitHub issues notifier
type Client struct {
	logger *slog.Logger
	client *resty.Client

	owner string
	name  string
}

type Option func(c *Client)

// WithLogger specifies the logger for the client
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithBaseURL overrides the GitHub API URL
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.client.SetBaseURL(strings.TrimSuffix(url, "/"))
		}
	}
}

// WithTimeout specifies the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client.SetTimeout(d)
		}
	}
}

// ParseRepository splits an owner/name repository reference
func ParseRepository(repo string) (string, string, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(repo), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepository, repo)
	}

	return owner, name, nil
}

// New creates a new GitHub issues client for the owner/name repository
func New(token, repo string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	owner, name, err := ParseRepository(repo)
	if err != nil {
		return nil, err
	}

	c := &Client{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		client: resty.New().
			SetBaseURL(DefaultAPIURL).
			SetTimeout(DefaultTimeout).
			SetAuthToken(token).
			SetHeader("Accept", "application/vnd.github+json"),
		owner: owner,
		name:  name,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Notify comments on the first open issue with the notification's title,
// or opens a new labeled issue if there is none
func (c *Client) Notify(ctx context.Context, n *alert.Notification) (*alert.Delivery, error) {
	existing, err := c.findOpenIssue(ctx, n.Title)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		url, err := c.comment(ctx, existing.Number, n.Body)
		if err != nil {
			return nil, err
		}

		c.logger.Info(
			"commented on existing issue",
			"number", existing.Number,
			"url", url,
		)

		return &alert.Delivery{
			Number:    existing.Number,
			URL:       url,
			Commented: true,
		}, nil
	}

	created, err := c.createIssue(ctx, n)
	if err != nil {
		return nil, err
	}

	c.logger.Info(
		"created new issue",
		"number", created.Number,
		"url", created.HTMLURL,
	)

	return &alert.Delivery{
		Number: created.Number,
		URL:    created.HTMLURL,
	}, nil
}

func (c *Client) issuesPath() string {
	return "/repos/" + c.owner + "/" + c.name + "/issues"
}

func (c *Client) findOpenIssue(ctx context.Context, title string) (*issue, error) {
	var issues []issue

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"state":    "open",
			"per_page": strconv.Itoa(issuesPageSize),
		}).
		SetResult(&issues).
		Get(c.issuesPath())
	if err != nil {
		return nil, fmt.Errorf("unable to list open issues: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, statusError("list open issues", resp)
	}

	for i := range issues {
		if issues[i].Title == title {
			return &issues[i], nil
		}
	}

	return nil, nil
}

func (c *Client) comment(ctx context.Context, number int, body string) (string, error) {
	var created comment

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(createCommentRequest{Body: body}).
		SetResult(&created).
		Post(c.issuesPath() + "/" + strconv.Itoa(number) + "/comments")
	if err != nil {
		return "", fmt.Errorf("unable to comment on issue #%d: %w", number, err)
	}

	if !resp.IsSuccess() {
		return "", statusError("comment on issue", resp)
	}

	return created.HTMLURL, nil
}

func (c *Client) createIssue(ctx context.Context, n *alert.Notification) (*issue, error) {
	var created issue

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(createIssueRequest{
			Title:  n.Title,
			Body:   n.Body,
			Labels: n.Labels,
		}).
		SetResult(&created).
		Post(c.issuesPath())
	if err != nil {
		return nil, fmt.Errorf("unable to create issue: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, statusError("create issue", resp)
	}

	return &created, nil
}

func statusError(op string, resp *resty.Response) error {
	return fmt.Errorf("unable to %s: invalid status code received: %d", op, resp.StatusCode())
}
