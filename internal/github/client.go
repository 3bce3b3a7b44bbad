package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/weibeld/github-projects-dashboard/internal/models"
	"github.com/weibeld/github-projects-dashboard/internal/telemetry"
)

const (
	// DefaultEndpoint is the GitHub GraphQL API.
	DefaultEndpoint = "https://api.github.com/graphql"
	// DefaultTimeout bounds one fetch.
	DefaultTimeout = 30 * time.Second
)

const projectsQuery = `query {
  viewer {
    projectsV2(first: 100) {
      nodes {
        id
        number
        title
        url
        public
        closed
        createdAt
        updatedAt
        closedAt
        items { totalCount }
      }
    }
  }
}`

// Client queries the GitHub GraphQL API.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client
}

var _ Source = (*Client)(nil)

// NewClient creates a client for the public GitHub API.
func NewClient() *Client {
	return &Client{
		Endpoint:   DefaultEndpoint,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithHTTPClient returns a new client with a custom HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	return &Client{Endpoint: c.Endpoint, HTTPClient: httpClient}
}

// WithEndpoint returns a new client with a custom GraphQL endpoint (for testing or GitHub Enterprise).
func (c *Client) WithEndpoint(endpoint string) *Client {
	return &Client{Endpoint: endpoint, HTTPClient: c.HTTPClient}
}

type graphQLRequest struct {
	Query string `json:"query"`
}

type projectNode struct {
	ID        string     `json:"id"`
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Public    bool       `json:"public"`
	Closed    bool       `json:"closed"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
	ClosedAt  *time.Time `json:"closedAt"`
	Items     struct {
		TotalCount int `json:"totalCount"`
	} `json:"items"`
}

type projectsResponse struct {
	Data struct {
		Viewer struct {
			ProjectsV2 struct {
				Nodes []projectNode `json:"nodes"`
			} `json:"projectsV2"`
		} `json:"viewer"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"errors"`
}

// FetchProjects returns the viewer's projects. A 401 yields ErrAuthExpired,
// everything else that is not a clean 2xx yields a *TransportError.
func (c *Client) FetchProjects(ctx context.Context, token string) ([]models.GitHubProject, error) {
	ctx, span := telemetry.Tracer("ghpd/github").Start(ctx, "github.FetchProjects")
	defer span.End()

	projects, err := c.fetchProjects(ctx, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("projects", len(projects)))
	return projects, nil
}

func (c *Client) fetchProjects(ctx context.Context, token string) ([]models.GitHubProject, error) {
	body, err := json.Marshal(graphQLRequest{Query: projectsQuery})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	const maxResponseSize = 10 * 1024 * 1024
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w (status %d)", ErrAuthExpired, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: truncate(string(respBody), 200)}
	}

	var result projectsResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: "invalid response body", Err: err}
	}
	if len(result.Errors) > 0 {
		msgs := make([]string, len(result.Errors))
		for i, e := range result.Errors {
			msgs[i] = e.Message
		}
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: strings.Join(msgs, "; ")}
	}

	nodes := result.Data.Viewer.ProjectsV2.Nodes
	projects := make([]models.GitHubProject, 0, len(nodes))
	for _, n := range nodes {
		p := models.GitHubProject{
			ID:        n.ID,
			Number:    n.Number,
			Title:     n.Title,
			URL:       n.URL,
			Public:    n.Public,
			Closed:    n.Closed,
			CreatedAt: n.CreatedAt,
			ClosedAt:  n.ClosedAt,
			Items:     n.Items.TotalCount,
		}
		if n.UpdatedAt != nil {
			p.UpdatedAt = *n.UpdatedAt
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
