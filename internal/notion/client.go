package notion

import (
	"context"
	"fmt"
	"net/http"

	gnt "github.com/dstotijn/go-notion"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// MaxPageSize is the largest page the Notion query endpoint returns.
const MaxPageSize = 100

const tracerName = "visualjobs.local/internal/notion"

// API is the subset of *gnt.Client the fetcher uses.
type API interface {
	QueryDatabase(ctx context.Context, id string, query *gnt.DatabaseQuery) (gnt.DatabaseQueryResponse, error)
	Search(ctx context.Context, opts *gnt.SearchOpts) (gnt.SearchResponse, error)
}

type Client struct {
	api        API
	token      string
	databaseID string
	pageSize   int
	log        *zap.Logger
}

type Option func(*Client)

// WithPageSize sets the query page size, clamped to 1..MaxPageSize.
func WithPageSize(n int) Option {
	return func(c *Client) {
		switch {
		case n < 1:
			c.pageSize = 1
		case n > MaxPageSize:
			c.pageSize = MaxPageSize
		default:
			c.pageSize = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithAPI replaces the underlying Notion client.
func WithAPI(api API) Option {
	return func(c *Client) { c.api = api }
}

// WithHTTPClient routes Notion calls through hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.api = gnt.NewClient(c.token, gnt.WithHTTPClient(hc)) }
}

func New(token, databaseID string, opts ...Option) *Client {
	c := &Client{
		api:        gnt.NewClient(token),
		token:      token,
		databaseID: databaseID,
		pageSize:   MaxPageSize,
		log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// RemoteError wraps any failure talking to Notion. It is never retried.
type RemoteError struct {
	Op         string
	DatabaseID string
	Page       int
	Err        error
}

func (e *RemoteError) Error() string {
	msg := "notion " + e.Op
	if e.DatabaseID != "" {
		msg += " " + e.DatabaseID
	}
	if e.Page > 0 {
		msg += fmt.Sprintf(" (page %d)", e.Page)
	}
	return msg + ": " + e.Err.Error()
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Ping just tries a tiny QueryDatabase to see if the DB is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.api.QueryDatabase(ctx, c.databaseID, &gnt.DatabaseQuery{
		PageSize: 1,
	})
	if err != nil {
		return &RemoteError{Op: "ping", DatabaseID: c.databaseID, Err: err}
	}
	return nil
}

// FetchAll returns every page of the database in API order, following
// pagination cursors until the API reports no more results.
func (c *Client) FetchAll(ctx context.Context) ([]gnt.Page, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "notion.FetchAll")
	defer span.End()
	span.SetAttributes(attribute.String("notion.database_id", c.databaseID))

	var (
		pages  []gnt.Page
		cursor string
	)
	for page := 1; ; page++ {
		resp, err := c.queryPage(ctx, cursor, page)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "query failed")
			return nil, err
		}
		pages = append(pages, resp.Results...)
		c.log.Debug("notion page fetched",
			zap.Int("page", page),
			zap.Int("results", len(resp.Results)),
			zap.Bool("has_more", resp.HasMore),
		)

		if !resp.HasMore {
			break
		}
		if resp.NextCursor == nil || *resp.NextCursor == "" {
			err := &RemoteError{
				Op:         "query",
				DatabaseID: c.databaseID,
				Page:       page,
				Err:        fmt.Errorf("has_more set without next_cursor"),
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "missing cursor")
			return nil, err
		}
		cursor = *resp.NextCursor
	}

	span.SetAttributes(attribute.Int("notion.records", len(pages)))
	return pages, nil
}

func (c *Client) queryPage(ctx context.Context, cursor string, page int) (gnt.DatabaseQueryResponse, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "notion.QueryDatabase",
		trace.WithAttributes(attribute.Int("notion.page", page)),
	)
	defer span.End()

	resp, err := c.api.QueryDatabase(ctx, c.databaseID, &gnt.DatabaseQuery{
		StartCursor: cursor,
		PageSize:    c.pageSize,
	})
	if err != nil {
		return gnt.DatabaseQueryResponse{}, &RemoteError{Op: "query", DatabaseID: c.databaseID, Page: page, Err: err}
	}
	return resp, nil
}

// DatabaseInfo is a database visible to the integration token.
type DatabaseInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SearchDatabases is used by /debug/notion/search to list DBs.
func (c *Client) SearchDatabases(ctx context.Context) ([]DatabaseInfo, error) {
	resp, err := c.api.Search(ctx, &gnt.SearchOpts{
		Filter: &gnt.SearchFilter{
			Property: "object",
			Value:    "database",
		},
		PageSize: 20,
	})
	if err != nil {
		return nil, &RemoteError{Op: "search", Err: err}
	}

	var dbs []DatabaseInfo
	for _, obj := range resp.Results {
		db, ok := obj.(gnt.Database)
		if !ok {
			continue
		}
		info := DatabaseInfo{ID: db.ID}
		if len(db.Title) > 0 {
			info.Title = db.Title[0].PlainText
		}
		dbs = append(dbs, info)
	}
	return dbs, nil
}
