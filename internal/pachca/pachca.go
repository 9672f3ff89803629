// Package pachca implements the Pachca API operations on top of the HTTP
// transport: chats, users, messages, reactions, threads and file uploads.
//
// Chats and users can be addressed by numeric id or by name. Names are
// resolved against the full listing, which is cached per scope for a short
// time so that a burst of calls costs one listing.
package pachca

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/k1nky/pachca-client/internal/apierr"
	"github.com/k1nky/pachca-client/internal/cache"
	"github.com/k1nky/pachca-client/internal/client"
)

// Cache scopes.
const (
	ScopeChats = "chats"
	ScopeUsers = "users"
)

// Paging bounds shared by the listing endpoints.
const (
	DefaultPer = 50
	MaxPer     = 50
)

// API paths.
const (
	methodChats         = "chats"
	methodUsers         = "users"
	methodMessages      = "messages"
	methodUploads       = "uploads"
	methodProfile       = "profile"
	methodProfileStatus = "profile/status"
)

// Pachca is the high-level API client.
type Pachca struct {
	client *client.Client
	cache  *cache.Cache[[]Entity]
	logger *zap.Logger

	// fetches collapses concurrent full listings of the same scope.
	fetches singleflight.Group
}

// Option configures Pachca.
type Option func(*Pachca)

// WithCache enables listing caching for name resolution. Without a cache every
// resolution fetches the full listing.
func WithCache(c *cache.Cache[[]Entity]) Option {
	return func(p *Pachca) {
		p.cache = c
	}
}

// WithLogger sets the logger. Defaults to the transport's logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pachca) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates the API client on top of c.
func New(c *client.Client, opts ...Option) *Pachca {
	p := &Pachca{
		client: c,
		logger: c.Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Client returns the underlying transport.
func (p *Pachca) Client() *client.Client {
	return p.client
}

// Cached returns the cached listing for scope, if present and fresh.
func (p *Pachca) Cached(scope string) ([]Entity, bool) {
	if p.cache == nil {
		return nil, false
	}
	return p.cache.Get(scope)
}

// setCached stores value under scope when caching is enabled and returns it unchanged.
func (p *Pachca) setCached(scope string, value []Entity) []Entity {
	if p.cache != nil {
		p.cache.Update(scope, value)
	}
	return value
}

// Ref addresses a chat or user by numeric id or by name.
type Ref struct {
	ID   int64
	Name string
}

// ByID returns a reference to the entity with the given id.
func ByID(id int64) Ref {
	return Ref{ID: id}
}

// ByName returns a reference to the entity with the given name. For users the
// name is the nickname.
func ByName(name string) Ref {
	return Ref{Name: name}
}

// ParseRef treats an all-digit string as an id and anything else as a name.
func ParseRef(s string) Ref {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil && id > 0 {
		return ByID(id)
	}
	return ByName(s)
}

// IsName reports whether the reference needs resolution.
func (r Ref) IsName() bool {
	return r.ID == 0 && r.Name != ""
}

func (r Ref) String() string {
	if r.IsName() {
		return strconv.Quote(r.Name)
	}
	return strconv.FormatInt(r.ID, 10)
}

// pageValues validates paging bounds and returns the query parameters. Zero
// values mean the defaults (per=50, page=1).
func pageValues(per, page int) (url.Values, error) {
	per, page = defaultPer(per), defaultPage(page)
	if per < 1 || per > MaxPer {
		return nil, fmt.Errorf("per should be in range 1..%d, got %d: %w", MaxPer, per, apierr.ErrInvalidArgument)
	}
	if page < 1 {
		return nil, fmt.Errorf("page should be greater than 0, got %d: %w", page, apierr.ErrInvalidArgument)
	}
	return url.Values{
		"per":  {strconv.Itoa(per)},
		"page": {strconv.Itoa(page)},
	}, nil
}

func defaultPer(per int) int {
	if per == 0 {
		return DefaultPer
	}
	return per
}

func defaultPage(page int) int {
	if page == 0 {
		return 1
	}
	return page
}

// fetchAll reads pages starting at page 1 until a page is shorter than per
// and returns them concatenated in fetch order.
func fetchAll[T any](ctx context.Context, per int, fetch func(ctx context.Context, page int) ([]T, error)) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		items, err := fetch(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < per {
			return all, nil
		}
	}
}

// decode unmarshals a response body into a new T. An empty body (204, or a
// swallowed error without JSON) yields the zero value.
func decode[T any](body *client.Body) (*T, error) {
	var v T
	if body.Kind == client.BodyText && body.Text == "" {
		return &v, nil
	}
	if err := body.Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

func idPath(method string, id int64, rest ...string) string {
	path := method + "/" + strconv.FormatInt(id, 10)
	for _, r := range rest {
		path += "/" + r
	}
	return path
}
