package pachca

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/k1nky/pachca-client/internal/apierr"
)

// Chat availability filters.
const (
	AvailabilityIsMember = "is_member"
	AvailabilityPublic   = "public"
)

// ListChatsOptions are the parameters of GET chats.
type ListChatsOptions struct {
	// Per is the page size, 1..50. Zero means 50.
	Per int
	// Page is the 1-based page number. Zero means 1. Ignored by ListAllChats.
	Page int
	// Availability defaults to is_member.
	Availability string
	// LastMessageAtAfter and LastMessageAtBefore are omitted when nil.
	LastMessageAtAfter  *time.Time
	LastMessageAtBefore *time.Time
}

func (o ListChatsOptions) query() (url.Values, error) {
	q, err := pageValues(o.Per, o.Page)
	if err != nil {
		return nil, err
	}
	availability := o.Availability
	if availability == "" {
		availability = AvailabilityIsMember
	}
	if availability != AvailabilityIsMember && availability != AvailabilityPublic {
		return nil, fmt.Errorf("availability should be %s or %s, got %q: %w",
			AvailabilityIsMember, AvailabilityPublic, availability, apierr.ErrInvalidArgument)
	}
	q.Set("availability", availability)
	if o.LastMessageAtAfter != nil {
		q.Set("last_message_at_after", o.LastMessageAtAfter.UTC().Format(time.RFC3339))
	}
	if o.LastMessageAtBefore != nil {
		q.Set("last_message_at_before", o.LastMessageAtBefore.UTC().Format(time.RFC3339))
	}
	return q, nil
}

// ListChats returns one page of chats.
func (p *Pachca) ListChats(ctx context.Context, opts ListChatsOptions) ([]Chat, error) {
	q, err := opts.query()
	if err != nil {
		return nil, err
	}
	body, err := p.client.Get(ctx, methodChats, q)
	if err != nil {
		return nil, err
	}
	chats, err := decode[[]Chat](body)
	if err != nil {
		return nil, err
	}
	return *chats, nil
}

// ListAllChats fetches every page of chats and stores the full listing in the
// chats cache scope, replacing whatever was cached before.
func (p *Pachca) ListAllChats(ctx context.Context, opts ListChatsOptions) ([]Chat, error) {
	per := defaultPer(opts.Per)
	chats, err := fetchAll(ctx, per, func(ctx context.Context, page int) ([]Chat, error) {
		pageOpts := opts
		pageOpts.Per, pageOpts.Page = per, page
		return p.ListChats(ctx, pageOpts)
	})
	if err != nil {
		return nil, err
	}
	p.setCached(ScopeChats, chatEntities(chats))
	return chats, nil
}

// GetChat returns a chat by id or name.
func (p *Pachca) GetChat(ctx context.Context, ref Ref) (*Chat, error) {
	id, err := p.resolveChat(ctx, ref)
	if err != nil {
		return nil, err
	}
	body, err := p.client.Get(ctx, idPath(methodChats, id), nil)
	if err != nil {
		return nil, err
	}
	return decode[Chat](body)
}

// NewChatOptions are the parameters of POST chats.
type NewChatOptions struct {
	Name        string
	MemberIDs   []int64
	GroupTagIDs []int64
	// Channel creates a channel instead of a conversation.
	Channel bool
	Public  bool
}

type chatPayload struct {
	Name        string  `json:"name,omitempty"`
	MemberIDs   []int64 `json:"member_ids,omitempty"`
	GroupTagIDs []int64 `json:"group_tag_ids,omitempty"`
	Channel     *bool   `json:"channel,omitempty"`
	Public      *bool   `json:"public,omitempty"`
}

// NewChat creates a chat. The chats listing is refreshed afterwards whether or
// not the create succeeded.
func (p *Pachca) NewChat(ctx context.Context, opts NewChatOptions) (*Chat, error) {
	if strings.TrimSpace(opts.Name) == "" {
		return nil, fmt.Errorf("chat name should be not empty: %w", apierr.ErrInvalidArgument)
	}
	payload := map[string]chatPayload{
		"chat": {
			Name:        opts.Name,
			MemberIDs:   opts.MemberIDs,
			GroupTagIDs: opts.GroupTagIDs,
			Channel:     &opts.Channel,
			Public:      &opts.Public,
		},
	}
	body, err := p.client.Post(ctx, methodChats, payload)
	p.refreshChats(ctx)
	if err != nil {
		return nil, err
	}
	return decode[Chat](body)
}

// UpdateChatOptions are the parameters of PUT chats/{id}. Nil fields are left unchanged.
type UpdateChatOptions struct {
	Name   *string
	Public *bool
}

// UpdateChat updates a chat addressed by id or name. The chats listing is
// refreshed afterwards whether or not the update succeeded.
func (p *Pachca) UpdateChat(ctx context.Context, ref Ref, opts UpdateChatOptions) (*Chat, error) {
	if opts.Name != nil && strings.TrimSpace(*opts.Name) == "" {
		return nil, fmt.Errorf("chat name should be not empty: %w", apierr.ErrInvalidArgument)
	}
	id, err := p.resolveChat(ctx, ref)
	if err != nil {
		return nil, err
	}
	chat := chatPayload{Public: opts.Public}
	if opts.Name != nil {
		chat.Name = *opts.Name
	}
	body, err := p.client.Put(ctx, idPath(methodChats, id), map[string]chatPayload{"chat": chat})
	p.refreshChats(ctx)
	if err != nil {
		return nil, err
	}
	return decode[Chat](body)
}

// refreshChats re-lists all chats to repopulate the cache. Failures are logged.
func (p *Pachca) refreshChats(ctx context.Context) {
	if _, err := p.ListAllChats(ctx, ListChatsOptions{}); err != nil {
		p.logger.Warn("refreshing chats cache failed", zap.Error(err))
	}
}
