package pachca

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/k1nky/pachca-client/internal/apierr"
)

// ResolveChatName returns the id of the first chat named name. The second
// result is false when no chat matches.
func (p *Pachca) ResolveChatName(ctx context.Context, name string) (int64, bool, error) {
	return p.resolveName(ctx, ScopeChats, name, func(ctx context.Context) ([]Entity, error) {
		chats, err := p.ListAllChats(ctx, ListChatsOptions{})
		if err != nil {
			return nil, err
		}
		return chatEntities(chats), nil
	})
}

// ResolveUserName returns the id of the first user whose nickname is nickname.
// The second result is false when no user matches.
func (p *Pachca) ResolveUserName(ctx context.Context, nickname string) (int64, bool, error) {
	return p.resolveName(ctx, ScopeUsers, nickname, func(ctx context.Context) ([]Entity, error) {
		users, err := p.ListAllUsers(ctx, ListUsersOptions{})
		if err != nil {
			return nil, err
		}
		return userEntities(users), nil
	})
}

// resolveName scans the cached listing for scope, fetching it once on a miss.
// Matching is exact and case-sensitive; the first match in listing order wins.
func (p *Pachca) resolveName(ctx context.Context, scope, name string, fetch func(context.Context) ([]Entity, error)) (int64, bool, error) {
	entities, ok := p.Cached(scope)
	if ok {
		p.logger.Debug("resolve cache hit", zap.String("scope", scope), zap.String("name", name))
	} else {
		p.logger.Debug("resolve cache miss", zap.String("scope", scope), zap.String("name", name))
		// The shared fetch outlives any one caller; each caller waits on its own ctx.
		ch := p.fetches.DoChan(scope, func() (any, error) {
			return fetch(context.WithoutCancel(ctx))
		})
		select {
		case <-ctx.Done():
			return 0, false, fmt.Errorf("listing %s: %w", scope, ctx.Err())
		case res := <-ch:
			if res.Err != nil {
				return 0, false, fmt.Errorf("listing %s: %w", scope, res.Err)
			}
			entities = res.Val.([]Entity)
		}
	}
	for _, e := range entities {
		if e.EntityName() == name {
			return e.EntityID(), true, nil
		}
	}
	return 0, false, nil
}

// resolveChat turns ref into a chat id. An unmatched name is ErrNotResolved.
func (p *Pachca) resolveChat(ctx context.Context, ref Ref) (int64, error) {
	if !ref.IsName() {
		return p.requireID("chat", ref)
	}
	id, ok, err := p.ResolveChatName(ctx, ref.Name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("chat %q: %w", ref.Name, apierr.ErrNotResolved)
	}
	return id, nil
}

// resolveUser turns ref into a user id. An unmatched nickname is ErrNotResolved.
func (p *Pachca) resolveUser(ctx context.Context, ref Ref) (int64, error) {
	if !ref.IsName() {
		return p.requireID("user", ref)
	}
	id, ok, err := p.ResolveUserName(ctx, ref.Name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("user %q: %w", ref.Name, apierr.ErrNotResolved)
	}
	return id, nil
}

func (p *Pachca) requireID(kind string, ref Ref) (int64, error) {
	if ref.ID <= 0 {
		return 0, fmt.Errorf("%s id or name is required: %w", kind, apierr.ErrInvalidArgument)
	}
	return ref.ID, nil
}

func chatEntities(chats []Chat) []Entity {
	out := make([]Entity, len(chats))
	for i, c := range chats {
		out[i] = c
	}
	return out
}

func userEntities(users []User) []Entity {
	out := make([]Entity, len(users))
	for i, u := range users {
		out[i] = u
	}
	return out
}
