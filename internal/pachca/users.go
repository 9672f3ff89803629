package pachca

import (
	"context"
)

// ListUsersOptions are the parameters of GET users.
type ListUsersOptions struct {
	// Per is the page size, 1..50. Zero means 50.
	Per int
	// Page is the 1-based page number. Zero means 1. Ignored by ListAllUsers.
	Page int
	// Query filters by name, nickname, email or phone. Omitted when empty.
	Query string
}

// ListUsers returns one page of users.
func (p *Pachca) ListUsers(ctx context.Context, opts ListUsersOptions) ([]User, error) {
	q, err := pageValues(opts.Per, opts.Page)
	if err != nil {
		return nil, err
	}
	if opts.Query != "" {
		q.Set("query", opts.Query)
	}
	body, err := p.client.Get(ctx, methodUsers, q)
	if err != nil {
		return nil, err
	}
	users, err := decode[[]User](body)
	if err != nil {
		return nil, err
	}
	return *users, nil
}

// ListAllUsers fetches every page of users and stores the full listing in the
// users cache scope, replacing whatever was cached before.
func (p *Pachca) ListAllUsers(ctx context.Context, opts ListUsersOptions) ([]User, error) {
	per := defaultPer(opts.Per)
	users, err := fetchAll(ctx, per, func(ctx context.Context, page int) ([]User, error) {
		pageOpts := opts
		pageOpts.Per, pageOpts.Page = per, page
		return p.ListUsers(ctx, pageOpts)
	})
	if err != nil {
		return nil, err
	}
	p.setCached(ScopeUsers, userEntities(users))
	return users, nil
}

// GetUser returns a user by id or nickname.
func (p *Pachca) GetUser(ctx context.Context, ref Ref) (*User, error) {
	id, err := p.resolveUser(ctx, ref)
	if err != nil {
		return nil, err
	}
	body, err := p.client.Get(ctx, idPath(methodUsers, id), nil)
	if err != nil {
		return nil, err
	}
	return decode[User](body)
}

// GetProfile returns the user that owns the access token.
func (p *Pachca) GetProfile(ctx context.Context) (*User, error) {
	body, err := p.client.Get(ctx, methodProfile, nil)
	if err != nil {
		return nil, err
	}
	return decode[User](body)
}

// GetStatus returns the status of the user that owns the access token.
func (p *Pachca) GetStatus(ctx context.Context) (*Status, error) {
	body, err := p.client.Get(ctx, methodProfileStatus, nil)
	if err != nil {
		return nil, err
	}
	return decode[Status](body)
}
