package pachca

import (
	"context"
	"fmt"
	"strings"

	"github.com/k1nky/pachca-client/internal/apierr"
)

// NewMessageOptions are the parameters of POST messages.
type NewMessageOptions struct {
	// EntityType defaults to discussion.
	EntityType EntityType
	// Entity is the target. Discussions resolve names as chat names, users as
	// nicknames; threads must be addressed by id.
	Entity  Ref
	Content string
	// ParentMessageID makes the message a reply. Omitted when zero.
	ParentMessageID int64
	// Files are uploaded in order before the message is posted.
	Files []*File
	// Buttons are rows of inline buttons.
	Buttons [][]Button
}

type messagePayload struct {
	EntityType      EntityType   `json:"entity_type,omitempty"`
	EntityID        int64        `json:"entity_id,omitempty"`
	Content         string       `json:"content,omitempty"`
	ParentMessageID int64        `json:"parent_message_id,omitempty"`
	Files           []attachment `json:"files,omitempty"`
	Buttons         [][]Button   `json:"buttons,omitempty"`
}

// NewMessage posts a message. A named target is resolved first; an unknown
// name fails with ErrNotResolved and nothing is posted. Files are uploaded
// sequentially and any upload failure aborts the call before the post.
func (p *Pachca) NewMessage(ctx context.Context, opts NewMessageOptions) (*Message, error) {
	entityType := opts.EntityType
	if entityType == "" {
		entityType = EntityDiscussion
	}
	if !entityType.Valid() {
		return nil, fmt.Errorf("unknown entity type %q: %w", entityType, apierr.ErrInvalidArgument)
	}
	if strings.TrimSpace(opts.Content) == "" {
		return nil, fmt.Errorf("message content should be not empty: %w", apierr.ErrInvalidArgument)
	}

	entityID, err := p.resolveEntity(ctx, entityType, opts.Entity)
	if err != nil {
		return nil, err
	}

	files, err := p.uploadFiles(ctx, opts.Files)
	if err != nil {
		return nil, err
	}

	payload := map[string]messagePayload{
		"message": {
			EntityType:      entityType,
			EntityID:        entityID,
			Content:         opts.Content,
			ParentMessageID: opts.ParentMessageID,
			Files:           files,
			Buttons:         opts.Buttons,
		},
	}
	body, err := p.client.Post(ctx, methodMessages, payload)
	if err != nil {
		return nil, err
	}
	return decode[Message](body)
}

func (p *Pachca) resolveEntity(ctx context.Context, entityType EntityType, ref Ref) (int64, error) {
	switch entityType {
	case EntityUser:
		return p.resolveUser(ctx, ref)
	case EntityThread:
		if ref.IsName() {
			return 0, fmt.Errorf("thread %q: threads can only be addressed by id: %w", ref.Name, apierr.ErrInvalidArgument)
		}
		return p.requireID("thread", ref)
	default:
		return p.resolveChat(ctx, ref)
	}
}

// GetMessage returns a message by id.
func (p *Pachca) GetMessage(ctx context.Context, id int64) (*Message, error) {
	if id <= 0 {
		return nil, fmt.Errorf("message id is required: %w", apierr.ErrInvalidArgument)
	}
	body, err := p.client.Get(ctx, idPath(methodMessages, id), nil)
	if err != nil {
		return nil, err
	}
	return decode[Message](body)
}

// UpdateMessageOptions are the parameters of PUT messages/{id}. Empty fields
// are left unchanged.
type UpdateMessageOptions struct {
	Content string
	Files   []*File
	Buttons [][]Button
}

// UpdateMessage edits a message. Files are uploaded first, with the same
// abort-on-failure rule as NewMessage.
func (p *Pachca) UpdateMessage(ctx context.Context, id int64, opts UpdateMessageOptions) (*Message, error) {
	if id <= 0 {
		return nil, fmt.Errorf("message id is required: %w", apierr.ErrInvalidArgument)
	}
	if opts.Content == "" && len(opts.Files) == 0 && len(opts.Buttons) == 0 {
		return nil, fmt.Errorf("nothing to update: %w", apierr.ErrInvalidArgument)
	}
	files, err := p.uploadFiles(ctx, opts.Files)
	if err != nil {
		return nil, err
	}
	payload := map[string]messagePayload{
		"message": {
			Content: opts.Content,
			Files:   files,
			Buttons: opts.Buttons,
		},
	}
	body, err := p.client.Put(ctx, idPath(methodMessages, id), payload)
	if err != nil {
		return nil, err
	}
	return decode[Message](body)
}

// NewThread creates (or returns the existing) comment thread of a message.
func (p *Pachca) NewThread(ctx context.Context, messageID int64) (*Thread, error) {
	if messageID <= 0 {
		return nil, fmt.Errorf("message id is required: %w", apierr.ErrInvalidArgument)
	}
	body, err := p.client.Post(ctx, idPath(methodMessages, messageID, "thread"), nil)
	if err != nil {
		return nil, err
	}
	return decode[Thread](body)
}

type reactionPayload struct {
	Code string `json:"code"`
}

// AddReaction adds the emoji code as a reaction to a message.
func (p *Pachca) AddReaction(ctx context.Context, messageID int64, code string) error {
	if err := validateReaction(messageID, code); err != nil {
		return err
	}
	_, err := p.client.Post(ctx, idPath(methodMessages, messageID, "reactions"), reactionPayload{Code: code})
	return err
}

// RemoveReaction removes the emoji code reaction from a message.
func (p *Pachca) RemoveReaction(ctx context.Context, messageID int64, code string) error {
	if err := validateReaction(messageID, code); err != nil {
		return err
	}
	_, err := p.client.Delete(ctx, idPath(methodMessages, messageID, "reactions"), reactionPayload{Code: code})
	return err
}

func validateReaction(messageID int64, code string) error {
	if messageID <= 0 {
		return fmt.Errorf("message id is required: %w", apierr.ErrInvalidArgument)
	}
	if code == "" {
		return fmt.Errorf("reaction code should be not empty: %w", apierr.ErrInvalidArgument)
	}
	return nil
}
