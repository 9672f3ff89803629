package pachca

import "time"

// Entity is a listed record that can be addressed by name.
type Entity interface {
	EntityID() int64
	EntityName() string
}

// Chat is a conversation or channel.
type Chat struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	OwnerID       int64      `json:"owner_id,omitempty"`
	MemberIDs     []int64    `json:"member_ids,omitempty"`
	GroupTagIDs   []int64    `json:"group_tag_ids,omitempty"`
	Channel       bool       `json:"channel"`
	Public        bool       `json:"public"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	MeetRoomURL   string     `json:"meet_room_url,omitempty"`
}

func (c Chat) EntityID() int64    { return c.ID }
func (c Chat) EntityName() string { return c.Name }

// User is a workspace member or bot.
type User struct {
	ID           int64      `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Nickname     string     `json:"nickname"`
	Email        string     `json:"email,omitempty"`
	PhoneNumber  string     `json:"phone_number,omitempty"`
	Department   string     `json:"department,omitempty"`
	Title        string     `json:"title,omitempty"`
	Role         string     `json:"role,omitempty"`
	Suspended    bool       `json:"suspended"`
	InviteStatus string     `json:"invite_status,omitempty"`
	ListTags     []string   `json:"list_tags,omitempty"`
	Bot          bool       `json:"bot"`
	TimeZone     string     `json:"time_zone,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// Users are resolved by nickname.
func (u User) EntityID() int64    { return u.ID }
func (u User) EntityName() string { return u.Nickname }

// EntityType is the kind of target a message is posted to.
type EntityType string

const (
	EntityDiscussion EntityType = "discussion"
	EntityThread     EntityType = "thread"
	EntityUser       EntityType = "user"
)

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	switch t {
	case EntityDiscussion, EntityThread, EntityUser:
		return true
	}
	return false
}

// Message is a posted message.
type Message struct {
	ID              int64          `json:"id"`
	EntityType      EntityType     `json:"entity_type"`
	EntityID        int64          `json:"entity_id"`
	ChatID          int64          `json:"chat_id"`
	Content         string         `json:"content"`
	UserID          int64          `json:"user_id"`
	CreatedAt       *time.Time     `json:"created_at,omitempty"`
	ParentMessageID int64          `json:"parent_message_id,omitempty"`
	Files           []MessageFile  `json:"files,omitempty"`
	Buttons         [][]Button     `json:"buttons,omitempty"`
	Thread          *MessageThread `json:"thread,omitempty"`
}

// MessageFile is a file attached to a posted message.
type MessageFile struct {
	ID       int64    `json:"id"`
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	FileType FileType `json:"file_type"`
	URL      string   `json:"url,omitempty"`
}

// MessageThread links a message to its thread chat.
type MessageThread struct {
	ID     int64 `json:"id"`
	ChatID int64 `json:"chat_id"`
}

// Thread is the comment thread of a message.
type Thread struct {
	ID            int64      `json:"id"`
	ChatID        int64      `json:"chat_id"`
	MessageID     int64      `json:"message_id"`
	MessageChatID int64      `json:"message_chat_id"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// Status is the current user's profile status.
type Status struct {
	Emoji     string     `json:"emoji"`
	Title     string     `json:"title"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
