package chat

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is the single channel between two members about one request.
// The participant pair is stored canonicalised (low <= high) so the unique index
// on (participant_low, participant_high, request_id) makes (A,B) and (B,A) collide.
type Conversation struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ParticipantLow  string    `gorm:"column:participant_low;not null;index;uniqueIndex:idx_conversation_pair_request,priority:1" json:"-"`
	ParticipantHigh string    `gorm:"column:participant_high;not null;index;uniqueIndex:idx_conversation_pair_request,priority:2" json:"-"`
	RequestID       uuid.UUID `gorm:"type:uuid;column:request_id;not null;uniqueIndex:idx_conversation_pair_request,priority:3" json:"request_id"`

	Participants []string `gorm:"-" json:"participants"`

	CreatedAt     time.Time `gorm:"column:created_at;not null" json:"created_at"`
	LastMessageAt time.Time `gorm:"column:last_message_at;not null;index" json:"last_message_at"`
}

func (Conversation) TableName() string { return "conversation" }

// NewConversation builds an unsaved conversation for the pair a/b.
func NewConversation(a, b string, requestID uuid.UUID, now time.Time) *Conversation {
	low, high := CanonicalPair(a, b)
	c := &Conversation{
		ID:              uuid.New(),
		ParticipantLow:  low,
		ParticipantHigh: high,
		RequestID:       requestID,
		CreatedAt:       now,
		LastMessageAt:   now,
	}
	c.fillParticipants()
	return c
}

func (c *Conversation) AfterFind(tx *gorm.DB) error {
	c.fillParticipants()
	return nil
}

func (c *Conversation) fillParticipants() {
	c.Participants = []string{c.ParticipantLow, c.ParticipantHigh}
}

func (c *Conversation) HasParticipant(identity string) bool {
	id := NormalizeIdentity(identity)
	return id != "" && (c.ParticipantLow == id || c.ParticipantHigh == id)
}

// Others returns the participants that are not self.
func (c *Conversation) Others(self string) []string {
	self = NormalizeIdentity(self)
	out := []string{}
	for _, p := range []string{c.ParticipantLow, c.ParticipantHigh} {
		if p != self {
			out = append(out, p)
		}
	}
	return out
}

// Key is the logical identity of a conversation.
type Key struct {
	Low       string
	High      string
	RequestID uuid.UUID
}

func KeyFor(a, b string, requestID uuid.UUID) Key {
	low, high := CanonicalPair(a, b)
	return Key{Low: low, High: high, RequestID: requestID}
}

func (c *Conversation) Key() Key {
	return Key{Low: c.ParticipantLow, High: c.ParticipantHigh, RequestID: c.RequestID}
}

// CanonicalPair normalises both identities and orders them.
func CanonicalPair(a, b string) (string, string) {
	pair := []string{NormalizeIdentity(a), NormalizeIdentity(b)}
	sort.Strings(pair)
	return pair[0], pair[1]
}

// NormalizeIdentity is the one place identity keys (emails) are canonicalised.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}
