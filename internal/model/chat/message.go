package chat

import "time"

// Sender values accepted on a message.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// ValidSender reports whether s is one of the accepted sender values.
func ValidSender(s string) bool {
	return s == SenderUser || s == SenderAI
}

// Message persists a single turn inside a session. Rows are append-only:
// once written they are never edited or deleted.
type Message struct {
	ID            string    `json:"id" gorm:"type:char(36);primaryKey"`
	ChatSessionID string    `json:"chatSessionId" gorm:"type:char(36);not null;index"`
	Sender        string    `json:"sender" gorm:"type:varchar(16);not null"`
	Content       string    `json:"content" gorm:"type:text;not null"`
	CreatedAt     time.Time `json:"createdAt"`

	// Seq is the insertion-order key used to return messages in the order
	// they were appended. Assigned by the database.
	Seq int64 `json:"-" gorm:"autoIncrement;uniqueIndex"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }
