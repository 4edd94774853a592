package chat

import "time"

// ChatSession is an owned, ordered container of messages between an actor
// and the assistant. At most one of the owner columns is set; a session with
// neither belongs to no actor.
type ChatSession struct {
	ID           string    `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerUserID  string    `json:"userId,omitempty" gorm:"type:varchar(64);index"`
	OwnerGuestID string    `json:"guestId,omitempty" gorm:"type:varchar(64);index"`
	Topic        string    `json:"topic,omitempty" gorm:"type:varchar(255)"`
	CreatedAt    time.Time `json:"createdAt"`
	Messages     []Message `json:"messages" gorm:"foreignKey:ChatSessionID;references:ID"`
}

// TableName returns the database table name for ChatSession.
func (ChatSession) TableName() string { return "chat_sessions" }
