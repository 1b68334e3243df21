package models

import (
	"time"
)

// Comment is a reader comment attached to a published article
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// MaxCommentWords is the maximum allowed words in a comment body
const MaxCommentWords = 500
