package models

import (
	"fmt"
	"time"
)

// ContextType names the entity an attachment (document, link, conversation)
// belongs to.
type ContextType string

const (
	ContextProject ContextType = "project"
	ContextView    ContextType = "view"
	ContextIssue   ContextType = "issue"
)

func ParseContextType(s string) (ContextType, error) {
	switch ContextType(s) {
	case ContextProject, ContextView, ContextIssue:
		return ContextType(s), nil
	}
	return "", fmt.Errorf("unknown context type %q", s)
}

type ContextRef struct {
	Type ContextType
	ID   string
}

func (c ContextRef) String() string {
	return string(c.Type) + ":" + c.ID
}

type Document struct {
	ID          string
	Context     ContextRef
	FileName    string
	StoragePath string
	ContentType string
	Size        int64
	UploadedBy  string
	CreatedAt   time.Time
}

type Link struct {
	ID        string
	Context   ContextRef
	Title     string
	URL       string
	CreatedBy string
	CreatedAt time.Time
}

type MessageRole string

const (
	MessageSystem    MessageRole = "system"
	MessageUser      MessageRole = "user"
	MessageAssistant MessageRole = "assistant"
)

type AIConversation struct {
	ID        string
	Context   ContextRef
	UserID    string
	CreatedAt time.Time
}

type AIMessage struct {
	ID             string
	ConversationID string
	Role           MessageRole
	Content        string
	CreatedAt      time.Time
}
