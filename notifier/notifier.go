package notifier

import (
	"context"
)

type ActionType string

const (
	ActionUnknown ActionType = "unknown"
	ActionCreate  ActionType = "create"
	ActionUpdate  ActionType = "update"
	ActionDelete  ActionType = "delete"
)

type Action struct {
	Type  ActionType `json:"type"`
	ID    string     `json:"id"`
	Title *string    `json:"title,omitempty"`
}

type Notification struct {
	Action Action `json:"action"`
}

type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

func CreateNotification(id string, title string) Notification {
	return Notification{
		Action: Action{
			Type:  ActionCreate,
			ID:    id,
			Title: &title,
		},
	}
}

func UpdateNotification(id string, title string) Notification {
	return Notification{
		Action: Action{
			Type:  ActionUpdate,
			ID:    id,
			Title: &title,
		},
	}
}

func DeleteNotification(id string) Notification {
	return Notification{
		Action: Action{
			Type: ActionDelete,
			ID:   id,
		},
	}
}
