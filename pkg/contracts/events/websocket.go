// Package events defines the messages pushed to dashboard clients over the
// WebSocket feed.
package events

import (
	"time"

	"github.com/google/uuid"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Pushed after the dataset cache has been rebuilt
	MessageTypeDatasetReloaded MessageType = "dataset_reloaded"

	// Connection messages
	MessageTypeConnect    MessageType = "connect"
	MessageTypeDisconnect MessageType = "disconnect"
	MessageTypeError      MessageType = "error"
	MessageTypeHeartbeat  MessageType = "heartbeat"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// NewMessage stamps a message with a fresh ID and the current time.
func NewMessage(messageType MessageType, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			ID:        uuid.New().String(),
			Type:      messageType,
			Timestamp: time.Now().UTC(),
		},
		Data: data,
	}
}

// DatasetReloaded tells clients to refetch their views.
type DatasetReloaded struct {
	Version  string    `json:"version"`
	LoadedAt time.Time `json:"loaded_at"`
	Warnings int       `json:"warnings"`
	Reason   string    `json:"reason,omitempty"` // manual|file_change
}

// ConnectionEstablished is sent once to each client after registration
type ConnectionEstablished struct {
	ClientID string `json:"client_id"`
	Status   string `json:"status"`
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
