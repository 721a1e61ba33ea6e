package models

import "time"

// SendRequest is the body of POST /.
type SendRequest struct {
	Message string `json:"message" example:"hello"`
}

// SendResponse is returned when the message was delivered.
type SendResponse struct {
	Message    string `json:"message" example:"Message sent"`
	IP         string `json:"ip" example:"203.0.113.7"`
	Attempts   int    `json:"attempts" example:"2"`
	Redirected bool   `json:"redirected" example:"false"`
}

// CaptureResponse is returned instead of SendResponse when the message armed
// a redirect for its sender.
type CaptureResponse struct {
	Message string `json:"message" example:"IP 203.0.113.7 captured"`
	IP      string `json:"ip" example:"203.0.113.7"`
}

// ArmRequest is the body of POST /set-capture.
type ArmRequest struct {
	BotToken string `json:"botToken" example:"123456:ABC-DEF"`
	ChatID   string `json:"chatId" example:"-1001234567890"`
}

type ArmResponse struct {
	Message  string `json:"message" example:"Waiting for the next new IP"`
	Replaced bool   `json:"replaced" example:"false"`
}

// CaptureStatus never includes credentials.
type CaptureStatus struct {
	Armed     bool `json:"armed"`
	Grants    int  `json:"grants"`
	Addresses int  `json:"addresses"`
}

type MessageResponse struct {
	Message string `json:"message" example:"All state reset"`
}

type EventType string

const (
	EventCaptured       EventType = "captured"
	EventForwarded      EventType = "forwarded"
	EventDeliveryFailed EventType = "delivery_failed"
	EventArmed          EventType = "armed"
	EventDisarmed       EventType = "disarmed"
	EventReset          EventType = "reset"
)

// Event is appended to the relay event log. Bot tokens are never included.
type Event struct {
	Type       EventType
	Address    string
	Attempts   int
	Redirected bool
	ChatID     string
	Error      string
	At         time.Time
}
