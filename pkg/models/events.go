package models

import "fmt"

// GpioEvent is a level change of one GPIO pin observed on a node.
type GpioEvent struct {
	Time       int64  `json:"time"`
	ObserverID int    `json:"observer_id"`
	NodeID     int    `json:"node_id"`
	Pin        string `json:"pin"`
	High       bool   `json:"high"`
}

// String renders the event for logs and CLI output.
func (e GpioEvent) String() string {
	return fmt.Sprintf("%d, observer=%d, node=%d, pin=%s, val=%t", e.Time, e.ObserverID, e.NodeID, e.Pin, e.High)
}

// SerialDirection is the direction of a serial line transfer.
type SerialDirection string

// Serial directions as written by the testbed observers.
const (
	SerialNone  SerialDirection = "NONE"
	SerialRead  SerialDirection = "r"
	SerialWrite SerialDirection = "w"
)

// ParseSerialDirection maps the CSV direction column to a SerialDirection.
func ParseSerialDirection(s string) SerialDirection {
	switch SerialDirection(s) {
	case SerialRead:
		return SerialRead
	case SerialWrite:
		return SerialWrite
	default:
		return SerialNone
	}
}

// SerialEvent is one line of serial output captured from a node.
type SerialEvent struct {
	Time       int64           `json:"time"`
	ObserverID int             `json:"observer_id"`
	NodeID     int             `json:"node_id"`
	Direction  SerialDirection `json:"direction"`
	Output     string          `json:"output"`
}

// String renders the event for logs and CLI output.
func (e SerialEvent) String() string {
	return fmt.Sprintf("%d: observer=%d, dir=%s: %s", e.Time, e.ObserverID, e.Direction, e.Output)
}
