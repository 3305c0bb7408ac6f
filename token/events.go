package token

import (
	"fmt"

	"github.com/holiman/uint256"
)

// EventType identifies a ledger notification.
type EventType string

const (
	// EventTransfer is emitted on transfer, transferFrom, mint (From is the
	// zero address), and burn (To is the zero address).
	EventTransfer EventType = "Transfer"

	// EventApproval is emitted whenever an allowance is set or adjusted.
	// From is the allowance owner and To is the spender.
	EventApproval EventType = "Approval"

	// EventOwnershipTransferred is emitted when the ledger owner changes.
	// From is the previous owner and To is the new owner.
	EventOwnershipTransferred EventType = "OwnershipTransferred"
)

// Event is a notification emitted by a successful ledger operation.
// Events are returned to the caller rather than delivered through a side
// channel; external tooling (indexers, event stores) decides what to do
// with them.
type Event struct {
	Type  EventType
	From  Address
	To    Address
	Value *uint256.Int // nil for OwnershipTransferred
}

// String returns a human-readable representation of the event.
func (e *Event) String() string {
	if e.Value == nil {
		return fmt.Sprintf("%s(%s, %s)", e.Type, e.From, e.To)
	}
	return fmt.Sprintf("%s(%s, %s, %s)", e.Type, e.From, e.To, e.Value.Dec())
}

func newTransfer(from, to Address, value *uint256.Int) *Event {
	return &Event{Type: EventTransfer, From: from, To: to, Value: value.Clone()}
}

func newApproval(owner, spender Address, value *uint256.Int) *Event {
	return &Event{Type: EventApproval, From: owner, To: spender, Value: value.Clone()}
}

func newOwnershipTransferred(previous, next Address) *Event {
	return &Event{Type: EventOwnershipTransferred, From: previous, To: next}
}
