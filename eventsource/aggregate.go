package eventsource

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-tokenledger/token"
)

// Stream event types. The three notification types reuse the ledger's own
// names; Deployed marks stream creation and carries the constructor
// arguments.
const (
	TypeDeployed             = "Deployed"
	TypeTransfer             = string(token.EventTransfer)
	TypeApproval             = string(token.EventApproval)
	TypeOwnershipTransferred = string(token.EventOwnershipTransferred)

	// TypeTransferFrom is a delegated transfer. The ledger notification for
	// it is a plain Transfer, which does not name the spender; the stream
	// keeps the spender so replay consumes the allowance too.
	TypeTransferFrom = "TransferFrom"
)

// Aggregate replay errors.
var (
	ErrNotDeployed     = errors.New("eventsource: stream does not begin with a deployment event")
	ErrAlreadyDeployed = errors.New("eventsource: duplicate deployment event")
	ErrUnknownEvent    = errors.New("eventsource: unknown event type")
)

// DeployedPayload is the constructor record of a ledger stream.
type DeployedPayload struct {
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	InitialSupply string `json:"initial_supply"`
	Deployer      string `json:"deployer"`
}

// TransferPayload records a balance movement. A zero From is a mint, a zero
// To is a burn.
type TransferPayload struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

// TransferFromPayload records a delegated transfer: the spender whose
// allowance was consumed plus the endpoints of the movement.
type TransferFromPayload struct {
	Caller string `json:"caller"`
	From   string `json:"from"`
	To     string `json:"to"`
	Value  string `json:"value"`
}

// ApprovalPayload records the resulting absolute allowance after approve,
// increaseAllowance, or decreaseAllowance.
type ApprovalPayload struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Value   string `json:"value"`
}

// OwnershipPayload records an ownership change.
type OwnershipPayload struct {
	Previous string `json:"previous"`
	Next     string `json:"next"`
}

// FromLedgerEvent converts a ledger notification into a storable stream
// event.
func FromLedgerEvent(streamID string, ev *token.Event) (*Event, error) {
	switch ev.Type {
	case token.EventTransfer:
		return NewEvent(streamID, TypeTransfer, TransferPayload{
			From:  ev.From.String(),
			To:    ev.To.String(),
			Value: ev.Value.Dec(),
		})
	case token.EventApproval:
		return NewEvent(streamID, TypeApproval, ApprovalPayload{
			Owner:   ev.From.String(),
			Spender: ev.To.String(),
			Value:   ev.Value.Dec(),
		})
	case token.EventOwnershipTransferred:
		return NewEvent(streamID, TypeOwnershipTransferred, OwnershipPayload{
			Previous: ev.From.String(),
			Next:     ev.To.String(),
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, ev.Type)
	}
}

// LedgerAggregate rebuilds a ledger by replaying its event stream. Events
// describe operations that already succeeded, so replay drives the same
// guarded ledger operations and any failure means the stream is corrupt.
type LedgerAggregate struct {
	id      string
	version int
	ledger  *token.Ledger
}

// NewLedgerAggregate creates an empty aggregate for a stream.
func NewLedgerAggregate(id string) *LedgerAggregate {
	return &LedgerAggregate{id: id, version: -1}
}

// ID returns the stream identifier.
func (a *LedgerAggregate) ID() string { return a.id }

// Version returns the version of the last applied event, or -1.
func (a *LedgerAggregate) Version() int { return a.version }

// Ledger returns the replayed ledger, or nil before the deployment event.
func (a *LedgerAggregate) Ledger() *token.Ledger { return a.ledger }

// Apply replays one event onto the aggregate.
func (a *LedgerAggregate) Apply(e *Event) error {
	if e.Type == TypeDeployed {
		if a.ledger != nil {
			return ErrAlreadyDeployed
		}
		var p DeployedPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		deployer, err := token.ParseAddress(p.Deployer)
		if err != nil {
			return err
		}
		supply := new(uint256.Int)
		if err := supply.SetFromDecimal(p.InitialSupply); err != nil {
			return fmt.Errorf("eventsource: bad initial supply %q: %w", p.InitialSupply, err)
		}
		ledger, _, err := token.New(p.Name, p.Symbol, supply, deployer)
		if err != nil {
			return err
		}
		a.ledger = ledger
		a.version = e.Version
		return nil
	}

	if a.ledger == nil {
		return ErrNotDeployed
	}

	var err error
	switch e.Type {
	case TypeTransfer:
		err = a.applyTransfer(e)
	case TypeTransferFrom:
		err = a.applyTransferFrom(e)
	case TypeApproval:
		err = a.applyApproval(e)
	case TypeOwnershipTransferred:
		err = a.applyOwnership(e)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, e.Type)
	}
	if err != nil {
		return fmt.Errorf("eventsource: replaying event %s (version %d): %w", e.ID, e.Version, err)
	}

	a.version = e.Version
	return nil
}

func (a *LedgerAggregate) applyTransfer(e *Event) error {
	var p TransferPayload
	if err := e.Decode(&p); err != nil {
		return err
	}
	from, err := token.ParseAddress(p.From)
	if err != nil {
		return err
	}
	to, err := token.ParseAddress(p.To)
	if err != nil {
		return err
	}
	value := new(uint256.Int)
	if err := value.SetFromDecimal(p.Value); err != nil {
		return fmt.Errorf("bad value %q: %w", p.Value, err)
	}

	switch {
	case from.IsZero():
		_, err = a.ledger.Mint(a.ledger.Owner(), to, value)
	case to.IsZero():
		_, err = a.ledger.Burn(from, value)
	default:
		_, err = a.ledger.Transfer(from, to, value)
	}
	return err
}

func (a *LedgerAggregate) applyTransferFrom(e *Event) error {
	var p TransferFromPayload
	if err := e.Decode(&p); err != nil {
		return err
	}
	caller, err := token.ParseAddress(p.Caller)
	if err != nil {
		return err
	}
	from, err := token.ParseAddress(p.From)
	if err != nil {
		return err
	}
	to, err := token.ParseAddress(p.To)
	if err != nil {
		return err
	}
	value := new(uint256.Int)
	if err := value.SetFromDecimal(p.Value); err != nil {
		return fmt.Errorf("bad value %q: %w", p.Value, err)
	}

	_, err = a.ledger.TransferFrom(caller, from, to, value)
	return err
}

func (a *LedgerAggregate) applyApproval(e *Event) error {
	var p ApprovalPayload
	if err := e.Decode(&p); err != nil {
		return err
	}
	owner, err := token.ParseAddress(p.Owner)
	if err != nil {
		return err
	}
	spender, err := token.ParseAddress(p.Spender)
	if err != nil {
		return err
	}
	value := new(uint256.Int)
	if err := value.SetFromDecimal(p.Value); err != nil {
		return fmt.Errorf("bad value %q: %w", p.Value, err)
	}

	// Approval events record the resulting absolute allowance, so a plain
	// approve replays increase and decrease adjustments as well.
	_, err = a.ledger.Approve(owner, spender, value)
	return err
}

func (a *LedgerAggregate) applyOwnership(e *Event) error {
	var p OwnershipPayload
	if err := e.Decode(&p); err != nil {
		return err
	}
	next, err := token.ParseAddress(p.Next)
	if err != nil {
		return err
	}
	_, err = a.ledger.TransferOwnership(a.ledger.Owner(), next)
	return err
}
