package eventsource

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-tokenledger/eventlog"
	"github.com/pflow-xyz/go-tokenledger/token"
)

// Repository manages ledger streams: it deploys new ledgers, replays
// existing ones, and serializes operations so each one applies as an
// indivisible unit. Loaded aggregates are cached; the store's optimistic
// concurrency check protects against writers outside this process.
type Repository struct {
	store Store

	mu    sync.Mutex
	cache map[string]*LedgerAggregate
}

// NewRepository creates a repository on top of a store.
func NewRepository(store Store) *Repository {
	return &Repository{
		store: store,
		cache: make(map[string]*LedgerAggregate),
	}
}

// Deploy creates a new ledger stream and returns its ID. The deployment
// event carries the constructor arguments; replaying it reconstructs the
// initial mint to the deployer.
func (r *Repository) Deploy(ctx context.Context, name, symbol string, initialSupply *uint256.Int, deployer token.Address) (string, error) {
	if deployer.IsZero() {
		return "", token.ErrInvalidOwner
	}
	if initialSupply == nil {
		initialSupply = uint256.NewInt(0)
	}

	id := uuid.New().String()
	event, err := NewEvent(id, TypeDeployed, DeployedPayload{
		Name:          name,
		Symbol:        symbol,
		InitialSupply: initialSupply.Dec(),
		Deployer:      deployer.String(),
	})
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.store.Append(ctx, id, -1, []*Event{event}); err != nil {
		return "", err
	}

	agg := NewLedgerAggregate(id)
	if err := agg.Apply(event); err != nil {
		return "", err
	}
	r.cache[id] = agg
	return id, nil
}

// Load returns the aggregate for a stream, replaying it if not cached.
func (r *Repository) Load(ctx context.Context, id string) (*LedgerAggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked(ctx, id)
}

// Execute applies one ledger operation to a stream: load, run op, append
// the resulting notification with the aggregate's version as the
// concurrency check. The operation sees a live ledger and must return the
// event it emitted; on any error nothing is persisted.
//
// Delegated transfers must go through TransferFrom instead: their Transfer
// notification does not name the spender, so persisting it here would lose
// the allowance decrement on replay.
func (r *Repository) Execute(ctx context.Context, id string, op func(l *token.Ledger) (*token.Event, error)) (*token.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	agg, err := r.loadLocked(ctx, id)
	if err != nil {
		return nil, err
	}

	ev, err := op(agg.Ledger())
	if err != nil {
		return nil, err
	}

	stored, err := FromLedgerEvent(id, ev)
	if err != nil {
		return nil, err
	}
	if err := r.appendLocked(ctx, id, agg, stored); err != nil {
		return nil, err
	}
	return ev, nil
}

// TransferFrom runs a delegated transfer against a stream and persists it
// as a TransferFrom event carrying the caller, so replay consumes the
// allowance exactly as the live operation did.
func (r *Repository) TransferFrom(ctx context.Context, id string, caller, from, to token.Address, amount *uint256.Int) (*token.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	agg, err := r.loadLocked(ctx, id)
	if err != nil {
		return nil, err
	}

	ev, err := agg.Ledger().TransferFrom(caller, from, to, amount)
	if err != nil {
		return nil, err
	}

	stored, err := NewEvent(id, TypeTransferFrom, TransferFromPayload{
		Caller: caller.String(),
		From:   from.String(),
		To:     to.String(),
		Value:  amount.Dec(),
	})
	if err != nil {
		return nil, err
	}
	if err := r.appendLocked(ctx, id, agg, stored); err != nil {
		return nil, err
	}
	return ev, nil
}

func (r *Repository) appendLocked(ctx context.Context, id string, agg *LedgerAggregate, stored *Event) error {
	version, err := r.store.Append(ctx, id, agg.Version(), []*Event{stored})
	if err != nil {
		// The in-memory ledger already mutated; drop the cached aggregate
		// so the next load replays the persisted truth.
		delete(r.cache, id)
		return err
	}
	agg.version = version
	return nil
}

// Journal reads a stream and converts it to an export journal. The
// deployment event expands to the two construction notifications the
// constructor emits, ownership assignment then the initial mint, so records
// are renumbered by journal position.
func (r *Repository) Journal(ctx context.Context, id string) (*eventlog.Journal, error) {
	events, err := r.store.Read(ctx, id, 0)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrStreamNotFound, id)
	}

	j := eventlog.NewJournal()
	for _, e := range events {
		if e.Type == TypeDeployed {
			var p DeployedPayload
			if err := e.Decode(&p); err != nil {
				return nil, err
			}
			j.Append(eventlog.Record{
				LedgerID:  e.StreamID,
				Type:      TypeOwnershipTransferred,
				From:      token.ZeroAddress.String(),
				To:        p.Deployer,
				Timestamp: e.Timestamp,
			})
		}
		rec, err := RecordFromEvent(e)
		if err != nil {
			return nil, err
		}
		j.Append(rec)
	}
	for i := range j.Records {
		j.Records[i].Sequence = uint64(i)
	}
	return j, nil
}

// Evict drops a cached aggregate, forcing the next load to replay.
func (r *Repository) Evict(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, id)
}

func (r *Repository) loadLocked(ctx context.Context, id string) (*LedgerAggregate, error) {
	if agg, ok := r.cache[id]; ok {
		return agg, nil
	}

	events, err := r.store.Read(ctx, id, 0)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrStreamNotFound, id)
	}

	agg := NewLedgerAggregate(id)
	for _, e := range events {
		if err := agg.Apply(e); err != nil {
			return nil, err
		}
	}
	r.cache[id] = agg
	return agg, nil
}

// RecordFromEvent converts a stored stream event into a journal record.
func RecordFromEvent(e *Event) (eventlog.Record, error) {
	rec := eventlog.Record{
		Sequence:  uint64(e.Version),
		LedgerID:  e.StreamID,
		Type:      e.Type,
		Timestamp: e.Timestamp,
	}

	switch e.Type {
	case TypeDeployed:
		var p DeployedPayload
		if err := e.Decode(&p); err != nil {
			return rec, err
		}
		rec.From = token.ZeroAddress.String()
		rec.To = p.Deployer
		rec.Value = p.InitialSupply
	case TypeTransfer:
		var p TransferPayload
		if err := e.Decode(&p); err != nil {
			return rec, err
		}
		rec.From, rec.To, rec.Value = p.From, p.To, p.Value
	case TypeTransferFrom:
		var p TransferFromPayload
		if err := e.Decode(&p); err != nil {
			return rec, err
		}
		rec.From, rec.To, rec.Value = p.From, p.To, p.Value
	case TypeApproval:
		var p ApprovalPayload
		if err := e.Decode(&p); err != nil {
			return rec, err
		}
		rec.From, rec.To, rec.Value = p.Owner, p.Spender, p.Value
	case TypeOwnershipTransferred:
		var p OwnershipPayload
		if err := e.Decode(&p); err != nil {
			return rec, err
		}
		rec.From, rec.To = p.Previous, p.Next
	default:
		return rec, fmt.Errorf("%w: %s", ErrUnknownEvent, e.Type)
	}
	return rec, nil
}
