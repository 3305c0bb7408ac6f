package proof

import (
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

// System manages circuit compilation, trusted setup, and proof generation.
// Circuits compile once at registration; proving reuses the cached keys.
type System struct {
	mu       sync.RWMutex
	curve    ecc.ID
	circuits map[string]*Compiled
}

// Compiled holds a compiled circuit with its keys.
type Compiled struct {
	Name         string
	CS           constraint.ConstraintSystem
	ProvingKey   groth16.ProvingKey
	VerifyingKey groth16.VerifyingKey
	Constraints  int
}

// NewSystem creates a proof system on BN254.
func NewSystem() *System {
	return &System{
		curve:    ecc.BN254,
		circuits: make(map[string]*Compiled),
	}
}

// Register compiles a circuit and runs trusted setup under the given name.
func (s *System) Register(name string, circuit frontend.Circuit) error {
	cs, err := frontend.Compile(s.curve.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return fmt.Errorf("proof: circuit compilation failed: %w", err)
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return fmt.Errorf("proof: setup failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.circuits[name] = &Compiled{
		Name:         name,
		CS:           cs,
		ProvingKey:   pk,
		VerifyingKey: vk,
		Constraints:  cs.GetNbConstraints(),
	}
	return nil
}

// Circuit returns a registered circuit by name.
func (s *System) Circuit(name string) (*Compiled, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cc, ok := s.circuits[name]
	return cc, ok
}

// Prove generates a proof for a registered circuit and returns it with the
// public witness needed to verify it.
func (s *System) Prove(name string, assignment frontend.Circuit) (groth16.Proof, witness.Witness, error) {
	s.mu.RLock()
	cc, ok := s.circuits[name]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("proof: circuit %q not registered", name)
	}

	w, err := frontend.NewWitness(assignment, s.curve.ScalarField())
	if err != nil {
		return nil, nil, fmt.Errorf("proof: witness creation failed: %w", err)
	}
	prf, err := groth16.Prove(cc.CS, cc.ProvingKey, w)
	if err != nil {
		return nil, nil, fmt.Errorf("proof: proof generation failed: %w", err)
	}
	public, err := w.Public()
	if err != nil {
		return nil, nil, fmt.Errorf("proof: public witness extraction failed: %w", err)
	}
	return prf, public, nil
}

// Verify checks a proof against the circuit's verifying key.
func (s *System) Verify(name string, prf groth16.Proof, public witness.Witness) error {
	s.mu.RLock()
	cc, ok := s.circuits[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("proof: circuit %q not registered", name)
	}
	return groth16.Verify(prf, cc.VerifyingKey, public)
}
