package adapter

import (
	"context"
	"fmt"

	"github.com/taproot-vault/vaultcore/vault"
	"github.com/taproot-vault/vaultcore/vaulterr"
)

// spendKey identifies a previous output by its outpoint.
type spendKey struct {
	txid string
	vout uint32
}

// MockAdapter is a deterministic in-memory BlockchainAdapter used in tests
// and in the recovery scanner's own test suite, following the small
// struct-with-in-memory-fields mock idiom of lnd/mock.go's
// mockMessageSwitch: no network, no goroutines, answers come straight out
// of maps populated by the test.
type MockAdapter struct {
	utxosByAddress map[string][]vault.Utxo
	witness        map[spendKey][][]byte
	tipHeight      uint32

	// failAddresses, when set, makes GetUtxos return the given error for
	// that address instead of looking it up, so tests can exercise C6's
	// transient/permanent retry branches.
	failAddresses map[string]error
}

// NewMockAdapter returns an empty mock at the given tip height.
func NewMockAdapter(tipHeight uint32) *MockAdapter {
	return &MockAdapter{
		utxosByAddress: make(map[string][]vault.Utxo),
		witness:        make(map[spendKey][][]byte),
		tipHeight:      tipHeight,
		failAddresses:  make(map[string]error),
	}
}

// SetUtxos registers the UTXO set a given address should report.
func (m *MockAdapter) SetUtxos(address string, utxos []vault.Utxo) {
	m.utxosByAddress[address] = utxos
}

// SetWitness registers the witness stack observed spending txid:vout.
func (m *MockAdapter) SetWitness(txid string, vout uint32, witness [][]byte) {
	m.witness[spendKey{txid, vout}] = witness
}

// SetTipHeight overrides the tip height returned by GetTipHeight.
func (m *MockAdapter) SetTipHeight(height uint32) {
	m.tipHeight = height
}

// FailAddress makes GetUtxos return err whenever address is queried.
func (m *MockAdapter) FailAddress(address string, err error) {
	m.failAddresses[address] = err
}

func (m *MockAdapter) GetUtxos(_ context.Context, address string) (
	[]vault.Utxo, error) {

	if err, ok := m.failAddresses[address]; ok {
		return nil, err
	}
	return m.utxosByAddress[address], nil
}

func (m *MockAdapter) GetTipHeight(_ context.Context) (uint32, error) {
	return m.tipHeight, nil
}

func (m *MockAdapter) GetTxWitness(_ context.Context, txid string,
	vout uint32) ([][]byte, bool, error) {

	w, ok := m.witness[spendKey{txid, vout}]
	return w, ok, nil
}

// AlwaysTransient is a convenience error for FailAddress call sites that
// want to exercise the retry path rather than the give-up path.
func AlwaysTransient(address string) error {
	return vaulterr.AdapterTransient(
		fmt.Sprintf("mock: transient failure for %s", address), nil)
}
