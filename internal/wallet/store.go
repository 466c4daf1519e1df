package wallet

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/aishop-labs/mantle-agent/internal/kv"
)

var (
	// ErrWalletExists is returned when provisioning a user who already has a wallet.
	ErrWalletExists = errors.New("wallet already exists for user")
	// ErrNoWallet is returned when a user has no provisioned wallet.
	ErrNoWallet = errors.New("no wallet provisioned for user")
)

const (
	walletKeyPrefix  = "user_wallet:"
	addressKeyPrefix = "address_to_user:"
)

// Record is one user's custodial wallet. PrivateKey is hex-encoded raw key
// material, stored as-is in the kv store. Records are created once and never
// mutated or deleted; there is no rotation or revocation path.
type Record struct {
	UserID     string `json:"user_id"`
	Address    string `json:"address"`
	PrivateKey string `json:"private_key"`
	CreatedAt  int64  `json:"created_at"`
}

// Store is the custodial wallet repository. It owns the forward records and
// the address reverse index; nothing else writes those keys.
type Store struct {
	kv kv.Store
}

// NewStore wraps a kv store as the wallet repository.
func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

// Has reports whether a wallet record exists for the user.
// Any underlying lookup failure is treated as "no wallet".
func (s *Store) Has(ctx context.Context, userID string) bool {
	_, ok, err := s.kv.Get(ctx, walletKeyPrefix+userID)
	return err == nil && ok
}

// Get returns the stored record for a user, or ErrNoWallet.
// The kv value may be the record's JSON directly or that JSON wrapped in a
// JSON string (hosts that stringify before storing); both decode to the same
// record.
func (s *Store) Get(ctx context.Context, userID string) (*Record, error) {
	raw, ok, err := s.kv.Get(ctx, walletKeyPrefix+userID)
	if err != nil {
		return nil, fmt.Errorf("read wallet for %s: %w", userID, err)
	}
	if !ok {
		return nil, ErrNoWallet
	}
	return decodeRecord(raw)
}

// Create generates a key pair for the user, persists the forward record and
// the reverse index entry, and returns the new record. Fails with
// ErrWalletExists if the user already has one.
//
// Known gap: the forward write and the reverse-index write are two separate
// kv operations. If the second fails the store is left without a reverse
// entry for the new address.
func (s *Store) Create(ctx context.Context, userID string) (*Record, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if s.Has(ctx, userID) {
		return nil, ErrWalletExists
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	record := &Record{
		UserID:     userID,
		Address:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
		PrivateKey: hex.EncodeToString(crypto.FromECDSA(key)),
		CreatedAt:  time.Now().Unix(),
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode wallet record: %w", err)
	}

	if err := s.kv.Set(ctx, walletKeyPrefix+userID, raw); err != nil {
		return nil, fmt.Errorf("persist wallet for %s: %w", userID, err)
	}
	if err := s.kv.Set(ctx, addressKeyPrefix+strings.ToLower(record.Address), []byte(userID)); err != nil {
		return nil, fmt.Errorf("persist reverse index for %s: %w", record.Address, err)
	}

	return record, nil
}

// ResolveUserByAddress returns the owner of an address, if any. The address
// is lowercased before lookup, matching how the index is written.
func (s *Store) ResolveUserByAddress(ctx context.Context, address string) (string, bool, error) {
	raw, ok, err := s.kv.Get(ctx, addressKeyPrefix+strings.ToLower(address))
	if err != nil {
		return "", false, fmt.Errorf("resolve address %s: %w", address, err)
	}
	if !ok {
		return "", false, nil
	}
	return string(raw), true, nil
}

func decodeRecord(raw []byte) (*Record, error) {
	var record Record
	if err := json.Unmarshal(raw, &record); err == nil && record.Address != "" {
		return &record, nil
	}

	// Stringified variant: a JSON string whose contents are the record JSON.
	var wrapped string
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if err := json.Unmarshal([]byte(wrapped), &record); err == nil && record.Address != "" {
			return &record, nil
		}
	}

	return nil, fmt.Errorf("unrecognized wallet record encoding")
}
