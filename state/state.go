// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/cache"
	"github.com/luxfi/cache/lru"
	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/ids"
)

const (
	addrLen = len(ids.ShortID{})

	artifactCacheSize = 4096
)

var (
	_ Chain = (*State)(nil)

	globalsPrefix       = []byte("globals")
	balancePrefix       = []byte("balance")
	supplyPrefix        = []byte("supply")
	artifactPrefix      = []byte("artifact")
	holdingPrefix       = []byte("holding")
	claimPrefix         = []byte("claim")
	stakePrefix         = []byte("stake")
	artifactStakePrefix = []byte("artifactStake")
	flowPrefix          = []byte("flow")

	globalsKey = []byte("globals")

	errInvalidAmount = errors.New("invalid stored amount")
)

// Chain is the set of collections the accounting engine reads and writes.
// Every getter of a keyed record returns database.ErrNotFound when the record
// is absent. Amount getters return zero instead.
type Chain interface {
	GetGlobals() (*Globals, error)
	PutGlobals(*Globals) error

	GetBalance(token Token, addr ids.ShortID) (*uint256.Int, error)
	SetBalance(token Token, addr ids.ShortID, amount *uint256.Int) error
	GetTotalSupply(token Token) (*uint256.Int, error)
	SetTotalSupply(token Token, amount *uint256.Int) error

	GetArtifact(id ids.ShortID) (*Artifact, error)
	PutArtifact(*Artifact) error
	HasArtifact(id ids.ShortID) (bool, error)

	GetHolding(artifact, holder ids.ShortID) (*uint256.Int, error)
	SetHolding(artifact, holder ids.ShortID, amount *uint256.Int) error
	GetClaim(artifact, holder ids.ShortID) (*Claim, error)
	PutClaim(artifact, holder ids.ShortID, claim *Claim) error

	GetStake(staker, artifact ids.ShortID) (*Stake, error)
	PutStake(*Stake) error
	GetStakes(staker ids.ShortID) ([]*Stake, error)
	GetAllStakes() ([]*Stake, error)
	GetArtifactStake(artifact ids.ShortID) (*uint256.Int, error)
	SetArtifactStake(artifact ids.ShortID, amount *uint256.Int) error

	GetFlow(artifact ids.ShortID) (*Flow, error)
	PutFlow(*Flow) error
	GetFlows() ([]*Flow, error)
}

// State persists the engine's collections behind a versiondb overlay. Writes
// are buffered until Commit and dropped by Abort.
type State struct {
	db *versiondb.Database

	// encoded artifacts, including uncommitted writes
	artifactCache cache.Cacher[ids.ShortID, []byte]

	globalsDB       database.Database
	balanceDB       database.Database
	supplyDB        database.Database
	artifactDB      database.Database
	holdingDB       database.Database
	claimDB         database.Database
	stakeDB         database.Database
	artifactStakeDB database.Database
	flowDB          database.Database
}

func New(baseDB database.Database) *State {
	db := versiondb.New(baseDB)
	return &State{
		db:              db,
		artifactCache:   lru.NewCache[ids.ShortID, []byte](artifactCacheSize),
		globalsDB:       prefixdb.New(globalsPrefix, db),
		balanceDB:       prefixdb.New(balancePrefix, db),
		supplyDB:        prefixdb.New(supplyPrefix, db),
		artifactDB:      prefixdb.New(artifactPrefix, db),
		holdingDB:       prefixdb.New(holdingPrefix, db),
		claimDB:         prefixdb.New(claimPrefix, db),
		stakeDB:         prefixdb.New(stakePrefix, db),
		artifactStakeDB: prefixdb.New(artifactStakePrefix, db),
		flowDB:          prefixdb.New(flowPrefix, db),
	}
}

// Commit writes every pending change to the underlying database.
func (s *State) Commit() error {
	return s.db.Commit()
}

// Abort drops every pending change.
func (s *State) Abort() {
	s.db.Abort()
	s.artifactCache.Flush()
}

func (s *State) Close() error {
	return s.db.Close()
}

func (s *State) GetGlobals() (*Globals, error) {
	g := &Globals{}
	return g, getRecord(s.globalsDB, globalsKey, g)
}

func (s *State) PutGlobals(g *Globals) error {
	return putRecord(s.globalsDB, globalsKey, g)
}

func (s *State) GetBalance(token Token, addr ids.ShortID) (*uint256.Int, error) {
	return getAmount(s.balanceDB, tokenKey(token, addr))
}

func (s *State) SetBalance(token Token, addr ids.ShortID, amount *uint256.Int) error {
	return putAmount(s.balanceDB, tokenKey(token, addr), amount)
}

func (s *State) GetTotalSupply(token Token) (*uint256.Int, error) {
	return getAmount(s.supplyDB, []byte{byte(token)})
}

func (s *State) SetTotalSupply(token Token, amount *uint256.Int) error {
	return putAmount(s.supplyDB, []byte{byte(token)}, amount)
}

func (s *State) GetArtifact(id ids.ShortID) (*Artifact, error) {
	b, ok := s.artifactCache.Get(id)
	if !ok {
		var err error
		b, err = s.artifactDB.Get(id[:])
		if err != nil {
			return nil, err
		}
		s.artifactCache.Put(id, b)
	}
	a := &Artifact{}
	if _, err := Codec.Unmarshal(b, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *State) PutArtifact(a *Artifact) error {
	b, err := Codec.Marshal(CodecVersion, a)
	if err != nil {
		return err
	}
	if err := s.artifactDB.Put(a.ID[:], b); err != nil {
		return err
	}
	s.artifactCache.Put(a.ID, b)
	return nil
}

func (s *State) HasArtifact(id ids.ShortID) (bool, error) {
	return s.artifactDB.Has(id[:])
}

func (s *State) GetHolding(artifact, holder ids.ShortID) (*uint256.Int, error) {
	return getAmount(s.holdingDB, pairKey(artifact, holder))
}

func (s *State) SetHolding(artifact, holder ids.ShortID, amount *uint256.Int) error {
	return putAmount(s.holdingDB, pairKey(artifact, holder), amount)
}

// GetClaim returns an empty claim when none was recorded.
func (s *State) GetClaim(artifact, holder ids.ShortID) (*Claim, error) {
	c := &Claim{}
	err := getRecord(s.claimDB, pairKey(artifact, holder), c)
	if errors.Is(err, database.ErrNotFound) {
		return c, nil
	}
	return c, err
}

func (s *State) PutClaim(artifact, holder ids.ShortID, c *Claim) error {
	key := pairKey(artifact, holder)
	if c.Amount.IsZero() && c.Debt.IsZero() {
		return s.claimDB.Delete(key)
	}
	return putRecord(s.claimDB, key, c)
}

func (s *State) GetStake(staker, artifact ids.ShortID) (*Stake, error) {
	stake := &Stake{}
	if err := getRecord(s.stakeDB, pairKey(staker, artifact), stake); err != nil {
		return nil, err
	}
	return stake, nil
}

func (s *State) PutStake(stake *Stake) error {
	return putRecord(s.stakeDB, pairKey(stake.Staker, stake.Artifact), stake)
}

// GetStakes returns the stakes of [staker] ordered by artifact.
func (s *State) GetStakes(staker ids.ShortID) ([]*Stake, error) {
	return iterateRecords[Stake](s.stakeDB, staker[:])
}

// GetAllStakes returns every stake ordered by staker, then artifact.
func (s *State) GetAllStakes() ([]*Stake, error) {
	return iterateRecords[Stake](s.stakeDB, nil)
}

func (s *State) GetArtifactStake(artifact ids.ShortID) (*uint256.Int, error) {
	return getAmount(s.artifactStakeDB, artifact[:])
}

func (s *State) SetArtifactStake(artifact ids.ShortID, amount *uint256.Int) error {
	return putAmount(s.artifactStakeDB, artifact[:], amount)
}

func (s *State) GetFlow(artifact ids.ShortID) (*Flow, error) {
	f := &Flow{}
	if err := getRecord(s.flowDB, artifact[:], f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *State) PutFlow(f *Flow) error {
	return putRecord(s.flowDB, f.Artifact[:], f)
}

// GetFlows returns every flow ordered by artifact address.
func (s *State) GetFlows() ([]*Flow, error) {
	return iterateRecords[Flow](s.flowDB, nil)
}

func tokenKey(token Token, addr ids.ShortID) []byte {
	key := make([]byte, 1+addrLen)
	key[0] = byte(token)
	copy(key[1:], addr[:])
	return key
}

func pairKey(a, b ids.ShortID) []byte {
	key := make([]byte, 2*addrLen)
	copy(key, a[:])
	copy(key[addrLen:], b[:])
	return key
}

func getAmount(db database.KeyValueReader, key []byte) (*uint256.Int, error) {
	b, err := db.Get(key)
	if errors.Is(err, database.ErrNotFound) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, err
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("%w: %d bytes", errInvalidAmount, len(b))
	}
	return new(uint256.Int).SetBytes32(b), nil
}

// putAmount deletes zero amounts so absent and zero read the same.
func putAmount(db database.KeyValueWriterDeleter, key []byte, amount *uint256.Int) error {
	if amount.IsZero() {
		return db.Delete(key)
	}
	b := amount.Bytes32()
	return db.Put(key, b[:])
}

func getRecord(db database.KeyValueReader, key []byte, v any) error {
	b, err := db.Get(key)
	if err != nil {
		return err
	}
	_, err = Codec.Unmarshal(b, v)
	return err
}

func putRecord(db database.KeyValueWriter, key []byte, v any) error {
	b, err := Codec.Marshal(CodecVersion, v)
	if err != nil {
		return err
	}
	return db.Put(key, b)
}

func iterateRecords[T any](db database.Database, prefix []byte) ([]*T, error) {
	it := db.NewIteratorWithPrefix(prefix)
	defer it.Release()

	var records []*T
	for it.Next() {
		record := new(T)
		if _, err := Codec.Unmarshal(it.Value(), record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, it.Error()
}
