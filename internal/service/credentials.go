package service

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// credentialBook holds bcrypt password hashes keyed by an account key.
type credentialBook struct {
	mu     sync.RWMutex
	hashes map[string][]byte
	cost   int
}

func newCredentialBook(cost int) *credentialBook {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &credentialBook{hashes: make(map[string][]byte), cost: cost}
}

func (b *credentialBook) set(key, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.hashes[key] = hash
	b.mu.Unlock()
	return nil
}

func (b *credentialBook) verify(key, password string) bool {
	b.mu.RLock()
	hash, ok := b.hashes[key]
	b.mu.RUnlock()
	if !ok {
		// keep timing comparable for unknown accounts
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// rename moves the hash of from to to. It reports false, leaving the book
// unchanged, when to already belongs to another account.
func (b *credentialBook) rename(from, to string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if from == to {
		return true
	}
	if _, taken := b.hashes[to]; taken {
		return false
	}
	if hash, ok := b.hashes[from]; ok {
		b.hashes[to] = hash
		delete(b.hashes, from)
	}
	return true
}

func (b *credentialBook) remove(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.hashes, key)
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.MinCost)
