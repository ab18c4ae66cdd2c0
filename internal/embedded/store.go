// Package embedded implements the repository interfaces on top of BadgerDB.
//
// Keys are laid out so that prefix scans return records in the order the
// queries need them:
//
//	user:{id}                      -> models.User
//	user_name:{username}           -> id
//	user_email:{email}             -> id
//	chat:{id}                      -> models.Chat
//	member:{chat}:{user}           -> models.Participant
//	user_chat:{user}:{chat}        -> (empty)
//	msg:{chat}:{created_nano}:{id} -> models.Message
//
// Numbers are zero padded to 20 digits so lexicographic order is numeric order.
package embedded

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/badger/v4"

	"messenger-service/internal/repositories"
)

const (
	sequenceBandwidth = 100

	conflictInitialBackoff = time.Millisecond
	conflictMaxBackoff     = 50 * time.Millisecond
)

// Store is a BadgerDB implementation of every repository interface.
type Store struct {
	db  *badger.DB
	log *slog.Logger
	now func() time.Time

	userSeq        *badger.Sequence
	chatSeq        *badger.Sequence
	messageSeq     *badger.Sequence
	participantSeq *badger.Sequence
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New prepares id sequences on db. Call Close to release them.
func New(db *badger.DB, log *slog.Logger, opts ...Option) (*Store, error) {
	s := &Store{db: db, log: log, now: monotonicClock()}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	for _, seq := range []struct {
		key string
		dst **badger.Sequence
	}{
		{"seq:users", &s.userSeq},
		{"seq:chats", &s.chatSeq},
		{"seq:messages", &s.messageSeq},
		{"seq:participants", &s.participantSeq},
	} {
		if *seq.dst, err = db.GetSequence([]byte(seq.key), sequenceBandwidth); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("sequence %s: %w", seq.key, err)
		}
	}
	return s, nil
}

// Repositories exposes the store through the storage port.
func (s *Store) Repositories() repositories.Store {
	return repositories.Store{
		Users:        s,
		Chats:        s,
		Participants: s,
		Messages:     s,
	}
}

// Close releases the leased id ranges. The caller owns the badger handle.
func (s *Store) Close() error {
	var errs []error
	for _, seq := range []*badger.Sequence{s.userSeq, s.chatSeq, s.messageSeq, s.participantSeq} {
		if seq != nil {
			errs = append(errs, seq.Release())
		}
	}
	return errors.Join(errs...)
}

// update runs fn in a read-write transaction. Commits that lose a conflict are
// retried with jittered exponential backoff until they succeed or ctx is done.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = conflictInitialBackoff
	policy.MaxInterval = conflictMaxBackoff
	policy.MaxElapsedTime = 0

	attempt := 0
	return backoff.Retry(func() error {
		err := s.db.Update(fn)
		if errors.Is(err, badger.ErrConflict) {
			attempt++
			s.log.Debug("badger transaction conflict, retrying", "attempt", attempt)
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, backoff.WithContext(policy, ctx))
}

func nextID(seq *badger.Sequence) (int, error) {
	n, err := seq.Next()
	if err != nil {
		return 0, err
	}
	// sequences start at zero; ids start at one like SERIAL columns
	return int(n) + 1, nil
}

func getJSON(txn *badger.Txn, key string, dst any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dst)
	})
}

func setJSON(txn *badger.Txn, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return txn.Set([]byte(key), data)
}

func exists(txn *badger.Txn, key string) (bool, error) {
	_, err := txn.Get([]byte(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}

func userKey(id int) string {
	return fmt.Sprintf("user:%020d", id)
}

func usernameKey(name string) string {
	return "user_name:" + name
}

func emailKey(email string) string {
	return "user_email:" + email
}

func chatKey(id int) string {
	return fmt.Sprintf("chat:%020d", id)
}

func memberPrefix(chatID int) string {
	return fmt.Sprintf("member:%020d:", chatID)
}

func memberKey(chatID, userID int) string {
	return memberPrefix(chatID) + fmt.Sprintf("%020d", userID)
}

func userChatPrefix(userID int) string {
	return fmt.Sprintf("user_chat:%020d:", userID)
}

func userChatKey(userID, chatID int) string {
	return userChatPrefix(userID) + fmt.Sprintf("%020d", chatID)
}

func messagePrefix(chatID int) string {
	return fmt.Sprintf("msg:%020d:", chatID)
}

func messageKey(chatID int, createdAt time.Time, id int) string {
	return messagePrefix(chatID) + fmt.Sprintf("%020d:%020d", createdAt.UnixNano(), id)
}

// monotonicClock never returns the same instant twice, so a watermark taken
// after an append is strictly greater than that message's timestamp.
func monotonicClock() func() time.Time {
	var (
		mu   sync.Mutex
		last time.Time
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := time.Now().UTC()
		if !now.After(last) {
			now = last.Add(time.Nanosecond)
		}
		last = now
		return now
	}
}
