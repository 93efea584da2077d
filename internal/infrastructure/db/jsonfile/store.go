package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/agencia-oeste/viajes-api/internal/core/domain"
)

const (
	usersCollection    = "users"
	requestsCollection = "solicitudes"
)

// Store owns the collections of one data directory.
type Store struct {
	users    *Collection[userRecord]
	requests *Collection[domain.TravelRequest]
}

// Open prepares dir and the collections inside it. encoding selects the
// file codec ("json" or "cbor").
func Open(dir, encoding string, log zerolog.Logger) (*Store, error) {
	codec, err := NewCodec(encoding)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}

	log = log.With().Str("component", "jsonfile").Str("encoding", codec.Name()).Logger()
	return &Store{
		users:    newCollection[userRecord](dir, usersCollection, codec, log),
		requests: newCollection[domain.TravelRequest](dir, requestsCollection, codec, log),
	}, nil
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{users: s.users}
}

func (s *Store) TravelRequests() *TravelRequestRepository {
	return &TravelRequestRepository{requests: s.requests}
}

// Ping is the readiness check of the file backend.
func (s *Store) Ping(ctx context.Context) error {
	return errors.Join(s.users.Ping(ctx), s.requests.Ping(ctx))
}

// Close waits for in-flight writes and stops the writers.
func (s *Store) Close() {
	s.users.Close()
	s.requests.Close()
}
