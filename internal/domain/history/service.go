package history

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
	"github.com/yanqian/kai-insight/internal/domain/storage"
	apperrors "github.com/yanqian/kai-insight/pkg/errors"
	"github.com/yanqian/kai-insight/pkg/util"
)

const (
	defaultMaxItems = 50

	CodeNotFound = "history_not_found"
)

// Service manages each owner's most-recent-first analysis history.
type Service interface {
	Add(ctx context.Context, owner, inputText string, result analysis.Result) (Item, error)
	Remove(ctx context.Context, owner, id string) error
	Clear(ctx context.Context, owner string) error
	Get(ctx context.Context, owner, id string) (Item, error)
	List(ctx context.Context, owner string) ([]Item, error)
	Search(ctx context.Context, owner, query string) ([]Item, error)
}

type service struct {
	cfg    Config
	store  storage.KeyValue
	logger *slog.Logger
	clock  util.Clock
	newID  func() (uuid.UUID, error)

	mu     sync.Mutex
	owners map[string][]Item
}

// NewService builds the history store over a key/value backend.
func NewService(cfg Config, store storage.KeyValue, logger *slog.Logger) Service {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = defaultMaxItems
	}
	return &service{
		cfg:    cfg,
		store:  store,
		logger: logger.With("component", "history.service"),
		newID:  uuid.NewV7,
		owners: make(map[string][]Item),
	}
}

func (s *service) Add(ctx context.Context, owner, inputText string, result analysis.Result) (Item, error) {
	id, err := s.newID()
	if err != nil {
		return Item{}, apperrors.Wrap(apperrors.CodeInternal, "failed to allocate history id", err)
	}
	item := Item{
		ID:        id.String(),
		Timestamp: s.clock.Now().UnixMilli(),
		InputText: inputText,
		Result:    result,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.reload(ctx, owner)
	if err != nil {
		return Item{}, err
	}
	next := make([]Item, 0, min(len(items)+1, s.cfg.MaxItems))
	next = append(next, item)
	next = append(next, items...)
	if len(next) > s.cfg.MaxItems {
		next = next[:s.cfg.MaxItems]
	}
	s.commit(ctx, owner, next)
	return item, nil
}

func (s *service) Remove(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.reload(ctx, owner)
	if err != nil {
		return err
	}
	next := make([]Item, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			next = append(next, item)
		}
	}
	if len(next) == len(items) {
		return nil
	}
	s.commit(ctx, owner, next)
	return nil
}

func (s *service) Clear(ctx context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[owner] = []Item{}
	if err := s.store.Delete(ctx, storage.ScopedKey(owner, storage.KeyHistory)); err != nil {
		s.logger.Warn("history clear not persisted", "owner", owner, "error", err)
	}
	return nil
}

func (s *service) Get(ctx context.Context, owner, id string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.hydrate(ctx, owner)
	if err != nil {
		return Item{}, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return Item{}, apperrors.Wrap(CodeNotFound, "history item not found", nil)
}

func (s *service) List(ctx context.Context, owner string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.hydrate(ctx, owner)
	if err != nil {
		return nil, err
	}
	return clone(items), nil
}

func (s *service) Search(ctx context.Context, owner, query string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.hydrate(ctx, owner)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return clone(items), nil
	}
	matches := make([]Item, 0)
	for _, item := range items {
		if matchesQuery(item, needle) {
			matches = append(matches, item)
		}
	}
	return matches, nil
}

func matchesQuery(item Item, needle string) bool {
	for _, field := range []string{
		item.InputText,
		item.Result.ProductIdentity.Category,
		item.Result.ExecutiveSummary,
	} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// hydrate loads the owner's list once. Missing or corrupt data yields an empty list.
// A failed read is not cached so the next call retries it. Callers hold s.mu.
func (s *service) hydrate(ctx context.Context, owner string) ([]Item, error) {
	if items, ok := s.owners[owner]; ok {
		return items, nil
	}
	raw, found, err := s.store.Get(ctx, storage.ScopedKey(owner, storage.KeyHistory))
	if err != nil {
		s.logger.Warn("history load failed", "owner", owner, "error", err)
		return nil, apperrors.Wrap(storage.CodeUnavailable, "history is temporarily unavailable", err)
	}
	items := []Item{}
	if found {
		var stored []Item
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			s.logger.Warn("stored history corrupt, starting empty", "owner", owner, "error", err)
		} else if stored != nil {
			items = stored
		}
	}
	s.owners[owner] = items
	return items, nil
}

// reload drops the cached list and reads the stored one again, so a write
// starts from what other processes sharing the backend have persisted.
func (s *service) reload(ctx context.Context, owner string) ([]Item, error) {
	delete(s.owners, owner)
	return s.hydrate(ctx, owner)
}

// commit replaces the cached list and persists it best-effort. Callers hold s.mu.
func (s *service) commit(ctx context.Context, owner string, items []Item) {
	s.owners[owner] = items
	payload, err := json.Marshal(items)
	if err != nil {
		s.logger.Error("history encode failed", "owner", owner, "error", err)
		return
	}
	if err := s.store.Set(ctx, storage.ScopedKey(owner, storage.KeyHistory), string(payload)); err != nil {
		s.logger.Warn("history not persisted", "owner", owner, "error", err)
	}
}

func clone(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
