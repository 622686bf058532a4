package preferences

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/yanqian/kai-insight/internal/domain/storage"
	apperrors "github.com/yanqian/kai-insight/pkg/errors"
	"github.com/yanqian/kai-insight/pkg/util"
)

const CodeInvalidPreferences = "invalid_preferences"

// Service stores theme, preferences and bookmarks per owner.
type Service interface {
	Get(ctx context.Context, owner string) (Preferences, error)
	Update(ctx context.Context, owner string, patch Patch) (Preferences, error)
	Theme(ctx context.Context, owner string) (Theme, error)
	SetTheme(ctx context.Context, owner string, theme Theme) error
	ToggleTheme(ctx context.Context, owner string) (Theme, error)
	Bookmarks(ctx context.Context, owner string) ([]Bookmark, error)
	AddBookmark(ctx context.Context, owner, historyID, note string) (Bookmark, error)
	RemoveBookmark(ctx context.Context, owner, historyID string) error
	ClearBookmarks(ctx context.Context, owner string) error
}

type service struct {
	store  storage.KeyValue
	logger *slog.Logger
	clock  util.Clock
	mu     sync.Mutex
}

// NewService builds the preferences service.
func NewService(store storage.KeyValue, logger *slog.Logger) Service {
	return &service{store: store, logger: logger.With("component", "preferences.service")}
}

func (s *service) Get(ctx context.Context, owner string) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadPreferences(ctx, owner)
}

func (s *service) Update(ctx context.Context, owner string, patch Patch) (Preferences, error) {
	if err := validatePatch(patch); err != nil {
		return Preferences{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.loadPreferences(ctx, owner)
	if err != nil {
		return Preferences{}, err
	}
	if patch.Theme != nil {
		prefs.Theme = *patch.Theme
	}
	if patch.Notifications != nil {
		prefs.Notifications = *patch.Notifications
	}
	if patch.Language != nil {
		prefs.Language = strings.TrimSpace(*patch.Language)
	}
	if patch.DefaultAnalysisMode != nil {
		prefs.DefaultAnalysisMode = *patch.DefaultAnalysisMode
	}
	s.save(ctx, owner, storage.KeyPreferences, prefs)
	if patch.Theme != nil {
		s.save(ctx, owner, storage.KeyTheme, prefs.Theme)
	}
	return prefs, nil
}

func (s *service) Theme(ctx context.Context, owner string) (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadTheme(ctx, owner)
}

func (s *service) SetTheme(ctx context.Context, owner string, theme Theme) error {
	if !theme.Valid() {
		return apperrors.Wrap(CodeInvalidPreferences, fmt.Sprintf("unknown theme %q", theme), nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeTheme(ctx, owner, theme)
}

func (s *service) ToggleTheme(ctx context.Context, owner string) (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.loadTheme(ctx, owner)
	if err != nil {
		return "", err
	}
	next := current.Next()
	if err := s.storeTheme(ctx, owner, next); err != nil {
		return "", err
	}
	return next, nil
}

func (s *service) Bookmarks(ctx context.Context, owner string) ([]Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadBookmarks(ctx, owner)
}

func (s *service) AddBookmark(ctx context.Context, owner, historyID, note string) (Bookmark, error) {
	historyID = strings.TrimSpace(historyID)
	if historyID == "" {
		return Bookmark{}, apperrors.Wrap(apperrors.CodeInvalidInput, "history id is required", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	marks, err := s.loadBookmarks(ctx, owner)
	if err != nil {
		return Bookmark{}, err
	}
	for _, m := range marks {
		if m.HistoryID == historyID {
			return m, nil
		}
	}
	mark := Bookmark{HistoryID: historyID, CreatedAt: s.clock.Now().UnixMilli(), Note: strings.TrimSpace(note)}
	s.save(ctx, owner, storage.KeyBookmarks, append([]Bookmark{mark}, marks...))
	return mark, nil
}

func (s *service) RemoveBookmark(ctx context.Context, owner, historyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	marks, err := s.loadBookmarks(ctx, owner)
	if err != nil {
		return err
	}
	kept := marks[:0]
	for _, m := range marks {
		if m.HistoryID != historyID {
			kept = append(kept, m)
		}
	}
	if len(kept) != len(marks) {
		s.save(ctx, owner, storage.KeyBookmarks, kept)
	}
	return nil
}

// ClearBookmarks drops every bookmark the owner holds.
func (s *service) ClearBookmarks(ctx context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, storage.ScopedKey(owner, storage.KeyBookmarks)); err != nil {
		s.logger.Warn("bookmark clear not persisted", "owner", owner, "error", err)
	}
	return nil
}

// storeTheme writes the theme key and keeps the preferences record in step.
// Nothing is written when the preferences record cannot be read.
func (s *service) storeTheme(ctx context.Context, owner string, theme Theme) error {
	prefs, err := s.loadPreferences(ctx, owner)
	if err != nil {
		return err
	}
	prefs.Theme = theme
	s.save(ctx, owner, storage.KeyTheme, theme)
	s.save(ctx, owner, storage.KeyPreferences, prefs)
	return nil
}

func (s *service) loadPreferences(ctx context.Context, owner string) (Preferences, error) {
	prefs := Defaults()
	ok, err := s.load(ctx, owner, storage.KeyPreferences, &prefs)
	if err != nil {
		return Preferences{}, err
	}
	if !ok {
		return Defaults(), nil
	}
	if !prefs.Theme.Valid() {
		prefs.Theme = ThemeSystem
	}
	if !prefs.DefaultAnalysisMode.Valid() {
		prefs.DefaultAnalysisMode = ModeText
	}
	if prefs.Language == "" {
		prefs.Language = "en"
	}
	return prefs, nil
}

func (s *service) loadTheme(ctx context.Context, owner string) (Theme, error) {
	var theme Theme
	ok, err := s.load(ctx, owner, storage.KeyTheme, &theme)
	if err != nil {
		return "", err
	}
	if ok && theme.Valid() {
		return theme, nil
	}
	prefs, err := s.loadPreferences(ctx, owner)
	if err != nil {
		return "", err
	}
	return prefs.Theme, nil
}

func (s *service) loadBookmarks(ctx context.Context, owner string) ([]Bookmark, error) {
	var marks []Bookmark
	ok, err := s.load(ctx, owner, storage.KeyBookmarks, &marks)
	if err != nil {
		return nil, err
	}
	if !ok || marks == nil {
		return []Bookmark{}, nil
	}
	return marks, nil
}

// load decodes a stored document into dst and reports whether it was usable.
// Absent or corrupt data reports false; only a failed read returns an error.
func (s *service) load(ctx context.Context, owner, key string, dst any) (bool, error) {
	raw, found, err := s.store.Get(ctx, storage.ScopedKey(owner, key))
	if err != nil {
		s.logger.Warn("preference load failed", "owner", owner, "key", key, "error", err)
		return false, apperrors.Wrap(storage.CodeUnavailable, "preferences are temporarily unavailable", err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn("stored preference corrupt", "owner", owner, "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (s *service) save(ctx context.Context, owner, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("preference encode failed", "key", key, "error", err)
		return
	}
	if err := s.store.Set(ctx, storage.ScopedKey(owner, key), string(payload)); err != nil {
		s.logger.Warn("preference not persisted", "owner", owner, "key", key, "error", err)
	}
}

func validatePatch(p Patch) error {
	switch {
	case p.Theme != nil && !p.Theme.Valid():
		return apperrors.Wrap(CodeInvalidPreferences, fmt.Sprintf("unknown theme %q", *p.Theme), nil)
	case p.DefaultAnalysisMode != nil && !p.DefaultAnalysisMode.Valid():
		return apperrors.Wrap(CodeInvalidPreferences, fmt.Sprintf("unknown analysis mode %q", *p.DefaultAnalysisMode), nil)
	case p.Language != nil && strings.TrimSpace(*p.Language) == "":
		return apperrors.Wrap(CodeInvalidPreferences, "language cannot be empty", nil)
	}
	return nil
}
