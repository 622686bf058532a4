package main

import (
	"context"
	"fmt"
	"io"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
	"github.com/yanqian/kai-insight/internal/domain/history"
	"github.com/yanqian/kai-insight/internal/infra/config"
	"github.com/yanqian/kai-insight/internal/infra/kvstore"
	"github.com/yanqian/kai-insight/internal/infra/llm"
	"github.com/yanqian/kai-insight/pkg/logger"
	"github.com/yanqian/kai-insight/pkg/util"
)

// localOwner scopes every CLI record; the terminal has a single user.
const localOwner = "local"

type sessionOptions struct {
	dbPath   string
	logLevel string
	withLLM  bool
	images   bool
}

// session bundles the services one command needs. analysis is nil unless withLLM was set.
type session struct {
	history  history.Service
	analysis analysis.Service
	clock    util.Clock
	close    func() error
}

type opener func(ctx context.Context, opts sessionOptions, stderr io.Writer) (*session, error)

func openSession(ctx context.Context, opts sessionOptions, stderr io.Writer) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.NewWithWriter(stderr, opts.logLevel)

	store, err := kvstore.OpenSQLite(ctx, opts.dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	s := &session{
		history: history.NewService(history.Config{MaxItems: cfg.History.MaxItems}, store, log),
		close:   store.Close,
	}
	if !opts.withLLM {
		return s, nil
	}

	gen, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		store.Close()
		return nil, err
	}
	s.analysis = analysis.NewService(analysis.Config{
		Model:            cfg.LLM.Model,
		ImageModel:       cfg.LLM.ImageModel,
		Temperature:      cfg.LLM.Temperature,
		MinInputLen:      cfg.Analysis.MinInputLen,
		MaxInputLen:      cfg.Analysis.MaxInputLen,
		ImagesEnabled:    opts.images,
		ImageStyleSuffix: cfg.Analysis.ImageStyleSuffix,
		ImageAspectRatio: cfg.Analysis.ImageAspectRatio,
		Retry: analysis.RetryConfig{
			MaxRetries: cfg.Analysis.MaxRetries,
			BaseDelay:  cfg.Analysis.BaseDelay,
		},
	}, gen, gen, log)
	return s, nil
}
