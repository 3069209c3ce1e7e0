// Package intel asks the model to fill the checklist for a company and
// recovers the JSON it answers with.
package intel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/intelsheet/internal/cleanjson"
	"github.com/dgallion1/intelsheet/internal/llm"
	"github.com/dgallion1/intelsheet/internal/schema"
	"github.com/iancoleman/orderedmap"
)

// Service chains schema -> prompt -> model -> JSON recovery.
type Service struct {
	schemaPath string
	model      llm.Completer
	log        *slog.Logger
}

func NewService(schemaPath string, model llm.Completer, log *slog.Logger) *Service {
	return &Service{schemaPath: schemaPath, model: model, log: log}
}

// Model returns the underlying completer.
func (s *Service) Model() llm.Completer {
	return s.model
}

// FetchRaw returns the model's unprocessed answer for company. The schema
// is re-read on every call so edits take effect without a restart.
func (s *Service) FetchRaw(ctx context.Context, company string) (string, error) {
	company, err := NormalizeCompany(company)
	if err != nil {
		return "", err
	}
	sch, err := schema.Load(s.schemaPath)
	if err != nil {
		return "", err
	}

	prompt := BuildPrompt(company, sch.Names())
	s.log.Info("fetching intel",
		"company", company,
		"fields", len(sch.Fields),
		"prompt_tokens", EstimateTokens(prompt),
		"model", s.model.Model(),
	)

	raw, err := s.model.Complete(ctx, SystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("model call for %q: %w", company, err)
	}
	return raw, nil
}

// Fetch returns the recovered JSON document for company.
func (s *Service) Fetch(ctx context.Context, company string) (*orderedmap.OrderedMap, error) {
	raw, err := s.FetchRaw(ctx, company)
	if err != nil {
		return nil, err
	}
	doc, err := cleanjson.Parse(raw)
	if err != nil {
		s.log.Warn("unrecoverable model output", "company", company, "error", err, "raw_chars", len(raw))
		return nil, fmt.Errorf("recover json for %q: %w", company, err)
	}
	return doc, nil
}

// Pair fetches two companies in turn.
func (s *Service) Pair(ctx context.Context, company1, company2 string) (*orderedmap.OrderedMap, *orderedmap.OrderedMap, error) {
	doc1, err := s.Fetch(ctx, company1)
	if err != nil {
		return nil, nil, err
	}
	doc2, err := s.Fetch(ctx, company2)
	if err != nil {
		return nil, nil, err
	}
	return doc1, doc2, nil
}
