package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/normalizer"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/sniffer"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/repository"
)

// searchDocument is the indexed view of one record. Names are folded
// (no accents, upper case) before indexing.
type searchDocument struct {
	Name       string `json:"name"`
	WarName    string `json:"war_name"`
	Rank       string `json:"rank"`
	NationalID string `json:"national_id"`
	Precedence string `json:"precedence_code"`
	MilitaryID string `json:"military_id"`
}

// SearchIndex is an in-memory full-text index over the registry.
type SearchIndex struct {
	index bleve.Index
	mu    sync.RWMutex
}

// NewSearchIndex creates an empty in-memory index.
func NewSearchIndex() (*SearchIndex, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	return &SearchIndex{index: index}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = simple.Name

	keywordField := bleve.NewTextFieldMapping()
	keywordField.Analyzer = keyword.Name

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("name", textField)
	doc.AddFieldMappingsAt("war_name", textField)
	doc.AddFieldMappingsAt("rank", textField)
	doc.AddFieldMappingsAt("national_id", keywordField)
	doc.AddFieldMappingsAt("precedence_code", keywordField)
	doc.AddFieldMappingsAt("military_id", keywordField)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	m.DefaultAnalyzer = simple.Name
	return m
}

// Index adds records to the index, keyed by id.
func (si *SearchIndex) Index(records []repository.Record) error {
	si.mu.Lock()
	defer si.mu.Unlock()

	batch := si.index.NewBatch()
	for _, r := range records {
		doc := searchDocument{
			Name:       sniffer.NormalizeHeader(r.FullName),
			WarName:    sniffer.NormalizeHeader(r.WarName),
			Rank:       sniffer.NormalizeHeader(r.Rank),
			NationalID: r.NationalID,
			Precedence: r.PrecedenceCode,
			MilitaryID: r.MilitaryID,
		}
		if err := batch.Index(strconv.FormatInt(r.ID, 10), doc); err != nil {
			return fmt.Errorf("failed to index record %d: %w", r.ID, err)
		}
	}

	if err := si.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch index: %w", err)
	}
	return nil
}

// Search returns the ids of the best matches for text, best first. Names
// tolerate one typo per word; identifiers match exactly or by prefix.
func (si *SearchIndex) Search(text string, limit int) ([]int64, error) {
	si.mu.RLock()
	defer si.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	folded := sniffer.NormalizeHeader(text)
	queries := make([]query.Query, 0, 6)
	if folded != "" {
		for _, field := range []string{"name", "war_name", "rank"} {
			q := bleve.NewMatchQuery(folded)
			q.SetField(field)
			q.SetFuzziness(1)
			queries = append(queries, q)
		}
	}
	if digits := normalizer.DigitsOnly(normalizer.Text(text)); digits != "" {
		for _, field := range []string{"national_id", "precedence_code", "military_id"} {
			q := bleve.NewPrefixQuery(digits)
			q.SetField(field)
			queries = append(queries, q)
		}
	}
	if len(queries) == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(queries...))
	req.Size = limit

	res, err := si.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	ids := make([]int64, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Close closes the index
func (si *SearchIndex) Close() error {
	si.mu.Lock()
	defer si.mu.Unlock()

	if si.index != nil {
		return si.index.Close()
	}
	return nil
}

// Reindex rebuilds the search index from the store.
func (s *Service) Reindex(ctx context.Context) error {
	records, err := s.repo.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	idx, err := NewSearchIndex()
	if err != nil {
		return err
	}
	if err := idx.Index(records); err != nil {
		_ = idx.Close()
		return err
	}

	s.mu.Lock()
	old := s.index
	s.index = idx
	s.stale = false
	s.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	s.logger.Debug("search index rebuilt", "records", len(records))
	return nil
}

// Search finds records by name, war name, rank or identifier. The index
// is rebuilt when the registry changed since the last search. When the
// index finds nothing the name filter is tried instead.
func (s *Service) Search(ctx context.Context, text string, limit int) ([]repository.Record, error) {
	s.mu.Lock()
	stale := s.stale || s.index == nil
	s.mu.Unlock()

	if stale {
		if err := s.Reindex(ctx); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	idx := s.index
	s.mu.Unlock()

	ids, err := idx.Search(text, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		s.logger.Debug("search fell back to name filter", "query", text)
		out, err := s.FilterByName(ctx, text)
		if err != nil {
			return nil, err
		}
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return out, nil
	}

	out := make([]repository.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.repo.GetByID(ctx, id)
		if err != nil {
			s.logger.Warn("indexed record missing", "id", id, "error", err)
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

// Close releases the search index.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil
	}
	err := s.index.Close()
	s.index = nil
	return err
}
