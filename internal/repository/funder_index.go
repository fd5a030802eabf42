// internal/repository/funder_index.go
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// IndexHit is one kNN result. Similarity is the cosine similarity recovered
// from the Elasticsearch score.
type IndexHit struct {
	FunderID   string
	Similarity float64
}

// FunderIndex keeps funder vectors in an Elasticsearch dense_vector index
// for approximate nearest-neighbour candidate search.
type FunderIndex struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewFunderIndex(client *elasticsearch.Client, index string, log logger.Logger) *FunderIndex {
	return &FunderIndex{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"index": index}),
	}
}

type funderDocument struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name"`
	FirmName            string             `json:"firm_name"`
	PreferredIndustries []models.Industry  `json:"preferred_industries"`
	PreferredStages     []models.Stage     `json:"preferred_stages"`
	GeographyFocus      []models.Geography `json:"geography_focus"`
	IsActive            bool               `json:"is_active"`
	Embedding           []float64          `json:"embedding"`
}

// EnsureIndex creates the index with a cosine dense_vector mapping if it
// does not exist yet.
func (x *FunderIndex) EnsureIndex(ctx context.Context, dims int) error {
	res, err := x.client.Indices.Exists([]string{x.index}, x.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", x.index, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":                   map[string]interface{}{"type": "keyword"},
				"name":                 map[string]interface{}{"type": "text"},
				"firm_name":            map[string]interface{}{"type": "text"},
				"preferred_industries": map[string]interface{}{"type": "keyword"},
				"preferred_stages":     map[string]interface{}{"type": "keyword"},
				"geography_focus":      map[string]interface{}{"type": "keyword"},
				"is_active":            map[string]interface{}{"type": "boolean"},
				"embedding": map[string]interface{}{
					"type":       "dense_vector",
					"dims":       dims,
					"index":      true,
					"similarity": "cosine",
				},
			},
		},
	}
	body, _ := json.Marshal(mapping)

	res, err = x.client.Indices.Create(x.index,
		x.client.Indices.Create.WithBody(bytes.NewReader(body)),
		x.client.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create index %s: %w", x.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", x.index, readError(res.Body))
	}

	x.logger.Info("funder index created", map[string]interface{}{"dims": dims})
	return nil
}

// IndexFunder upserts the funder document. Funders without an embedding
// are skipped.
func (x *FunderIndex) IndexFunder(ctx context.Context, f *models.Funder) error {
	if !f.HasEmbedding() {
		return nil
	}

	doc := funderDocument{
		ID:                  f.ID,
		Name:                f.Name,
		FirmName:            f.FirmName,
		PreferredIndustries: f.PreferredIndustries,
		PreferredStages:     f.PreferredStages,
		GeographyFocus:      f.GeographyFocus,
		IsActive:            f.IsActive,
		Embedding:           f.Embedding,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal funder document: %w", err)
	}

	res, err := x.client.Index(x.index, bytes.NewReader(body),
		x.client.Index.WithDocumentID(f.ID),
		x.client.Index.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index funder %s: %w", f.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index funder %s: %s", f.ID, readError(res.Body))
	}
	return nil
}

type knnResponse struct {
	Hits struct {
		Hits []struct {
			ID     string  `json:"_id"`
			Score  float64 `json:"_score"`
			Source struct {
				ID string `json:"id"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search returns up to k active funders nearest to vector, best first.
func (x *FunderIndex) Search(ctx context.Context, vector []float64, k int) ([]IndexHit, error) {
	numCandidates := k * 10
	if numCandidates < 100 {
		numCandidates = 100
	}

	query := map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          "embedding",
			"query_vector":   vector,
			"k":              k,
			"num_candidates": numCandidates,
			"filter":         map[string]interface{}{"term": map[string]interface{}{"is_active": true}},
		},
		"_source": []string{"id"},
		"size":    k,
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshal knn query: %w", err)
	}

	res, err := x.client.Search(
		x.client.Search.WithContext(ctx),
		x.client.Search.WithIndex(x.index),
		x.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("knn search: %s", readError(res.Body))
	}

	var parsed knnResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode knn response: %w", err)
	}

	hits := make([]IndexHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id := h.Source.ID
		if id == "" {
			id = h.ID
		}
		// cosine similarity is indexed as (1 + cos) / 2
		hits = append(hits, IndexHit{FunderID: id, Similarity: 2*h.Score - 1})
	}
	return hits, nil
}

func readError(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 2048))
	return string(b)
}
