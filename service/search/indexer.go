package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"

	inventoryEntity "jewelstock.GO/model/entity/inventory"
	purchaseEntity "jewelstock.GO/model/entity/purchase"
)

var (
	indexerInstance *LotIndexer
	indexerOnce     sync.Once
)

// GetIndexer returns the singleton LotIndexer.
func GetIndexer() *LotIndexer {
	indexerOnce.Do(func() {
		indexerInstance = NewLotIndexer()
	})
	return indexerInstance
}

// LotIndexer mirrors material lots into Elasticsearch for restock-planning
// lookups. Optional: without ELASTICSEARCH_HOST the client stays nil and
// indexing is a no-op.
type LotIndexer struct {
	client *elasticsearch.Client
	index  string
}

func NewLotIndexer() *LotIndexer {
	host := os.Getenv("ELASTICSEARCH_HOST")
	index := os.Getenv("ELASTICSEARCH_LOT_INDEX")
	if index == "" {
		index = "jewelstock_material_lot"
	}
	if host == "" {
		return &LotIndexer{index: index}
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{host},
	})
	if err != nil {
		return &LotIndexer{index: index}
	}
	return &LotIndexer{client: client, index: index}
}

// Enabled reports whether an Elasticsearch client is configured.
func (s *LotIndexer) Enabled() bool {
	return s.client != nil
}

// LotDoc is the indexed projection of a lot and its purchase.
type LotDoc struct {
	LotID         uint   `json:"lot_id"`
	PurchaseID    uint   `json:"purchase_id"`
	MaterialType  string `json:"material_type"`
	Quality       string `json:"quality,omitempty"`
	Specification string `json:"specification,omitempty"`
	Remaining     int64  `json:"remaining_quantity"`
	NeedsReview   bool   `json:"needs_review,omitempty"`
}

// IndexLot upserts a lot document. No-op when search is not configured.
func (s *LotIndexer) IndexLot(ctx context.Context, lot *inventoryEntity.MaterialLot, rec *purchaseEntity.PurchaseRecord) error {
	if s.client == nil {
		return nil
	}
	doc := LotDoc{
		LotID:      lot.LotID,
		PurchaseID: lot.PurchaseID,
		Remaining:  lot.RemainingQuantity,
	}
	if lot.NeedsReview {
		doc.NeedsReview = true
	}
	if rec != nil {
		doc.MaterialType = string(rec.MaterialType)
		doc.Quality = rec.Quality
		doc.Specification = rec.Specification
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := s.client.Index(s.index, bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(fmt.Sprintf("%d", doc.LotID)),
	)
	if err != nil {
		return fmt.Errorf("index lot %d: %w", doc.LotID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index lot %d: %s", doc.LotID, res.Status())
	}
	return nil
}

// SearchLots runs a full-text query over material type, quality and
// specification.
func (s *LotIndexer) SearchLots(ctx context.Context, query string, size, page int) ([]LotDoc, int64, error) {
	if s.client == nil {
		return nil, 0, fmt.Errorf("elasticsearch not configured")
	}
	if size <= 0 {
		size = 20
	}
	if page <= 0 {
		page = 1
	}

	body := map[string]interface{}{
		"from": (page - 1) * size,
		"size": size,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"material_type", "quality", "specification"},
			},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, 0, err
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(strings.NewReader(buf.String())),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search lots: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, 0, fmt.Errorf("search lots: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source LotDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, err
	}

	docs := make([]LotDoc, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		docs = append(docs, h.Source)
	}
	return docs, parsed.Hits.Total.Value, nil
}
