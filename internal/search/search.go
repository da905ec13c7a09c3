package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/technotes/server/internal/models"
)

const NotesIndex = "notes"

// Notes runs a fuzzy full-text query over note titles and bodies.
func Notes(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.Note, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^2", "text"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Note `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	notes := make([]models.Note, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		notes[i] = hit.Source
	}
	return r.Hits.Total.Value, notes, nil
}

// IndexNote upserts the note document keyed by its id.
func IndexNote(ctx context.Context, es *elasticsearch.Client, index string, n *models.Note) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("search: encode note: %w", err)
	}
	res, err := es.Index(
		index,
		strings.NewReader(string(data)),
		es.Index.WithDocumentID(n.ID),
		es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: index note: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("search: index note: %s", res.Status())
	}
	return nil
}

func DeleteNote(ctx context.Context, es *elasticsearch.Client, index, id string) error {
	res, err := es.Delete(index, id, es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: delete note: %w", err)
	}
	defer res.Body.Close()
	// 404 just means the note was never indexed.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("search: delete note: %s", res.Status())
	}
	return nil
}
