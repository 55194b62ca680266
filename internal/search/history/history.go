// internal/search/history/history.go

// Package history implements the search log hook the orchestrator calls
// after every successful search.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"people-search/internal/common/database"
	"people-search/internal/common/logger"
	"people-search/internal/models"
)

// Entry is what gets logged for one search.
type Entry struct {
	SearchID   string
	SearchType models.SearchType
	Strategy   string
	Query      models.QueryFields
	Result     *models.ProviderResult
	CreatedAt  time.Time
}

// SearchLogger receives every successful search. Implementations must be
// safe for concurrent use.
type SearchLogger interface {
	LogSearch(ctx context.Context, entry Entry) error
}

// Record is a stored history row.
type Record struct {
	SearchID     string          `json:"searchId"`
	SearchType   string          `json:"searchType"`
	Strategy     string          `json:"strategy"`
	SearchQuery  json.RawMessage `json:"searchQuery"`
	SourcesUsed  []string        `json:"sourcesUsed"`
	TotalResults int             `json:"totalResults"`
	CreatedAt    time.Time       `json:"createdAt"`
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS search_history (
	id             BIGSERIAL PRIMARY KEY,
	search_id      TEXT        NOT NULL UNIQUE,
	search_type    TEXT        NOT NULL,
	strategy       TEXT        NOT NULL,
	search_query   JSONB       NOT NULL,
	search_results JSONB       NOT NULL,
	sources_used   TEXT[]      NOT NULL DEFAULT '{}',
	total_results  INTEGER     NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const insertSQL = `INSERT INTO search_history
	(search_id, search_type, strategy, search_query, search_results, sources_used, total_results, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const recentSQL = `SELECT search_id, search_type, strategy, search_query, sources_used, total_results, created_at
	FROM search_history ORDER BY created_at DESC LIMIT $1`

// PostgresLogger persists entries in the search_history table.
type PostgresLogger struct {
	client *database.PostgresClient
	log    logger.Logger
}

func NewPostgresLogger(client *database.PostgresClient, log logger.Logger) *PostgresLogger {
	return &PostgresLogger{
		client: client,
		log:    log.WithFields(map[string]interface{}{"component": "search-history"}),
	}
}

// EnsureSchema creates the table when missing.
func (l *PostgresLogger) EnsureSchema(ctx context.Context) error {
	if _, err := l.client.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create search_history: %w", err)
	}
	return nil
}

func (l *PostgresLogger) LogSearch(ctx context.Context, e Entry) error {
	query, err := json.Marshal(e.Query)
	if err != nil {
		return fmt.Errorf("encode search query: %w", err)
	}
	results, err := json.Marshal(e.Result)
	if err != nil {
		return fmt.Errorf("encode search results: %w", err)
	}

	sources := sourcesOf(e.Result)
	total := 0
	if e.Result != nil {
		total = e.Result.Metadata.TotalResults
	}

	_, err = l.client.Exec(ctx, insertSQL,
		e.SearchID,
		string(e.SearchType),
		e.Strategy,
		query,
		results,
		pq.Array(sources),
		total,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert search_history: %w", err)
	}

	l.log.Debug("search logged", map[string]interface{}{
		"searchId":   e.SearchID,
		"searchType": e.SearchType,
	})
	return nil
}

// Recent returns the newest limit entries.
func (l *PostgresLogger) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := l.client.DB.QueryContext(ctx, recentSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query search_history: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			r     Record
			query []byte
		)
		if err := rows.Scan(&r.SearchID, &r.SearchType, &r.Strategy, &query,
			pq.Array(&r.SourcesUsed), &r.TotalResults, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan search_history: %w", err)
		}
		r.SearchQuery = json.RawMessage(query)
		records = append(records, r)
	}
	return records, rows.Err()
}

// sourcesOf lists the fused sources, or the single source.
func sourcesOf(r *models.ProviderResult) []string {
	if r == nil {
		return []string{}
	}
	if len(r.Metadata.SourcesUsed) > 0 {
		return r.Metadata.SourcesUsed
	}
	return []string{r.Source}
}

// LogOnly writes entries to the structured log. Used when history
// persistence is disabled.
type LogOnly struct {
	log logger.Logger
}

func NewLogOnly(log logger.Logger) *LogOnly {
	return &LogOnly{log: log.WithFields(map[string]interface{}{"component": "search-history"})}
}

func (l *LogOnly) LogSearch(_ context.Context, e Entry) error {
	total := 0
	if e.Result != nil {
		total = e.Result.Metadata.TotalResults
	}
	l.log.Info("search completed", map[string]interface{}{
		"searchId":     e.SearchID,
		"searchType":   e.SearchType,
		"strategy":     e.Strategy,
		"sources":      sourcesOf(e.Result),
		"totalResults": total,
	})
	return nil
}
