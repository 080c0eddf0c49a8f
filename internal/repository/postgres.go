package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"assistant/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute) // Close idle connections sooner

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// SearchDocuments retrieves the topK most relevant FAQ documents.
// With an embedding it ranks by cosine distance; without one it falls
// back to full-text ranking over the document content.
func (r *PostgresRepository) SearchDocuments(ctx context.Context, embedding []float32, query string, topK int) ([]model.RetrievedDocument, error) {
	if topK <= 0 {
		topK = 5
	}

	var documents []model.RetrievedDocument
	var err error

	if len(embedding) > 0 {
		vec := pgvector.NewVector(embedding)
		vectorQuery := `
			SELECT
				id, content, metadata, embedding,
				1 - (embedding <=> $1) AS score,
				created_at, updated_at
			FROM faq_documents
			WHERE embedding IS NOT NULL
			ORDER BY embedding <=> $1
			LIMIT $2
		`
		err = r.db.SelectContext(ctx, &documents, vectorQuery, vec, topK)
		if err != nil {
			return nil, fmt.Errorf("failed to search documents by vector: %w", err)
		}
		if len(documents) > 0 {
			return documents, nil
		}
	}

	textQuery := `
		SELECT
			id, content, metadata, embedding,
			ts_rank(search_vector, plainto_tsquery('english', $1)) AS score,
			created_at, updated_at
		FROM faq_documents
		WHERE search_vector @@ plainto_tsquery('english', $1)
		ORDER BY score DESC
		LIMIT $2
	`
	err = r.db.SelectContext(ctx, &documents, textQuery, query, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents by text: %w", err)
	}
	return documents, nil
}

// GetCottageRates loads the full per-cottage nightly rate table
func (r *PostgresRepository) GetCottageRates(ctx context.Context) ([]model.CottageRate, error) {
	var rates []model.CottageRate
	query := `
		SELECT cottage_number, weekday_rate, weekend_rate, capacity, bedrooms
		FROM cottage_rates
		ORDER BY cottage_number
	`
	if err := r.db.SelectContext(ctx, &rates, query); err != nil {
		return nil, fmt.Errorf("failed to load cottage rates: %w", err)
	}
	return rates, nil
}

// UpdateEmbedding updates the embedding vector for a document
func (r *PostgresRepository) UpdateEmbedding(ctx context.Context, documentID int64, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	query := `UPDATE faq_documents SET embedding = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, vec, documentID)
	if err != nil {
		return fmt.Errorf("failed to update embedding: %w", err)
	}
	return nil
}

// BatchUpdateEmbeddings updates embeddings for multiple documents
func (r *PostgresRepository) BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	success := 0
	var errors []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errors
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE faq_documents SET embedding = $1, updated_at = NOW() WHERE id = $2`)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errors
	}
	defer stmt.Close()

	for _, item := range items {
		vec := pgvector.NewVector(item.Embedding)
		_, err := stmt.ExecContext(ctx, vec, item.DocumentID)
		if err != nil {
			errors = append(errors, fmt.Sprintf("document_id %d: %v", item.DocumentID, err))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errors = append(errors, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errors
	}

	return success, errors
}

// LogConversation records one chat turn for analytics
func (r *PostgresRepository) LogConversation(ctx context.Context, sessionID, query string, intent string, slots map[string]string, status string, tookMs int) error {
	logQuery := `
		INSERT INTO conversation_logs (session_id, query, intent, slots, status, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	slotMap := make(model.JSONMap, len(slots))
	for k, v := range slots {
		slotMap[k] = v
	}
	_, err := r.db.ExecContext(ctx, logQuery, sessionID, query, intent, slotMap, status, tookMs)
	if err != nil {
		return fmt.Errorf("failed to log conversation: %w", err)
	}
	return nil
}

// LogFeedback records user feedback on an answer
func (r *PostgresRepository) LogFeedback(ctx context.Context, sessionID string, messageID int64, action string) error {
	query := `
		INSERT INTO answer_feedback (session_id, message_id, action)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, sessionID, messageID, action)
	if err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	return nil
}
