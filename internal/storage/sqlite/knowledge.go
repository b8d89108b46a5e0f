package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// KnowledgeRepo stores and retrieves static domain facts. It implements
// the engine's Retriever contract with keyword matching; a fact matches
// when any query word appears in its topic or text.
type KnowledgeRepo struct {
	db *sql.DB
}

func NewKnowledgeRepo(db *sql.DB) *KnowledgeRepo {
	return &KnowledgeRepo{db: db}
}

func (r *KnowledgeRepo) SaveFact(ctx context.Context, topic, fact string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO knowledge (topic, fact) VALUES (?, ?)`,
		topic, fact,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fact: %w", err)
	}
	return nil
}

// Retrieve returns up to limit facts relevant to the query. No matches is
// a normal outcome and yields an empty slice.
func (r *KnowledgeRepo) Retrieve(ctx context.Context, query string, limit int) ([]string, error) {
	words := keywords(query)
	if len(words) == 0 {
		return nil, nil
	}

	var conditions []string
	var queryArgs []any
	for _, w := range words {
		conditions = append(conditions, `(topic LIKE ? ESCAPE '\' OR fact LIKE ? ESCAPE '\')`)
		pattern := "%" + escapeLike(w) + "%"
		queryArgs = append(queryArgs, pattern, pattern)
	}
	queryArgs = append(queryArgs, limit)

	rows, err := r.db.QueryContext(ctx,
		`SELECT fact FROM knowledge WHERE `+strings.Join(conditions, " OR ")+
			` ORDER BY created_at DESC LIMIT ?`,
		queryArgs...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge: %w", err)
	}
	defer rows.Close()

	var facts []string
	for rows.Next() {
		var fact string
		if err := rows.Scan(&fact); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		facts = append(facts, fact)
	}
	return facts, rows.Err()
}

// escapeLike neutralizes LIKE wildcards so a query word only ever
// matches literally.
func escapeLike(w string) string {
	w = strings.ReplaceAll(w, `\`, `\\`)
	w = strings.ReplaceAll(w, "%", `\%`)
	return strings.ReplaceAll(w, "_", `\_`)
}

// keywords keeps words long enough to be selective; short stop-words
// would match everything.
func keywords(query string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, ".,!?\"'()[]{}")
		if len(w) >= 4 {
			out = append(out, w)
		}
	}
	return out
}
