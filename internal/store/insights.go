package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"curio/internal/logging"
)

// RecordInsight stores a synthesized takeaway and returns its id. requestID
// and interestID of zero mean no link.
func (s *Store) RecordInsight(topic, summary string, insights, questions []string, confidence string, sources []SourceRef, requestID, interestID int64) (int64, error) {
	if topic == "" {
		return 0, fmt.Errorf("insight topic is required")
	}
	if confidence == "" {
		confidence = "medium"
	}
	if sources == nil {
		sources = []SourceRef{}
	}

	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal sources: %w", err)
	}

	var requestArg, interestArg interface{}
	if requestID != 0 {
		requestArg = requestID
	}
	if interestID != 0 {
		interestArg = interestID
	}

	var id int64
	err = s.db.QueryRow(`
		INSERT INTO learning_insights (topic, summary, insights, questions, confidence, sources, request_id, interest_id)
		VALUES ($1, $2, $3::jsonb, $4::jsonb, $5, $6::jsonb, $7, $8)
		RETURNING id`,
		topic, summary, jsonList(insights), jsonList(questions), confidence,
		string(sourcesJSON), requestArg, interestArg).Scan(&id)
	if err != nil {
		logging.StoreError("Failed to record insight for %q: %v", topic, err)
		return 0, fmt.Errorf("failed to record insight: %w", err)
	}

	logging.Store("Recorded insight #%d: %s (%d insights, confidence=%s)", id, topic, len(insights), confidence)
	return id, nil
}

// ListRecentInsights returns the most recently recorded insights.
func (s *Store) ListRecentInsights(limit int) ([]Insight, error) {
	timer := logging.StartTimer(logging.CategoryStore, "ListRecentInsights")
	defer timer.Stop()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, topic, summary, insights, questions, confidence, sources,
		       request_id, interest_id, created_at
		FROM learning_insights
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		logging.StoreError("Failed to list insights: %v", err)
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	defer rows.Close()

	var insights []Insight
	for rows.Next() {
		var i Insight
		var insightsRaw, questionsRaw, sourcesRaw []byte
		var requestID, interestID sql.NullInt64

		err := rows.Scan(&i.ID, &i.Topic, &i.Summary, &insightsRaw, &questionsRaw,
			&i.Confidence, &sourcesRaw, &requestID, &interestID, &i.CreatedAt)
		if err != nil {
			logging.StoreError("Failed to scan insight row: %v", err)
			continue
		}

		i.Insights = scanStringList(insightsRaw)
		i.Questions = scanStringList(questionsRaw)
		i.RequestID = requestID.Int64
		i.InterestID = interestID.Int64
		if len(sourcesRaw) > 0 {
			_ = json.Unmarshal(sourcesRaw, &i.Sources)
		}
		insights = append(insights, i)
	}

	logging.StoreDebug("Listed %d recent insights", len(insights))
	return insights, rows.Err()
}
