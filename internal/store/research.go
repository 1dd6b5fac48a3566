package store

import (
	"database/sql"
	"fmt"

	"curio/internal/logging"
)

// ListPendingResearch returns unexpired pending requests ordered by priority
// rank (urgent < high < medium < everything else), then request time.
func (s *Store) ListPendingResearch(limit int) ([]ResearchRequest, error) {
	timer := logging.StartTimer(logging.CategoryStore, "ListPendingResearch")
	defer timer.Stop()

	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`
		SELECT id, topic, queries, why_researching, hoping_to_learn, priority,
		       status, interest_id, project_id, error_message, requested_at,
		       expires_at, started_at, completed_at
		FROM research_requests
		WHERE status = 'pending' AND expires_at > CURRENT_TIMESTAMP
		ORDER BY
			CASE priority
				WHEN 'urgent' THEN 1
				WHEN 'high' THEN 2
				WHEN 'medium' THEN 3
				ELSE 4
			END,
			requested_at ASC
		LIMIT $1`, limit)
	if err != nil {
		logging.StoreError("Failed to list pending research: %v", err)
		return nil, fmt.Errorf("failed to list pending research: %w", err)
	}
	defer rows.Close()

	var requests []ResearchRequest
	for rows.Next() {
		r, err := scanResearchRequest(rows)
		if err != nil {
			logging.StoreError("Failed to scan research request: %v", err)
			continue
		}
		requests = append(requests, r)
	}

	logging.StoreDebug("Listed %d pending research requests", len(requests))
	return requests, rows.Err()
}

func scanResearchRequest(rows *sql.Rows) (ResearchRequest, error) {
	var r ResearchRequest
	var queries []byte
	var why, hoping, errMsg sql.NullString
	var interestID, projectID sql.NullInt64
	var started, completed sql.NullTime

	err := rows.Scan(&r.ID, &r.Topic, &queries, &why, &hoping, &r.Priority,
		&r.Status, &interestID, &projectID, &errMsg, &r.RequestedAt,
		&r.ExpiresAt, &started, &completed)
	if err != nil {
		return ResearchRequest{}, err
	}

	r.Queries = scanStringList(queries)
	r.WhyResearching = why.String
	r.HopingToLearn = hoping.String
	r.ErrorMessage = errMsg.String
	r.InterestID = interestID.Int64
	r.ProjectID = projectID.Int64
	if started.Valid {
		r.StartedAt = &started.Time
	}
	if completed.Valid {
		r.CompletedAt = &completed.Time
	}
	return r, nil
}

// CreateResearchRequest queues a research request and returns its id.
// interestID and projectID of zero mean no link.
func (s *Store) CreateResearchRequest(topic string, queries []string, why, hopingToLearn, priority string, interestID, projectID int64) (int64, error) {
	if topic == "" {
		return 0, fmt.Errorf("research topic is required")
	}
	if priority == "" {
		priority = PriorityMedium
	}

	var whyArg, hopingArg, interestArg, projectArg interface{}
	if why != "" {
		whyArg = why
	}
	if hopingToLearn != "" {
		hopingArg = hopingToLearn
	}
	if interestID != 0 {
		interestArg = interestID
	}
	if projectID != 0 {
		projectArg = projectID
	}

	var id int64
	err := s.db.QueryRow(`
		INSERT INTO research_requests (topic, queries, why_researching, hoping_to_learn, priority, interest_id, project_id)
		VALUES ($1, $2::jsonb, $3, $4, $5, $6, $7)
		RETURNING id`,
		topic, jsonList(queries), whyArg, hopingArg, priority, interestArg, projectArg).Scan(&id)
	if err != nil {
		logging.StoreError("Failed to queue research %q: %v", topic, err)
		return 0, fmt.Errorf("failed to queue research: %w", err)
	}

	logging.Store("Queued research #%d: %s (%d queries, priority=%s)", id, topic, len(queries), priority)
	return id, nil
}

// UpdateResearchStatus advances a request's status. in_progress stamps
// started_at, completed/failed stamp completed_at, and failed records the
// error message.
func (s *Store) UpdateResearchStatus(requestID int64, status, errorMessage string) error {
	timer := logging.StartTimer(logging.CategoryStore, "UpdateResearchStatus")
	defer timer.Stop()

	var err error
	switch status {
	case ResearchStatusInProgress:
		_, err = s.db.Exec(`
			UPDATE research_requests
			SET status = $1, started_at = CURRENT_TIMESTAMP
			WHERE id = $2`, status, requestID)
	case ResearchStatusCompleted:
		_, err = s.db.Exec(`
			UPDATE research_requests
			SET status = $1, completed_at = CURRENT_TIMESTAMP
			WHERE id = $2`, status, requestID)
	case ResearchStatusFailed:
		_, err = s.db.Exec(`
			UPDATE research_requests
			SET status = $1, error_message = $2, completed_at = CURRENT_TIMESTAMP
			WHERE id = $3`, status, errorMessage, requestID)
	default:
		_, err = s.db.Exec(`UPDATE research_requests SET status = $1 WHERE id = $2`, status, requestID)
	}
	if err != nil {
		logging.StoreError("Failed to update research #%d to %s: %v", requestID, status, err)
		return fmt.Errorf("failed to update research status: %w", err)
	}

	logging.StoreDebug("Research #%d -> %s", requestID, status)
	return nil
}

// ListResearchResults returns the stored results for one request in the
// order they were collected.
func (s *Store) ListResearchResults(requestID int64) ([]ResearchResult, error) {
	timer := logging.StartTimer(logging.CategoryStore, "ListResearchResults")
	defer timer.Stop()

	rows, err := s.db.Query(`
		SELECT id, request_id, query_used, source_url, source_title, snippet,
		       full_content, content_type, relevance_score
		FROM research_results
		WHERE request_id = $1
		ORDER BY id ASC`, requestID)
	if err != nil {
		logging.StoreError("Failed to list results for request #%d: %v", requestID, err)
		return nil, fmt.Errorf("failed to list research results: %w", err)
	}
	defer rows.Close()

	var results []ResearchResult
	for rows.Next() {
		var r ResearchResult
		var content sql.NullString
		var relevance sql.NullFloat64

		err := rows.Scan(&r.ID, &r.RequestID, &r.QueryUsed, &r.SourceURL,
			&r.SourceTitle, &r.Snippet, &content, &r.ContentType, &relevance)
		if err != nil {
			logging.StoreError("Failed to scan result row: %v", err)
			continue
		}
		if content.Valid {
			r.FullContent = &content.String
		}
		if relevance.Valid {
			r.Relevance = &relevance.Float64
		}
		results = append(results, r)
	}

	logging.StoreDebug("Listed %d results for request #%d", len(results), requestID)
	return results, rows.Err()
}

// SaveResearchResult appends one fetched result row to a request. A nil
// content means the page could not be fetched; the row is kept with its
// snippet anyway.
func (s *Store) SaveResearchResult(requestID int64, query, url, title, snippet string, content *string, contentType string, relevance *float64) error {
	if requestID == 0 {
		return fmt.Errorf("request id is required")
	}
	if url == "" {
		return fmt.Errorf("source url is required")
	}
	if contentType == "" {
		contentType = "article"
	}

	_, err := s.db.Exec(`
		INSERT INTO research_results
			(request_id, query_used, source_url, source_title, snippet, full_content, content_type, relevance_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		requestID, query, url, title, snippet, content, contentType, relevance)
	if err != nil {
		logging.StoreError("Failed to save research result for #%d: %v", requestID, err)
		return fmt.Errorf("failed to save research result: %w", err)
	}

	logging.StoreDebug("Saved result for request #%d: %s", requestID, url)
	return nil
}
