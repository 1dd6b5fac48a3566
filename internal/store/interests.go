package store

import (
	"database/sql"
	"fmt"

	"curio/internal/logging"
)

// ListInterests returns interests filtered by status, or all active
// (curious/exploring/deepening) interests when status is empty, ordered by
// priority then recency.
func (s *Store) ListInterests(status string, limit int) ([]Interest, error) {
	timer := logging.StartTimer(logging.CategoryStore, "ListInterests")
	defer timer.Stop()

	if limit <= 0 {
		limit = 20
	}

	var rows *sql.Rows
	var err error
	if status != "" {
		rows, err = s.db.Query(`
			SELECT id, topic, why_interested, sparked_by, priority, status, tags,
			       insights_gained, remaining_questions, created_at, last_explored_at
			FROM learning_interests
			WHERE status = $1
			ORDER BY priority DESC, created_at DESC
			LIMIT $2`, status, limit)
	} else {
		rows, err = s.db.Query(`
			SELECT id, topic, why_interested, sparked_by, priority, status, tags,
			       insights_gained, remaining_questions, created_at, last_explored_at
			FROM learning_interests
			WHERE status IN ('curious', 'exploring', 'deepening')
			ORDER BY priority DESC, created_at DESC
			LIMIT $1`, limit)
	}
	if err != nil {
		logging.StoreError("Failed to list interests: %v", err)
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}
	defer rows.Close()

	var interests []Interest
	for rows.Next() {
		i, err := scanInterest(rows)
		if err != nil {
			logging.StoreError("Failed to scan interest row: %v", err)
			continue
		}
		interests = append(interests, i)
	}

	logging.StoreDebug("Listed %d interests (status=%q limit=%d)", len(interests), status, limit)
	return interests, rows.Err()
}

func scanInterest(rows *sql.Rows) (Interest, error) {
	var i Interest
	var sparkedBy sql.NullString
	var tags, insights, questions []byte
	var lastExplored sql.NullTime

	err := rows.Scan(&i.ID, &i.Topic, &i.WhyInterested, &sparkedBy, &i.Priority,
		&i.Status, &tags, &insights, &questions, &i.CreatedAt, &lastExplored)
	if err != nil {
		return Interest{}, err
	}

	i.SparkedBy = sparkedBy.String
	i.Tags = scanStringList(tags)
	i.InsightsGained = scanStringList(insights)
	i.RemainingQuestions = scanStringList(questions)
	if lastExplored.Valid {
		i.LastExploredAt = lastExplored.Time
	}
	return i, nil
}

// AddInterest records a new learning interest and returns its id.
func (s *Store) AddInterest(topic, whyInterested, sparkedBy string, priority int, tags []string) (int64, error) {
	if topic == "" {
		return 0, fmt.Errorf("interest topic is required")
	}
	if whyInterested == "" {
		return 0, fmt.Errorf("why_interested is required")
	}
	if priority <= 0 {
		priority = 5
	}

	var sparked interface{}
	if sparkedBy != "" {
		sparked = sparkedBy
	}

	var id int64
	err := s.db.QueryRow(`
		INSERT INTO learning_interests (topic, why_interested, sparked_by, priority, tags)
		VALUES ($1, $2, $3, $4, $5::jsonb)
		RETURNING id`,
		topic, whyInterested, sparked, priority, jsonList(tags)).Scan(&id)
	if err != nil {
		logging.StoreError("Failed to add interest %q: %v", topic, err)
		return 0, fmt.Errorf("failed to add interest: %w", err)
	}

	logging.Store("Added interest #%d: %s (priority=%d)", id, topic, priority)
	return id, nil
}

// AppendInterestInsights appends new insights to an interest and replaces its
// remaining questions when provided. Status escalates in the same statement:
// curious becomes exploring on the first append, and once the cumulative
// insight count exceeds the deepening threshold the interest becomes
// deepening. Status never regresses.
func (s *Store) AppendInterestInsights(interestID int64, insights, questions []string) error {
	timer := logging.StartTimer(logging.CategoryStore, "AppendInterestInsights")
	defer timer.Stop()

	var questionsArg interface{}
	if questions != nil {
		questionsArg = jsonList(questions)
	}

	_, err := s.db.Exec(`
		UPDATE learning_interests
		SET insights_gained = insights_gained || $1::jsonb,
		    remaining_questions = COALESCE($2::jsonb, remaining_questions),
		    last_explored_at = CURRENT_TIMESTAMP,
		    status = CASE
		        WHEN status = 'curious' THEN 'exploring'
		        WHEN jsonb_array_length(insights_gained) + $3 > $4 THEN 'deepening'
		        ELSE status
		    END
		WHERE id = $5`,
		jsonList(insights), questionsArg, len(insights), s.deepeningThreshold, interestID)
	if err != nil {
		logging.StoreError("Failed to append insights to interest #%d: %v", interestID, err)
		return fmt.Errorf("failed to update interest: %w", err)
	}

	logging.StoreDebug("Appended %d insights to interest #%d", len(insights), interestID)
	return nil
}
