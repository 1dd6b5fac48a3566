package store

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"

	"curio/internal/logging"
)

// StartSession opens a learning session row and returns its id.
func (s *Store) StartSession(sessionType string) (int64, error) {
	if sessionType == "" {
		sessionType = "autonomous"
	}

	var id int64
	err := s.db.QueryRow(`
		INSERT INTO learning_sessions (session_type)
		VALUES ($1)
		RETURNING id`, sessionType).Scan(&id)
	if err != nil {
		logging.StoreError("Failed to start session: %v", err)
		return 0, fmt.Errorf("failed to start session: %w", err)
	}

	logging.Session("Started learning session #%d (type=%s)", id, sessionType)
	return id, nil
}

// CompleteSession finalizes a session row with its outcome and aggregated
// counts. Duration is derived from started_at inside the statement.
func (s *Store) CompleteSession(sessionID int64, topic, reason, status string, insightsCount, questionsCount, newInterests int, errorMessage string) error {
	timer := logging.StartTimer(logging.CategoryStore, "CompleteSession")
	defer timer.Stop()

	var errArg interface{}
	if errorMessage != "" {
		errArg = errorMessage
	}

	_, err := s.db.Exec(`
		UPDATE learning_sessions
		SET topic_chosen = $1,
		    choice_reason = $2,
		    status = $3,
		    insights_count = $4,
		    new_questions_count = $5,
		    new_interests_sparked = $6,
		    error_message = $7,
		    completed_at = CURRENT_TIMESTAMP,
		    duration_seconds = EXTRACT(EPOCH FROM (CURRENT_TIMESTAMP - started_at))::INTEGER
		WHERE id = $8`,
		topic, reason, status, insightsCount, questionsCount, newInterests, errArg, sessionID)
	if err != nil {
		logging.StoreError("Failed to complete session #%d: %v", sessionID, err)
		return fmt.Errorf("failed to complete session: %w", err)
	}

	logging.Session("Completed session #%d: status=%s topic=%q insights=%d", sessionID, status, topic, insightsCount)
	return nil
}

// ListRecentSessions returns the most recent learning sessions.
func (s *Store) ListRecentSessions(limit int) ([]Session, error) {
	timer := logging.StartTimer(logging.CategoryStore, "ListRecentSessions")
	defer timer.Stop()

	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`
		SELECT id, session_type, topic_chosen, choice_reason, status,
		       insights_count, new_questions_count, new_interests_sparked,
		       error_message, started_at, completed_at, duration_seconds
		FROM learning_sessions
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		logging.StoreError("Failed to list sessions: %v", err)
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var topic, reason, errMsg sql.NullString
		var completed sql.NullTime
		var duration sql.NullInt64

		err := rows.Scan(&sess.ID, &sess.SessionType, &topic, &reason, &sess.Status,
			&sess.InsightsCount, &sess.NewQuestionsCount, &sess.NewInterestsSparked,
			&errMsg, &sess.StartedAt, &completed, &duration)
		if err != nil {
			logging.StoreError("Failed to scan session row: %v", err)
			continue
		}

		sess.TopicChosen = topic.String
		sess.ChoiceReason = reason.String
		sess.ErrorMessage = errMsg.String
		if completed.Valid {
			sess.CompletedAt = &completed.Time
		}
		sess.DurationSeconds = int(duration.Int64)
		sessions = append(sessions, sess)
	}

	logging.StoreDebug("Listed %d sessions", len(sessions))
	return sessions, rows.Err()
}

// RunLock is a held advisory lock preventing overlapping learning runs.
// Release must be called when the run finishes.
type RunLock struct {
	conn *sql.Conn
	key  int64
}

// Release unlocks and returns the connection to the pool.
func (l *RunLock) Release() {
	if l.conn == nil {
		return
	}
	_, err := l.conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, l.key)
	if err != nil {
		logging.StoreError("Failed to release run lock: %v", err)
	}
	l.conn.Close()
	l.conn = nil
}

// TryAcquireRunLock takes a session-scoped advisory lock keyed by session
// type. Returns nil without error when another invocation already holds the
// lock; overlapping cron triggers should skip rather than race on the same
// interest and request rows.
func (s *Store) TryAcquireRunLock(ctx context.Context, sessionType string) (*RunLock, error) {
	key := runLockKey(sessionType)

	// The lock is connection-scoped, so it must be taken and released on a
	// single pinned connection rather than through the pool.
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	var locked bool
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, key).Scan(&locked); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to take run lock: %w", err)
	}
	if !locked {
		conn.Close()
		logging.Session("Run lock for %q already held; skipping", sessionType)
		return nil, nil
	}

	logging.SessionDebug("Acquired run lock for %q (key=%d)", sessionType, key)
	return &RunLock{conn: conn, key: key}, nil
}

// runLockKey maps a session type to a stable advisory lock key.
func runLockKey(sessionType string) int64 {
	h := fnv.New64a()
	h.Write([]byte("curio:learning:" + sessionType))
	return int64(h.Sum64())
}
