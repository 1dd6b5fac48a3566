package store

import (
	"curio/internal/logging"
)

// schema creates the learning tables when they do not exist yet. The
// user_context, projects, and secrets tables are owned by the surrounding
// memory plugin; they are created here only so a standalone deployment
// works, and existing installations are left untouched.
const schema = `
CREATE TABLE IF NOT EXISTS learning_interests (
	id BIGSERIAL PRIMARY KEY,
	topic TEXT NOT NULL,
	why_interested TEXT NOT NULL,
	sparked_by TEXT,
	priority INTEGER NOT NULL DEFAULT 5,
	status TEXT NOT NULL DEFAULT 'curious',
	tags JSONB NOT NULL DEFAULT '[]',
	insights_gained JSONB NOT NULL DEFAULT '[]',
	remaining_questions JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_explored_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_interests_status ON learning_interests(status);

CREATE TABLE IF NOT EXISTS research_requests (
	id BIGSERIAL PRIMARY KEY,
	topic TEXT NOT NULL,
	queries JSONB NOT NULL DEFAULT '[]',
	why_researching TEXT,
	hoping_to_learn TEXT,
	priority TEXT NOT NULL DEFAULT 'medium',
	status TEXT NOT NULL DEFAULT 'pending',
	interest_id BIGINT REFERENCES learning_interests(id),
	project_id BIGINT,
	error_message TEXT,
	requested_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	expires_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP + INTERVAL '7 days',
	started_at TIMESTAMPTZ,
	completed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_research_status ON research_requests(status);

CREATE TABLE IF NOT EXISTS research_results (
	id BIGSERIAL PRIMARY KEY,
	request_id BIGINT NOT NULL REFERENCES research_requests(id),
	query_used TEXT NOT NULL,
	source_url TEXT NOT NULL,
	source_title TEXT NOT NULL DEFAULT '',
	snippet TEXT NOT NULL DEFAULT '',
	full_content TEXT,
	content_type TEXT NOT NULL DEFAULT 'article',
	relevance_score REAL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_results_request ON research_results(request_id);

CREATE TABLE IF NOT EXISTS learning_insights (
	id BIGSERIAL PRIMARY KEY,
	topic TEXT NOT NULL,
	summary TEXT NOT NULL,
	insights JSONB NOT NULL DEFAULT '[]',
	questions JSONB NOT NULL DEFAULT '[]',
	confidence TEXT NOT NULL DEFAULT 'medium',
	sources JSONB NOT NULL DEFAULT '[]',
	request_id BIGINT REFERENCES research_requests(id),
	interest_id BIGINT REFERENCES learning_interests(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS learning_sessions (
	id BIGSERIAL PRIMARY KEY,
	session_type TEXT NOT NULL DEFAULT 'autonomous',
	topic_chosen TEXT,
	choice_reason TEXT,
	status TEXT NOT NULL DEFAULT 'in_progress',
	insights_count INTEGER NOT NULL DEFAULT 0,
	new_questions_count INTEGER NOT NULL DEFAULT 0,
	new_interests_sparked INTEGER NOT NULL DEFAULT 0,
	error_message TEXT,
	started_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	completed_at TIMESTAMPTZ,
	duration_seconds INTEGER
);

CREATE TABLE IF NOT EXISTS user_context (
	context_key TEXT PRIMARY KEY,
	context_value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	path TEXT NOT NULL DEFAULT '',
	tech_stack JSONB NOT NULL DEFAULT '[]',
	last_accessed TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS secrets (
	kind TEXT NOT NULL,
	provider TEXT NOT NULL,
	secret_value BYTEA NOT NULL,
	PRIMARY KEY (kind, provider)
);
`

// initializeSchema creates the learning tables.
func (s *Store) initializeSchema() error {
	timer := logging.StartTimer(logging.CategoryStore, "initializeSchema")
	defer timer.Stop()

	_, err := s.db.Exec(schema)
	return err
}
