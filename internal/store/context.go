package store

import (
	"fmt"

	"curio/internal/logging"
)

// UserContext returns the user context key/value pairs used to bias topic
// choice. The table is owned by the surrounding memory plugin; this is a
// read-only view.
func (s *Store) UserContext() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT context_key, context_value FROM user_context`)
	if err != nil {
		logging.StoreError("Failed to read user context: %v", err)
		return nil, fmt.Errorf("failed to read user context: %w", err)
	}
	defer rows.Close()

	ctx := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			continue
		}
		ctx[key] = value
	}

	logging.StoreDebug("Read %d user context entries", len(ctx))
	return ctx, rows.Err()
}

// ListProjects returns recently accessed known projects.
func (s *Store) ListProjects(limit int) ([]Project, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`
		SELECT name, path, tech_stack
		FROM projects
		ORDER BY last_accessed DESC
		LIMIT $1`, limit)
	if err != nil {
		logging.StoreError("Failed to list projects: %v", err)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		var tech []byte
		if err := rows.Scan(&p.Name, &p.Path, &tech); err != nil {
			continue
		}
		p.TechStack = scanStringList(tech)
		projects = append(projects, p)
	}

	logging.StoreDebug("Listed %d projects", len(projects))
	return projects, rows.Err()
}
