package database

import (
	"context"
	"fmt"
)

// Each collection row is treated as a document: roster, pending request ids
// and poll votes live on their owning row so a single UPDATE is atomic.
var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'member',
		current_team_id UUID,
		can_send_requests BOOLEAN NOT NULL DEFAULT TRUE,
		can_receive_requests BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS hackathons (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		start_date TIMESTAMP WITH TIME ZONE NOT NULL,
		end_date TIMESTAMP WITH TIME ZONE NOT NULL,
		min_team_size INTEGER NOT NULL DEFAULT 1,
		max_team_size INTEGER NOT NULL DEFAULT 4,
		min_team_size_for_finalization INTEGER NOT NULL DEFAULT 1,
		allow_participant_teams BOOLEAN NOT NULL DEFAULT TRUE,
		team_creation_mode VARCHAR(20) NOT NULL DEFAULT 'participant',
		submission_start TIMESTAMP WITH TIME ZONE NOT NULL,
		submission_end TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS problem_statements (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		hackathon_id UUID NOT NULL REFERENCES hackathons(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS hackathon_participants (
		hackathon_id UUID NOT NULL REFERENCES hackathons(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		joined_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		PRIMARY KEY (hackathon_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS teams (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		team_name VARCHAR(50) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		hackathon_id UUID NOT NULL REFERENCES hackathons(id) ON DELETE CASCADE,
		created_by UUID NOT NULL REFERENCES users(id),
		team_members UUID[] NOT NULL DEFAULT '{}',
		member_limit INTEGER NOT NULL CHECK (member_limit BETWEEN 1 AND 10),
		team_status VARCHAR(20) NOT NULL DEFAULT 'forming',
		is_finalized BOOLEAN NOT NULL DEFAULT FALSE,
		can_receive_requests BOOLEAN NOT NULL DEFAULT TRUE,
		pending_requests UUID[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE (hackathon_id, team_name),
		CHECK (cardinality(team_members) <= member_limit)
	)`,

	`CREATE TABLE IF NOT EXISTS team_requests (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		from_user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		to_user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		team_id UUID NOT NULL,
		hackathon_id UUID NOT NULL REFERENCES hackathons(id) ON DELETE CASCADE,
		request_type VARCHAR(10) NOT NULL,
		status VARCHAR(10) NOT NULL DEFAULT 'pending',
		message TEXT NOT NULL DEFAULT '',
		response_message TEXT NOT NULL DEFAULT '',
		expiry_reason VARCHAR(20),
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		responded_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS uq_team_requests_pending_join
		ON team_requests(from_user_id, team_id) WHERE status = 'pending' AND request_type = 'join'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_team_requests_pending_invite
		ON team_requests(team_id, to_user_id) WHERE status = 'pending' AND request_type = 'invite'`,
	`CREATE INDEX IF NOT EXISTS idx_team_requests_pending_expiry
		ON team_requests(expires_at) WHERE status = 'pending'`,

	`CREATE TABLE IF NOT EXISTS problem_selection_polls (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		team_id UUID NOT NULL,
		hackathon_id UUID NOT NULL REFERENCES hackathons(id) ON DELETE CASCADE,
		created_by UUID NOT NULL REFERENCES users(id),
		status VARCHAR(10) NOT NULL DEFAULT 'active',
		votes JSONB NOT NULL DEFAULT '{}',
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		winning_problem_id UUID,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		completed_at TIMESTAMP WITH TIME ZONE
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_polls_active_team
		ON problem_selection_polls(team_id) WHERE status = 'active'`,

	`CREATE TABLE IF NOT EXISTS team_problem_selections (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		team_id UUID NOT NULL,
		hackathon_id UUID NOT NULL REFERENCES hackathons(id) ON DELETE CASCADE,
		selected_problem_id UUID NOT NULL REFERENCES problem_statements(id),
		selected_by UUID NOT NULL,
		is_locked BOOLEAN NOT NULL DEFAULT FALSE,
		selection_method VARCHAR(20) NOT NULL,
		selected_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE (team_id, hackathon_id)
	)`,

	`CREATE TABLE IF NOT EXISTS team_submissions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		team_id UUID NOT NULL,
		hackathon_id UUID NOT NULL REFERENCES hackathons(id) ON DELETE CASCADE,
		submission_url VARCHAR(2048) NOT NULL,
		submitted_by UUID NOT NULL REFERENCES users(id),
		submitted_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE (team_id, hackathon_id)
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		kind VARCHAR(50) NOT NULL,
		payload JSONB NOT NULL DEFAULT '{}',
		read_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_users_current_team_id ON users(current_team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_teams_hackathon_id ON teams(hackathon_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_requests_team_id ON team_requests(team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_requests_to_user_id ON team_requests(to_user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_requests_from_user_id ON team_requests(from_user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_problem_statements_hackathon_id ON problem_statements(hackathon_id)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
