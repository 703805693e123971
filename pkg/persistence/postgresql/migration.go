package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create apps table; the workflow document is stored whole
			CREATE TABLE apps (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				icon VARCHAR(64) NOT NULL DEFAULT '',
				theme_color VARCHAR(64) NOT NULL DEFAULT '',
				workflow JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_apps_created_at ON apps(created_at);

			-- Create users table
			CREATE TABLE users (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) NOT NULL,
				avatar_url TEXT NOT NULL DEFAULT '',
				role VARCHAR(50) NOT NULL CHECK (role IN ('Admin', 'Member'))
			);

			CREATE UNIQUE INDEX idx_users_email ON users(LOWER(email));
		`,
		2: `
			-- Create cases table
			CREATE TABLE cases (
				id VARCHAR(255) PRIMARY KEY,
				app_id VARCHAR(255) NOT NULL REFERENCES apps(id) ON DELETE CASCADE,
				title TEXT NOT NULL,
				description TEXT NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('New', 'In Progress', 'In Review', 'Closed')),
				priority VARCHAR(50) NOT NULL CHECK (priority IN ('Low', 'Medium', 'High', 'Urgent')),
				assignee_id VARCHAR(255),
				client TEXT NOT NULL,
				tags JSONB NOT NULL DEFAULT '[]',
				current_workflow_step_id VARCHAR(255),
				workflow_history JSONB NOT NULL DEFAULT '[]',
				form_data JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_cases_app_id ON cases(app_id);
			CREATE INDEX idx_cases_status ON cases(status);
			CREATE INDEX idx_cases_current_step ON cases(app_id, current_workflow_step_id);
		`,
	}
}
