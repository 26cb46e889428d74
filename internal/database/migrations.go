package database

// Schema is the idempotent migration script executed at startup.
// Column types mirror the API models: enabled_platforms is a text array of
// platform names. Collection job state lives in Redis, not here; only the
// collected posts that feed dashboard aggregates are persisted.
const Schema = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    username VARCHAR(64) UNIQUE NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    full_name VARCHAR(255),
    hashed_password VARCHAR(255) NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    permissions_granted BOOLEAN NOT NULL DEFAULT FALSE,
    enabled_platforms TEXT[] NOT NULL DEFAULT '{}',
    last_permissions_update TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_users_username ON users (username);
CREATE INDEX IF NOT EXISTS idx_users_email ON users (email);

CREATE TABLE IF NOT EXISTS social_accounts (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    platform VARCHAR(32) NOT NULL,
    platform_user_id VARCHAR(255) NOT NULL DEFAULT '',
    username VARCHAR(255) NOT NULL DEFAULT '',
    display_name VARCHAR(255),
    email VARCHAR(255),
    profile_url TEXT,
    profile_picture TEXT,
    access_token TEXT NOT NULL DEFAULT '',
    refresh_token TEXT,
    token_expires_at TIMESTAMPTZ,
    connected_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_sync TIMESTAMPTZ,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    collect_posts BOOLEAN NOT NULL DEFAULT TRUE,
    collect_connections BOOLEAN NOT NULL DEFAULT FALSE,
    collect_interactions BOOLEAN NOT NULL DEFAULT FALSE,
    UNIQUE (user_id, platform)
);

CREATE INDEX IF NOT EXISTS idx_social_accounts_user ON social_accounts (user_id);

CREATE TABLE IF NOT EXISTS browser_credentials (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    platform VARCHAR(32) NOT NULL,
    email VARCHAR(255) NOT NULL,
    password TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, platform)
);

CREATE TABLE IF NOT EXISTS collected_posts (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    platform VARCHAR(32) NOT NULL,
    external_id VARCHAR(255) NOT NULL,
    author VARCHAR(255) NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    threat_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    posted_at TIMESTAMPTZ,
    collected_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, platform, external_id)
);

CREATE INDEX IF NOT EXISTS idx_collected_posts_user ON collected_posts (user_id, collected_at DESC);
CREATE INDEX IF NOT EXISTS idx_collected_posts_threat ON collected_posts (user_id, threat_score DESC);
`
