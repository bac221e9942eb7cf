package db

// tables lists every table WipeData clears.
var tables = []string{"overlay", "user_context", "enrich_job"}

// SchemaSQL defines the contact-memory tables.
const SchemaSQL = `
    -- ==========================================================================
    -- OVERLAY TABLE (enrichment merged into chat profiles, keyed by profile id)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS overlay SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS profile_id ON overlay TYPE string;
    DEFINE FIELD IF NOT EXISTS source ON overlay TYPE string DEFAULT "manual";
    DEFINE FIELD IF NOT EXISTS overlay ON overlay TYPE object FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS updated_at ON overlay TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS overlay_source ON overlay FIELDS source;

    -- ==========================================================================
    -- USER CONTEXT TABLE (the organizer's offerings, needs and network)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS user_context SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS context ON user_context TYPE object FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS updated_at ON user_context TYPE datetime DEFAULT time::now();

    -- ==========================================================================
    -- ENRICH JOB TABLE (async enrichment runs, resumable after restart)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS enrich_job SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS status ON enrich_job TYPE string;
    DEFINE FIELD IF NOT EXISTS name ON enrich_job TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS profile_ids ON enrich_job TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS total ON enrich_job TYPE int;
    DEFINE FIELD IF NOT EXISTS progress ON enrich_job TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS result ON enrich_job TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS error ON enrich_job TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS started_at ON enrich_job TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS completed_at ON enrich_job TYPE option<datetime>;

    DEFINE INDEX IF NOT EXISTS enrich_job_status ON enrich_job FIELDS status;
`
