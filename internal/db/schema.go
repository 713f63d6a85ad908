package db

const createRecordsTable = `
CREATE TABLE IF NOT EXISTS records (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL,
    url TEXT NOT NULL,
    make TEXT NOT NULL,
    name TEXT,
    data TEXT NOT NULL,
    verify_manually TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_make ON records(make);
CREATE INDEX IF NOT EXISTS idx_records_url ON records(url);
CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id);
`

const createFailuresTable = `
CREATE TABLE IF NOT EXISTS failures (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    url TEXT NOT NULL,
    stage TEXT,
    error TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_failures_run ON failures(run_id);
`

const insertRecord = `
INSERT INTO records (id, run_id, url, make, name, data, verify_manually, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

const selectRecordsByMake = `
SELECT id, run_id, url, make, COALESCE(name, ''), data, COALESCE(verify_manually, 'null'), created_at
FROM records
WHERE make = ?
ORDER BY created_at, id
`

const selectRecordCount = `
SELECT COUNT(*) FROM records
`

const selectMakeCounts = `
SELECT make, COUNT(*) as record_count
FROM records
GROUP BY make
ORDER BY record_count DESC, make
`

const insertFailure = `
INSERT INTO failures (run_id, url, stage, error, created_at)
VALUES (?, ?, ?, ?, ?)
`

const selectFailuresByRun = `
SELECT url, COALESCE(stage, ''), COALESCE(error, '')
FROM failures
WHERE run_id = ?
ORDER BY id
`
