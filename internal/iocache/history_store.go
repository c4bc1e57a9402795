package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/huangsam/perfpipe/schema"
)

// Table names for run history.
const (
	runsTable = "perfpipe_runs"
	rowsTable = "perfpipe_rows"
)

// HistoryStoreImpl records pipeline runs and the rows they produced.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore opens the history store for the backend and applies the schema.
// The none backend returns a store that records nothing.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}
	db, err := openDB(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history store: %w", err)
	}
	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	stmts, err := upStatements(backend)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create history tables: %w", err)
		}
	}
	return nil
}

// BeginRun creates a run with a fresh UUID and returns its ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, mode schema.RunMode, configParams map[string]any) (int64, error) {
	if hs.db == nil {
		return 0, nil
	}
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	table := quoteTableName(runsTable, hs.backend)
	args := []any{uuid.NewString(), formatTime(startTime, hs.backend), string(mode), string(configJSON)}
	query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, mode, config_params) VALUES (%s)`,
		table, placeholders(hs.backend, 1, len(args)))

	var runID int64
	if hs.backend == schema.PostgreSQLBackend {
		err = hs.db.QueryRow(query+" RETURNING run_id", args...).Scan(&runID)
	} else {
		var result sql.Result
		if result, err = hs.db.Exec(query, args...); err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordRows stores the rows of a run in one transaction.
func (hs *HistoryStoreImpl) RecordRows(runID int64, rows []schema.FlatRow) error {
	if hs.db == nil || len(rows) == 0 {
		return nil
	}
	query := fmt.Sprintf(`INSERT INTO %s (run_id, row_index, app_version, result_time, test_group, test_name,
		duration_seconds, moves_per_second, evaluations_per_second, operations_per_second, board_configuration)
		VALUES (%s)`, quoteTableName(rowsTable, hs.backend), placeholders(hs.backend, 1, 11))

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range rows {
		rec := schema.NewRowRecord(runID, r)
		if _, err := stmt.Exec(runID, i, rec.AppVersion, formatTime(rec.Timestamp, hs.backend), rec.TestGroup, rec.TestName,
			rec.DurationSeconds, rec.MovesPerSecond, rec.EvaluationsPerSecond, rec.OperationsPerSecond, rec.BoardConfiguration); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert row %d of run %d: %w", i, runID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rows of run %d: %w", runID, err)
	}
	return nil
}

// EndRun stores the terminal state, the totals and the run duration.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, state schema.PipelineState, totalFiles, totalResults int) error {
	if hs.db == nil {
		return nil
	}
	table := quoteTableName(runsTable, hs.backend)

	var start timeScanner
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, table, placeholders(hs.backend, 1, 1))
	if err := hs.db.QueryRow(query, runID).Scan(&start); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	durationMs := endTime.Sub(start.Time).Milliseconds()

	var update string
	if hs.backend == schema.PostgreSQLBackend {
		update = fmt.Sprintf(`UPDATE %s SET end_time = $1, duration_ms = $2, state = $3, total_files = $4, total_results = $5 WHERE run_id = $6`, table)
	} else {
		update = fmt.Sprintf(`UPDATE %s SET end_time = ?, duration_ms = ?, state = ?, total_files = ?, total_results = ? WHERE run_id = ?`, table)
	}
	if _, err := hs.db.Exec(update, formatTime(endTime, hs.backend), durationMs, string(state), totalFiles, totalResults, runID); err != nil {
		return fmt.Errorf("failed to update run %d: %w", runID, err)
	}
	return nil
}

// GetRuns returns the most recent runs, newest first. A non-positive limit returns every run.
func (hs *HistoryStoreImpl) GetRuns(limit int) ([]schema.RunRecord, error) {
	if hs.db == nil {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT run_id, run_uuid, start_time, end_time, duration_ms, mode, state,
		total_files, total_results, config_params FROM %s ORDER BY run_id DESC`, quoteTableName(runsTable, hs.backend))
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var (
			rec        schema.RunRecord
			start, end timeScanner
		)
		if err := rows.Scan(&rec.RunID, &rec.RunUUID, &start, &end, &rec.DurationMs, &rec.Mode, &rec.State,
			&rec.TotalFiles, &rec.TotalResults, &rec.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.StartTime = start.Time
		rec.EndTime = end.ptr()
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetRows returns every stored row ordered by run and position.
func (hs *HistoryStoreImpl) GetRows() ([]schema.RowRecord, error) {
	if hs.db == nil {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT run_id, app_version, result_time, test_group, test_name, duration_seconds,
		moves_per_second, evaluations_per_second, operations_per_second, board_configuration
		FROM %s ORDER BY run_id, row_index`, quoteTableName(rowsTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RowRecord
	for rows.Next() {
		var (
			rec schema.RowRecord
			ts  timeScanner
		)
		if err := rows.Scan(&rec.RunID, &rec.AppVersion, &ts, &rec.TestGroup, &rec.TestName, &rec.DurationSeconds,
			&rec.MovesPerSecond, &rec.EvaluationsPerSecond, &rec.OperationsPerSecond, &rec.BoardConfiguration); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rec.Timestamp = ts.Time
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return results, nil
}

// GetStatus returns run counts, the newest and oldest run and the table sizes.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.db == nil {
		return status, nil
	}

	for _, table := range []string{runsTable, rowsTable} {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(query).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalRuns = int(status.TableSizes[runsTable])
	status.TotalRows = int(status.TableSizes[rowsTable])
	if status.TotalRuns == 0 {
		return status, nil
	}

	table := quoteTableName(runsTable, hs.backend)
	var last, oldest timeScanner
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", table)).
		Scan(&status.LastRunID, &last); err != nil {
		return status, fmt.Errorf("failed to get last run info: %w", err)
	}
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", table)).
		Scan(&oldest); err != nil {
		return status, fmt.Errorf("failed to get oldest run time: %w", err)
	}
	status.LastRunTime = last.Time
	status.OldestRunTime = oldest.Time
	return status, nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}
