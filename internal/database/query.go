package database

import (
	"time"
)

const selectEvents = `
	SELECT id, timestamp, action, path, file_name, object_type, size,
	       trash_location, platform, exit_code, error_message, created_at
	FROM trash_events
`

// TrashStats summarizes the journal over a period
type TrashStats struct {
	StartDate    time.Time      `json:"start_date"`
	EndDate      time.Time      `json:"end_date"`
	TotalTrashed int            `json:"total_trashed"`
	TotalSkipped int            `json:"total_skipped"`
	TotalBlocked int            `json:"total_blocked"`
	TotalErrors  int            `json:"total_errors"`
	TotalDryRuns int            `json:"total_dry_runs"`
	BytesTrashed int64          `json:"bytes_trashed"`
	ByAction     map[string]int `json:"by_action"`
	ByObjectType map[string]int `json:"by_object_type"`
}

// GetRecentEvents returns the N most recent trash events
func (d *TrashDB) GetRecentEvents(limit int) ([]TrashEvent, error) {
	return d.queryEvents(selectEvents+`
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`, limit)
}

// GetEventsByDateRange returns events within a time range
func (d *TrashDB) GetEventsByDateRange(start, end time.Time) ([]TrashEvent, error) {
	return d.queryEvents(selectEvents+`
	WHERE timestamp BETWEEN ? AND ?
	ORDER BY timestamp DESC, id DESC
	`, start, end)
}

// GetEventsByAction returns events filtered by action
func (d *TrashDB) GetEventsByAction(action string) ([]TrashEvent, error) {
	return d.queryEvents(selectEvents+`
	WHERE action = ?
	ORDER BY timestamp DESC, id DESC
	`, action)
}

// GetEventsByPath returns events whose path matches a SQL LIKE pattern
func (d *TrashDB) GetEventsByPath(pathPattern string) ([]TrashEvent, error) {
	return d.queryEvents(selectEvents+`
	WHERE path LIKE ?
	ORDER BY timestamp DESC, id DESC
	`, pathPattern)
}

// GetLargestEvents returns the N largest items actually trashed
func (d *TrashDB) GetLargestEvents(limit int) ([]TrashEvent, error) {
	return d.queryEvents(selectEvents+`
	WHERE action = 'TRASH'
	ORDER BY size DESC, id DESC
	LIMIT ?
	`, limit)
}

// GetTotalBytesTrashed returns total bytes moved to the trash in a time range
func (d *TrashDB) GetTotalBytesTrashed(start, end time.Time) (int64, error) {
	query := `
	SELECT COALESCE(SUM(size), 0)
	FROM trash_events
	WHERE action = 'TRASH' AND timestamp BETWEEN ? AND ?
	`

	var total int64
	err := d.db.QueryRow(query, start, end).Scan(&total)
	return total, err
}

// GetEventCountByAction returns count of events grouped by action
func (d *TrashDB) GetEventCountByAction() (map[string]int, error) {
	return d.countBy(`
	SELECT action, COUNT(*)
	FROM trash_events
	GROUP BY action
	`)
}

// GetStats summarizes the last `days` days of the journal
func (d *TrashDB) GetStats(days int) (*TrashStats, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	stats := &TrashStats{StartDate: start, EndDate: end}

	byAction, err := d.countBy(`
	SELECT action, COUNT(*)
	FROM trash_events
	WHERE timestamp BETWEEN ? AND ?
	GROUP BY action
	`, start, end)
	if err != nil {
		return nil, err
	}
	stats.ByAction = byAction
	stats.TotalTrashed = byAction[ActionTrash]
	stats.TotalSkipped = byAction[ActionSkip]
	stats.TotalBlocked = byAction[ActionBlocked]
	stats.TotalErrors = byAction[ActionError]
	stats.TotalDryRuns = byAction[ActionDryRun]

	stats.ByObjectType, err = d.countBy(`
	SELECT object_type, COUNT(*)
	FROM trash_events
	WHERE action = 'TRASH' AND timestamp BETWEEN ? AND ?
	GROUP BY object_type
	`, start, end)
	if err != nil {
		return nil, err
	}

	stats.BytesTrashed, err = d.GetTotalBytesTrashed(start, end)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (d *TrashDB) countBy(query string, args ...interface{}) (map[string]int, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}

	return counts, rows.Err()
}

// queryEvents executes a query and scans results into TrashEvent slice
func (d *TrashDB) queryEvents(query string, args ...interface{}) ([]TrashEvent, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []TrashEvent
	for rows.Next() {
		var ev TrashEvent
		var fileName, location, errorMsg *string
		var createdAt *time.Time

		err := rows.Scan(
			&ev.ID,
			&ev.Timestamp,
			&ev.Action,
			&ev.Path,
			&fileName,
			&ev.ObjectType,
			&ev.Size,
			&location,
			&ev.Platform,
			&ev.ExitCode,
			&errorMsg,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		if fileName != nil {
			ev.FileName = *fileName
		}
		if location != nil {
			ev.TrashLocation = *location
		}
		if errorMsg != nil {
			ev.ErrorMessage = *errorMsg
		}
		if createdAt != nil {
			ev.CreatedAt = *createdAt
		}

		events = append(events, ev)
	}

	return events, rows.Err()
}
