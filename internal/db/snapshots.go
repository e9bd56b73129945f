package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/journal"
)

func snapshotKey(group string, semester int) string {
	return fmt.Sprintf("%s:%s:%d", keyPrefixSnapshot, group, semester)
}

// GetSnapshots gets the stored journal of every subject of a group in a semester
func (db *DB) GetSnapshots(ctx context.Context, group string, semester int) (map[int64]journal.Subject, error) {
	values, err := db.rdb.HGetAll(ctx, snapshotKey(group, semester)).Result()
	if err != nil {
		return nil, err
	}

	subjects := make(map[int64]journal.Subject, len(values))
	for field, value := range values {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, err
		}
		var s journal.Subject
		if err = json.Unmarshal([]byte(value), &s); err != nil {
			return nil, fmt.Errorf("db: error decoding snapshot of subject %d: %w", id, err)
		}
		subjects[id] = s
	}
	return subjects, nil
}

// PutSnapshot puts the journal of a subject, replacing the previous snapshot
func (db *DB) PutSnapshot(ctx context.Context, s journal.Subject) error {
	value, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return db.rdb.HSet(ctx, snapshotKey(s.Group, s.Semester), strconv.FormatInt(s.ID, 10), value).Err()
}
