package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const topicsTable = "topics"

type catalogRepo struct {
	db *sql.DB
}

// GetOrCreate relies on the unique (parent_id, name) index: concurrent
// callers racing on the same name all end up reading the single winner.
func (r *catalogRepo) GetOrCreate(ctx context.Context, parentID int64, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("topic name is empty")
	}

	ins := builder().Insert(topicsTable).
		Columns("parent_id", "name", "created_at").
		Values(parentID, name, formatTime(time.Now())).
		OnConflict(
			entsql.ConflictColumns("parent_id", "name"),
			entsql.DoNothing(),
		)
	if _, err := exec(ctx, r.db, ins); err != nil {
		return 0, fmt.Errorf("insert topic %q: %w", name, err)
	}

	sel := builder().Select("id").
		From(entsql.Table(topicsTable)).
		Where(entsql.And(entsql.EQ("parent_id", parentID), entsql.EQ("name", name)))
	var id int64
	if err := queryRow(ctx, r.db, sel, &id); err != nil {
		return 0, fmt.Errorf("lookup topic %q: %w", name, err)
	}
	return id, nil
}

func (r *catalogRepo) ResolvePath(ctx context.Context, names []string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	var parent int64
	for _, name := range names {
		id, err := r.GetOrCreate(ctx, parent, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
		parent = id
	}
	return ids, nil
}
