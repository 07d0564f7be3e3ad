package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const artifactsTable = "generated_artifacts"

var artifactColumns = []string{
	"id", "batch_id", "owner_id", "topic_path", "topic_ids", "format", "difficulty",
	"source_style", "payload", "request_config", "attempts", "model", "created_at",
}

type artifactRepo struct {
	db *sql.DB
}

func (r *artifactRepo) SaveBatch(ctx context.Context, rows []ArtifactRow) error {
	if len(rows) == 0 {
		return nil
	}
	ins := builder().Insert(artifactsTable).Columns(artifactColumns...)
	for _, a := range rows {
		ins.Values(
			a.ID, a.BatchID, a.OwnerID, a.TopicPath, a.TopicIDs, a.Format, a.Difficulty,
			a.SourceStyle, a.Payload, a.RequestConfig, a.Attempts, a.Model, formatTime(a.CreatedAt),
		)
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := exec(ctx, tx, ins); err != nil {
			return fmt.Errorf("insert artifacts: %w", err)
		}
		return nil
	})
}

func (r *artifactRepo) ListByBatch(ctx context.Context, ownerID, batchID string) ([]ArtifactRow, error) {
	sel := builder().Select(artifactColumns...).
		From(entsql.Table(artifactsTable)).
		Where(entsql.And(entsql.EQ("owner_id", ownerID), entsql.EQ("batch_id", batchID))).
		OrderBy(entsql.Asc("created_at"), entsql.Asc("id"))
	out, err := r.list(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("list batch %s: %w", batchID, err)
	}
	return out, nil
}

func (r *artifactRepo) List(ctx context.Context, ownerID string, limit int) ([]ArtifactRow, error) {
	sel := builder().Select(artifactColumns...).
		From(entsql.Table(artifactsTable)).
		Where(entsql.EQ("owner_id", ownerID)).
		OrderBy(entsql.Desc("created_at"), entsql.Asc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	out, err := r.list(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	return out, nil
}

func (r *artifactRepo) list(ctx context.Context, sel *entsql.Selector) ([]ArtifactRow, error) {
	var out []ArtifactRow
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		var (
			a       ArtifactRow
			created string
		)
		if err := rows.Scan(
			&a.ID, &a.BatchID, &a.OwnerID, &a.TopicPath, &a.TopicIDs, &a.Format, &a.Difficulty,
			&a.SourceStyle, &a.Payload, &a.RequestConfig, &a.Attempts, &a.Model, &created,
		); err != nil {
			return err
		}
		t, err := parseTime(created)
		if err != nil {
			return err
		}
		a.CreatedAt = t
		out = append(out, a)
		return nil
	})
	return out, err
}
