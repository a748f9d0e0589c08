// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.

Several invariants live here rather than in application code:
  - users.email_ci unique: one account per email
  - groups.tag_ci unique: case-insensitive group tags
  - group_memberships (user_id, group_id) unique: join is idempotent
  - task_catalogs.scope_key unique: one catalog document per scope
  - completions (scope_key, user_id, task_ci) unique: COMPLETED is
    recorded at most once, which is what makes marking idempotent
  - scores (scope_key, user_id) unique: one leaderboard row per pair
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureGroups(ctx, db); err != nil {
		problems = append(problems, "groups: "+err.Error())
	}
	if err := ensureGroupMemberships(ctx, db); err != nil {
		problems = append(problems, "group_memberships: "+err.Error())
	}
	if err := ensureTaskCatalogs(ctx, db); err != nil {
		problems = append(problems, "task_catalogs: "+err.Error())
	}
	if err := ensureCompletions(ctx, db); err != nil {
		problems = append(problems, "completions: "+err.Error())
	}
	if err := ensureScores(ctx, db); err != nil {
		problems = append(problems, "scores: "+err.Error())
	}
	if err := ensureFindSubmissions(ctx, db); err != nil {
		problems = append(problems, "find_submissions: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	// Load existing indexes once per collection.
	existing := map[string]existingIndex{} // key signature -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
		cur.Close(ctx)
	}

	var errs []string
	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		desiredSig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[desiredSig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) {
				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig))
				continue
			}
			// Options mismatch (e.g., upgrading to unique). Drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                             */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One account per email, case-insensitive via email_ci.
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_emailci"),
		},
		// Leaderboard joins sort by (name_ci, _id) within equal scores.
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_users_nameci__id"),
		},
	})
}

func ensureGroups(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("groups")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Group tags are unique case-insensitively. This replaces the
		// old scan-all-groups check, which was racy across devices.
		{
			Keys:    bson.D{{Key: "tag_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_groups_tagci"),
		},
		// A teacher's own groups list.
		{
			Keys:    bson.D{{Key: "teacher_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_groups_teacher_created"),
		},
	})
}

func ensureGroupMemberships(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("group_memberships")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Exactly one membership per (user, group).
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "group_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_gm_user_group"),
		},
		// Fast: list group members.
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_gm_group_user"),
		},
	})
}

func ensureTaskCatalogs(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("task_catalogs")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One catalog document per scope. AddTask relies on this: a
		// concurrent guarded upsert that loses the race hits this
		// index instead of creating a second catalog.
		{
			Keys:    bson.D{{Key: "scope_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_catalogs_scope"),
		},
	})
}

func ensureCompletions(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("completions")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// At most one COMPLETED record per (scope, user, task).
		{
			Keys: bson.D{
				{Key: "scope_key", Value: 1},
				{Key: "user_id", Value: 1},
				{Key: "task_ci", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_completions_scope_user_task"),
		},
		// Outstanding-task reads load all completions for (scope, user).
		{
			Keys:    bson.D{{Key: "scope_key", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_completions_scope_user"),
		},
	})
}

func ensureScores(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("scores")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One leaderboard row per (scope, user); Increment upserts
		// against this key.
		{
			Keys:    bson.D{{Key: "scope_key", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_scores_scope_user"),
		},
		// Leaderboard reads: top scores first.
		{
			Keys:    bson.D{{Key: "scope_key", Value: 1}, {Key: "points", Value: -1}},
			Options: options.Index().SetName("idx_scores_scope_points"),
		},
	})
}

func ensureFindSubmissions(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("find_submissions")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Per-user recent finds (latest-first)
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_finds_user_created"),
		},
		// Per-scope recent finds (latest-first)
		{
			Keys:    bson.D{{Key: "scope_key", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_finds_scope_created"),
		},
	})
}
