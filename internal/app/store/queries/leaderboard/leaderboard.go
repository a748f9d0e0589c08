// internal/app/store/queries/leaderboard/leaderboard.go
package leaderboard

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trazilica/server/internal/domain/models"
	"github.com/trazilica/server/internal/domain/scope"
)

// Row is one leaderboard entry as shown to clients.
type Row struct {
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name   string             `bson:"name" json:"name"`
	Score  int                `bson:"score" json:"score"`
}

// List returns the scope's leaderboard: students only, highest score
// first. Ties break on folded name, then on user ID, so the ordering
// is total and two reads of the same data never disagree.
func List(ctx context.Context, db *mongo.Database, sc scope.Scope) ([]Row, error) {
	pipe := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"scope_key": sc.Key()}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		bson.D{{Key: "$unwind", Value: "$user"}},
		// Teachers run hunts; only students compete.
		bson.D{{Key: "$match", Value: bson.M{"user.role": models.RoleStudent}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "points", Value: -1},
			{Key: "user.name_ci", Value: 1},
			{Key: "user._id", Value: 1},
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id":     0,
			"user_id": 1,
			"name":    "$user.name",
			"score":   "$points",
		}}},
	}

	cur, err := db.Collection("scores").Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Row
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
