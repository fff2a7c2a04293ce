package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civix-be/lifecycle"
	"civix-be/models"
)

// Filter captures the supported issue query parameters. Zero values are
// ignored.
type Filter struct {
	UserID     string
	WardNumber string
	Status     models.IssueStatus
}

// IssueRepository encapsulates issue persistence. List always returns issues
// newest-first by creation time. ApplyPatch is the conditional-update
// primitive: the patch lands only if the stored status still equals the
// patch's expected status, so a lost transition race surfaces as a conflict
// instead of a silent overwrite.
type IssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	Get(ctx context.Context, id string) (*models.Issue, error)
	List(ctx context.Context, filter Filter) ([]models.Issue, error)
	ApplyPatch(ctx context.Context, id string, patch lifecycle.Patch) (*models.Issue, error)
}

type mongoIssueRepository struct {
	collection *mongo.Collection
}

// NewMongoIssueRepository instantiates the repository over a collection.
func NewMongoIssueRepository(collection *mongo.Collection) IssueRepository {
	return &mongoIssueRepository{collection: collection}
}

func (r *mongoIssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, issue); err != nil {
		return lifecycle.NewTransientError(err)
	}
	return nil
}

func (r *mongoIssueRepository) Get(ctx context.Context, id string) (*models.Issue, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, lifecycle.NewValidationError("invalid issue id")
	}

	var issue models.Issue
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return nil, lifecycle.NewNotFoundError("issue")
	}
	if err != nil {
		return nil, lifecycle.NewTransientError(err)
	}
	return &issue, nil
}

func (r *mongoIssueRepository) List(ctx context.Context, filter Filter) ([]models.Issue, error) {
	query := bson.M{}
	if filter.UserID != "" {
		query["userId"] = filter.UserID
	}
	if filter.WardNumber != "" {
		query["wardNumber"] = filter.WardNumber
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, lifecycle.NewTransientError(err)
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, lifecycle.NewTransientError(err)
	}
	return issues, nil
}

func (r *mongoIssueRepository) ApplyPatch(ctx context.Context, id string, patch lifecycle.Patch) (*models.Issue, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, lifecycle.NewValidationError("invalid issue id")
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	condition := bson.M{"_id": objID, "status": patch.ExpectedStatus}

	var updated models.Issue
	err = r.collection.FindOneAndUpdate(ctx, condition, bson.M{"$set": patch.Set}, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, lifecycle.NewTransientError(err)
	}

	// Nothing matched: either the issue is gone or its status moved under
	// us. Re-fetch to tell the two apart.
	if _, getErr := r.Get(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, lifecycle.NewConflictError("issue status changed concurrently, refresh and retry")
}
