package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/universeos/dashboard/internal/core/domain"
	"github.com/universeos/dashboard/internal/core/ports"
)

const (
	collectionLayouts         = "layouts"
	collectionNotifications   = "notifications"
	collectionRecommendations = "recommendations"
	collectionWidgetData      = "widget_data"
)

// Gateway is the MongoDB-backed implementation of ports.Gateway. Errors are
// returned raw; the services wrap them into domain.GatewayError at the call
// site.
type Gateway struct {
	layouts         *mongo.Collection
	notifications   *mongo.Collection
	recommendations *mongo.Collection
	widgetData      *mongo.Collection
}

func NewGateway(db *mongo.Database) *Gateway {
	return &Gateway{
		layouts:         db.Collection(collectionLayouts),
		notifications:   db.Collection(collectionNotifications),
		recommendations: db.Collection(collectionRecommendations),
		widgetData:      db.Collection(collectionWidgetData),
	}
}

// layoutDoc wraps a layout for storage. The document key combines owner and
// layout id so two users' layouts with the same id (the synthesized default
// is "default" for everyone) occupy distinct documents.
type layoutDoc struct {
	StorageID     string `bson:"_id"`
	domain.Layout `bson:",inline"`
}

func layoutKey(ownerID, layoutID string) string {
	return ownerID + "/" + layoutID
}

// FetchLayouts returns the layouts the user owns or has been shared,
// most-recently-modified first.
func (g *Gateway) FetchLayouts(ctx context.Context, ownerID string) ([]domain.Layout, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"owner_id": ownerID},
		bson.M{"shared_with": ownerID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "last_modified", Value: -1}})

	cursor, err := g.layouts.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []layoutDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	layouts := make([]domain.Layout, 0, len(docs))
	for _, d := range docs {
		layouts = append(layouts, d.Layout)
	}
	return layouts, nil
}

// SaveLayout upserts the layout document keyed by owner and layout id.
func (g *Gateway) SaveLayout(ctx context.Context, layout domain.Layout) (domain.Layout, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	layout.LastModified = time.Now().UTC()
	doc := layoutDoc{
		StorageID: layoutKey(layout.OwnerID, layout.ID),
		Layout:    layout,
	}

	_, err := g.layouts.ReplaceOne(ctx,
		bson.M{"_id": doc.StorageID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return domain.Layout{}, err
	}
	return layout, nil
}

// FetchNotifications returns the user's feed in timestamp order.
func (g *Gateway) FetchNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := g.notifications.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []domain.Notification
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

type recommendationDoc struct {
	Text    string            `bson:"text"`
	Context map[string]string `bson:"context,omitempty"`
	Weight  int               `bson:"weight"`
}

// FetchRecommendations returns recommendation strings whose stored context
// matches every key in reqContext, highest weight first.
func (g *Gateway) FetchRecommendations(ctx context.Context, reqContext map[string]string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	for k, v := range reqContext {
		filter["context."+k] = v
	}
	opts := options.Find().SetSort(bson.D{{Key: "weight", Value: -1}})

	cursor, err := g.recommendations.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []recommendationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Text)
	}
	return out, nil
}

type widgetDataDoc struct {
	Source    string            `bson:"source"`
	Tags      map[string]string `bson:"tags,omitempty"`
	Points    []ports.DataPoint `bson:"points"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

// FetchWidgetData aggregates the data series of all the widget's sources,
// with each filter applied as a tag equality match.
func (g *Gateway) FetchWidgetData(ctx context.Context, widgetID string, sources []string, filters map[string]string) (*ports.WidgetData, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"source": bson.M{"$in": sources}}
	for k, v := range filters {
		filter["tags."+k] = v
	}

	cursor, err := g.widgetData.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []widgetDataDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := &ports.WidgetData{WidgetID: widgetID}
	for _, d := range docs {
		result.Data = append(result.Data, d.Points...)
		if d.UpdatedAt.After(result.LastUpdated) {
			result.LastUpdated = d.UpdatedAt
		}
	}
	return result, nil
}

// EnsureIndexes creates the indexes backing the gateway queries.
func (g *Gateway) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := g.layouts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "last_modified", Value: -1}}},
		{Keys: bson.D{{Key: "shared_with", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = g.notifications.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = g.widgetData.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "source", Value: 1}}},
	})
	return err
}
