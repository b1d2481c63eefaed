package catalog

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tendermatch/backend/internal/domain"
)

// MongoConfig holds the catalog database settings.
type MongoConfig struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
}

// MongoStore reads the deduplicated products collection. When the database
// is unreachable at startup the store degrades to returning empty candidate
// sets instead of failing every request, so the API stays up.
type MongoStore struct {
	collection   *mongo.Collection
	client       *mongo.Client
	queryTimeout time.Duration
	textSearchOK bool
}

// NewMongoStore connects to the catalog database. A connection failure is
// returned alongside a usable degraded store; callers decide whether to
// treat it as fatal.
func NewMongoStore(ctx context.Context, config MongoConfig) (*MongoStore, error) {
	if config.Collection == "" {
		config.Collection = "unique_products"
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 10 * time.Second
	}
	if config.QueryTimeout == 0 {
		config.QueryTimeout = 30 * time.Second
	}

	store := &MongoStore{queryTimeout: config.QueryTimeout}

	connectCtx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return store, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return store, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	store.client = client
	store.collection = client.Database(config.Database).Collection(config.Collection)
	store.textSearchOK = store.hasTextIndex(connectCtx)

	log.Info().
		Str("database", config.Database).
		Str("collection", config.Collection).
		Bool("text_search", store.textSearchOK).
		Msg("catalog store connected")

	return store, nil
}

// hasTextIndex reports whether the collection carries a text index, which
// FindEnhanced needs for $text queries.
func (s *MongoStore) hasTextIndex(ctx context.Context) bool {
	cursor, err := s.collection.Indexes().List(ctx)
	if err != nil {
		return false
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var idx bson.M
		if err := cursor.Decode(&idx); err != nil {
			continue
		}
		if key, ok := idx["key"].(bson.M); ok {
			for _, v := range key {
				if v == "text" {
					return true
				}
			}
		}
	}
	return false
}

// FindByPrefix returns products whose classification code starts with the
// prefix, most-supplied first.
func (s *MongoStore) FindByPrefix(ctx context.Context, codePrefix string, limit int) ([]domain.Product, error) {
	if s.collection == nil {
		log.Warn().Str("prefix", codePrefix).Msg("catalog unavailable, returning no candidates")
		return nil, nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	filter := bson.M{"okpd2_code": bson.M{"$regex": "^" + regexp.QuoteMeta(codePrefix)}}
	opts := options.Find().
		SetSort(bson.D{{Key: "unique_suppliers_count", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(queryCtx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	defer cursor.Close(queryCtx)

	var products []domain.Product
	if err := cursor.All(queryCtx, &products); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	return products, nil
}

// FindEnhanced combines the classification prefix filter with a weighted
// full-text query, annotating results with their text relevance score.
// Without a text index it falls back to plain prefix filtering.
func (s *MongoStore) FindEnhanced(ctx context.Context, codePrefix string, weightedTerms map[string]float64, limit int) ([]domain.Product, error) {
	if s.collection == nil {
		log.Warn().Str("prefix", codePrefix).Msg("catalog unavailable, returning no candidates")
		return nil, nil
	}
	if !s.textSearchOK || len(weightedTerms) == 0 {
		return s.FindByPrefix(ctx, codePrefix, limit)
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	filter := bson.M{
		"okpd2_code": bson.M{"$regex": "^" + regexp.QuoteMeta(codePrefix)},
		"$text":      bson.M{"$search": buildTextQuery(weightedTerms)},
	}
	opts := options.Find().
		SetProjection(bson.M{"text_score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.M{"text_score": bson.M{"$meta": "textScore"}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(queryCtx, filter, opts)
	if err != nil {
		log.Warn().Err(err).Str("prefix", codePrefix).Msg("text search failed, falling back to prefix query")
		return s.FindByPrefix(ctx, codePrefix, limit)
	}
	defer cursor.Close(queryCtx)

	var products []domain.Product
	if err := cursor.All(queryCtx, &products); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	return products, nil
}

// buildTextQuery renders weighted terms as a $text search string, heaviest
// terms first. Mongo's $text has no per-term weights, so the weights only
// decide ordering and which terms make the cut.
func buildTextQuery(weightedTerms map[string]float64) string {
	type weighted struct {
		term   string
		weight float64
	}
	terms := make([]weighted, 0, len(weightedTerms))
	for term, weight := range weightedTerms {
		terms = append(terms, weighted{term, weight})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].weight != terms[j].weight {
			return terms[i].weight > terms[j].weight
		}
		return terms[i].term < terms[j].term
	})

	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.term
	}
	return strings.Join(parts, " ")
}

// Close disconnects from the database.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
