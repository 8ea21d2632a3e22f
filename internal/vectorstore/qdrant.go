package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"bookbot/internal/contextutil"
)

// Embedder turns text into vectors for vectorized kinds.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// QdrantConfig configures the Qdrant adapter.
type QdrantConfig struct {
	// URL should be in the format "http://host:port" (e.g., "http://localhost:6333").
	URL              string
	APIKey           string
	CollectionPrefix string
	VectorSize       int
}

// scrollAllLimit bounds Get calls made without an explicit limit.
const scrollAllLimit = 10000

// QdrantStore implements Store using one Qdrant collection per kind.
type QdrantStore struct {
	client     *qdrant.Client
	embedder   Embedder
	prefix     string
	vectorSize int
}

// NewQdrantStore creates a new Qdrant-backed store.
// The gRPC port (typically 6334) is derived from the HTTP port in the URL.
func NewQdrantStore(cfg QdrantConfig, embedder Embedder) (*QdrantStore, error) {
	host, port, useTLS, err := parseEndpoint(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.VectorSize <= 0 {
		return nil, fmt.Errorf("vector size must be greater than 0")
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	prefix := cfg.CollectionPrefix
	if prefix == "" {
		prefix = "bookbot"
	}

	return &QdrantStore{
		client:     client,
		embedder:   embedder,
		prefix:     prefix,
		vectorSize: cfg.VectorSize,
	}, nil
}

func parseEndpoint(urlStr string) (host string, port int, useTLS bool, err error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host = parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port = 6334
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			// gRPC port is HTTP port + 1
			port = httpPort + 1
		}
	}

	return host, port, parsedURL.Scheme == "https", nil
}

// Close releases the underlying gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// Health checks that Qdrant answers.
func (s *QdrantStore) Health(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health check failed: %w", err)
	}
	return nil
}

// Collection returns the collection name backing kind.
func (s *QdrantStore) Collection(kind Kind) string {
	return s.prefix + "_" + strings.ToLower(string(kind))
}

func (s *QdrantStore) dimensions(kind Kind) int {
	if kind.Vectorized() {
		return s.vectorSize
	}
	return 1
}

// EnsureSchema creates a collection for every kind that lacks one and
// validates the vector size of those that exist. It returns the kinds it created.
func (s *QdrantStore) EnsureSchema(ctx context.Context) ([]Kind, error) {
	var created []Kind
	for _, kind := range Kinds {
		wasCreated, err := s.ensureCollection(ctx, kind)
		if err != nil {
			return created, fmt.Errorf("schema for %s: %w", kind, err)
		}
		if wasCreated {
			created = append(created, kind)
		}
	}
	return created, nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context, kind Kind) (bool, error) {
	logger := contextutil.LoggerFromContext(ctx)
	collection := s.Collection(kind)
	vectorSize := s.dimensions(kind)

	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		distance := qdrant.Distance_Cosine
		if !kind.Vectorized() {
			distance = qdrant.Distance_Dot
		}
		logger.InfoContext(ctx, "creating collection", "collection", collection, "vector_size", vectorSize)
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: distance,
			}),
		})
		if err != nil {
			return false, fmt.Errorf("failed to create collection: %w", err)
		}
		for _, field := range keywordFields(kind) {
			_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
				CollectionName: collection,
				FieldName:      field,
				FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
			})
			if err != nil {
				return false, fmt.Errorf("failed to index field %s: %w", field, err)
			}
		}
		return true, nil
	}

	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return false, fmt.Errorf("failed to get collection info: %w", err)
	}

	var actualSize uint64
	if config := info.GetConfig(); config != nil && config.GetParams() != nil {
		if params := config.GetParams().GetVectorsConfig().GetParams(); params != nil {
			actualSize = params.GetSize()
		}
	}
	if actualSize == 0 {
		return false, fmt.Errorf("could not determine collection vector size")
	}
	if int(actualSize) != vectorSize {
		return false, fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, actualSize)
	}

	logger.DebugContext(ctx, "collection validated", "collection", collection, "vector_size", vectorSize)
	return false, nil
}

// keywordFields are the payload fields filtered on by equality.
func keywordFields(kind Kind) []string {
	switch kind {
	case KindBook:
		return []string{"title", "author"}
	case KindChunk:
		return []string{RefPath("book")}
	case KindUser:
		return []string{"username", "email"}
	default:
		return nil
	}
}

// embeddingText is the text a vectorized record is embedded from.
func embeddingText(kind Kind, fields Fields) string {
	switch kind {
	case KindBook:
		title, _ := fields["title"].(string)
		author, _ := fields["author"].(string)
		return strings.TrimSpace(title + " " + author)
	default:
		content, _ := fields["content"].(string)
		return content
	}
}

func (s *QdrantStore) vectors(ctx context.Context, kind Kind, objects []Object) ([][]float32, error) {
	out := make([][]float32, len(objects))
	if !kind.Vectorized() {
		for i := range out {
			out[i] = []float32{1}
		}
		return out, nil
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("no embedder configured for %s", kind)
	}

	texts := make([]string, len(objects))
	for i, obj := range objects {
		texts[i] = embeddingText(kind, obj.Fields)
	}
	embeddings, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %d %s records: %w", len(objects), kind, err)
	}
	if len(embeddings) != len(objects) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d records", len(embeddings), len(objects))
	}
	return embeddings, nil
}

// Create stores a single record. An existing id is reported as a unique violation.
func (s *QdrantStore) Create(ctx context.Context, kind Kind, id string, fields Fields) error {
	existing, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.Collection(kind),
		Ids:            []*qdrant.PointId{qdrant.NewID(id)},
	})
	if err != nil {
		return fmt.Errorf("failed to check point %s: %w", id, err)
	}
	if len(existing) > 0 {
		return fmt.Errorf("record %s: %w", id, ErrUniqueViolation)
	}
	return s.upsert(ctx, kind, []Object{{ID: id, Fields: fields}})
}

// CreateBatch upserts every object in one request. Qdrant applies the request
// as a whole, so a failure marks every object of the batch as failed.
func (s *QdrantStore) CreateBatch(ctx context.Context, kind Kind, objects []Object) error {
	if len(objects) == 0 {
		return nil
	}
	if err := s.upsert(ctx, kind, objects); err != nil {
		failed := make(map[string]error, len(objects))
		for _, obj := range objects {
			failed[obj.ID] = err
		}
		return &BatchError{Failed: failed}
	}
	return nil
}

func (s *QdrantStore) upsert(ctx context.Context, kind Kind, objects []Object) error {
	logger := contextutil.LoggerFromContext(ctx)
	collection := s.Collection(kind)

	vecs, err := s.vectors(ctx, kind, objects)
	if err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, 0, len(objects))
	for i, obj := range objects {
		point := &qdrant.PointStruct{
			Id:      qdrant.NewID(obj.ID),
			Vectors: qdrant.NewVectors(vecs[i]...),
		}
		if len(obj.Fields) > 0 {
			payload, err := qdrant.TryValueMap(obj.Fields)
			if err != nil {
				return fmt.Errorf("invalid fields for %s: %w", obj.ID, err)
			}
			point.Payload = payload
		}
		points = append(points, point)
	}

	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.DebugContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

// Get scrolls through records matching filter.
func (s *QdrantStore) Get(ctx context.Context, kind Kind, fields []string, filter *Filter, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = scrollAllLimit
	}

	req := &qdrant.ScrollPoints{
		CollectionName: s.Collection(kind),
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if filter != nil {
		qf, err := toFilter(*filter)
		if err != nil {
			return nil, err
		}
		req.Filter = qf
	}

	points, err := s.client.Scroll(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to scroll %s: %w", req.CollectionName, err)
	}

	records := make([]Record, 0, len(points))
	for _, p := range points {
		records = append(records, pointRecord(kind, p.GetId().GetUuid(), p.GetPayload(), fields, 0))
	}
	return records, nil
}

// SemanticQuery embeds the concepts and returns the nearest records.
func (s *QdrantStore) SemanticQuery(ctx context.Context, kind Kind, fields []string, concepts []string, limit int) ([]Record, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if !kind.Vectorized() {
		return nil, fmt.Errorf("%s is not vectorized", kind)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	if s.embedder == nil {
		return nil, fmt.Errorf("no embedder configured for %s", kind)
	}
	vecs, err := s.embedder.EmbedTexts(ctx, []string{strings.Join(concepts, " ")})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vecs))
	}

	collection := s.Collection(kind)
	scored, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vecs[0]...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", collection, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	records := make([]Record, 0, len(scored))
	for _, p := range scored {
		records = append(records, pointRecord(kind, p.GetId().GetUuid(), p.GetPayload(), fields, p.GetScore()))
	}

	logger.DebugContext(ctx, "search completed", "collection", collection, "limit", limit, "results", len(records))
	return records, nil
}

// Update overwrites the given payload fields of one record.
func (s *QdrantStore) Update(ctx context.Context, kind Kind, id string, fields Fields) error {
	payload, err := qdrant.TryValueMap(fields)
	if err != nil {
		return fmt.Errorf("invalid fields for %s: %w", id, err)
	}
	_, err = s.client.SetPayload(ctx, &qdrant.SetPayloadPoints{
		CollectionName: s.Collection(kind),
		Wait:           qdrant.PtrOf(true),
		Payload:        payload,
		PointsSelector: qdrant.NewPointsSelector(qdrant.NewID(id)),
	})
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", kind, id, err)
	}
	return nil
}

// Delete removes one record.
func (s *QdrantStore) Delete(ctx context.Context, kind Kind, id string) error {
	logger := contextutil.LoggerFromContext(ctx)
	collection := s.Collection(kind)

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelector(qdrant.NewID(id)),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete point", "collection", collection, "id", id, "error", err)
		return fmt.Errorf("failed to delete point: %w", err)
	}
	return nil
}

// Link stores the reference under the "_refs" payload object of the source record.
func (s *QdrantStore) Link(ctx context.Context, fromKind Kind, fromID, property string, toKind Kind, toID string) error {
	_, err := s.client.SetPayload(ctx, &qdrant.SetPayloadPoints{
		CollectionName: s.Collection(fromKind),
		Wait:           qdrant.PtrOf(true),
		Key:            qdrant.PtrOf(refsKey),
		Payload:        qdrant.NewValueMap(map[string]any{property: toID}),
		PointsSelector: qdrant.NewPointsSelector(qdrant.NewID(fromID)),
	})
	if err != nil {
		return fmt.Errorf("failed to link %s %s to %s %s: %w", fromKind, fromID, toKind, toID, err)
	}
	return nil
}

// toFilter wraps the condition tree of f in a top-level Qdrant filter.
func toFilter(f Filter) (*qdrant.Filter, error) {
	cond, err := toCondition(f)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %s: %w", f, err)
	}
	return &qdrant.Filter{Must: []*qdrant.Condition{cond}}, nil
}

// toCondition converts a filter tree into Qdrant conditions.
// And maps to must, Or maps to should.
func toCondition(f Filter) (*qdrant.Condition, error) {
	switch f.Operator {
	case OpEqual:
		if f.Path == IDPath {
			id, ok := f.Value.(string)
			if !ok {
				return nil, fmt.Errorf("id filter needs a string value, got %T", f.Value)
			}
			return qdrant.NewHasID(qdrant.NewID(id)), nil
		}
		switch v := f.Value.(type) {
		case string:
			return qdrant.NewMatch(f.Path, v), nil
		case bool:
			return qdrant.NewMatchBool(f.Path, v), nil
		case int:
			return qdrant.NewMatchInt(f.Path, int64(v)), nil
		case int64:
			return qdrant.NewMatchInt(f.Path, v), nil
		default:
			return nil, fmt.Errorf("unsupported filter value %T for %s", f.Value, f.Path)
		}
	case OpAnd, OpOr:
		conds := make([]*qdrant.Condition, 0, len(f.Operands))
		for _, op := range f.Operands {
			cond, err := toCondition(op)
			if err != nil {
				return nil, err
			}
			conds = append(conds, cond)
		}
		if f.Operator == OpAnd {
			return qdrant.NewFilterAsCondition(&qdrant.Filter{Must: conds}), nil
		}
		return qdrant.NewFilterAsCondition(&qdrant.Filter{Should: conds}), nil
	default:
		return nil, fmt.Errorf("unsupported filter operator %q", f.Operator)
	}
}

func pointRecord(kind Kind, id string, payload map[string]*qdrant.Value, fields []string, score float32) Record {
	all := convertPayloadToMap(payload)
	refs := make(map[string]string)
	if raw, ok := all[refsKey].(map[string]any); ok {
		for k, v := range raw {
			if s, ok := v.(string); ok {
				refs[k] = s
			}
		}
	}
	delete(all, refsKey)
	return Record{ID: id, Kind: kind, Fields: project(all, fields), Refs: refs, Score: score}
}

// convertPayloadToMap converts Qdrant payload to map[string]any.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

// convertValue converts a Qdrant Value to Go any type.
func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}
