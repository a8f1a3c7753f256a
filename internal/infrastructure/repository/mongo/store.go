package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

const (
	rfpCollection        = "rfp_documents"
	brandGuideCollection = "brand_guides"
	generationCollection = "slide_generations"
)

// Connect opens a client and verifies it. Caller should call client.Disconnect(ctx).
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

type Store struct {
	rfps        *mongo.Collection
	guides      *mongo.Collection
	generations *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		rfps:        db.Collection(rfpCollection),
		guides:      db.Collection(brandGuideCollection),
		generations: db.Collection(generationCollection),
	}
}

// EnsureIndexes creates lookup indexes. Safe to call on every startup.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.rfps.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "filename", Value: 1}, {Key: "uploadDate", Value: -1}}},
		{Keys: bson.D{{Key: "savedFilename", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("create rfp indexes: %w", err)
	}
	if _, err := s.guides.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "filename", Value: 1}, {Key: "uploadDate", Value: -1}},
	}); err != nil {
		return fmt.Errorf("create brand guide indexes: %w", err)
	}
	if _, err := s.generations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "generatedDate", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("create generation indexes: %w", err)
	}
	return nil
}

type rfpRecord struct {
	ID            string    `bson:"id"`
	Filename      string    `bson:"filename"`
	SavedFilename string    `bson:"savedFilename"`
	Content       string    `bson:"content"`
	FilePath      string    `bson:"filePath"`
	Pages         int       `bson:"pages"`
	UploadDate    time.Time `bson:"uploadDate"`
}

type brandGuideRecord struct {
	ID           string    `bson:"id"`
	BrandName    string    `bson:"brandName"`
	Filename     string    `bson:"filename"`
	Content      string    `bson:"content"`
	ColorPalette string    `bson:"colorPalette"`
	Typography   string    `bson:"typography"`
	VoiceTone    string    `bson:"voiceTone"`
	Pages        int       `bson:"pages"`
	UploadDate   time.Time `bson:"uploadDate"`
}

// generationRecord keeps slides as their JSON text so mixed content shapes survive unchanged.
type generationRecord struct {
	ID                 string    `bson:"id"`
	RFPFilename        string    `bson:"rfpFilename"`
	BrandGuideFilename string    `bson:"brandGuideFilename"`
	SlideCount         int       `bson:"slideCount"`
	Slides             string    `bson:"slides"`
	Status             string    `bson:"status"`
	GeneratedDate      time.Time `bson:"generatedDate"`
}

func (s *Store) CreateRFPDocument(ctx context.Context, doc *domain.RFPDocument) error {
	_, err := s.rfps.InsertOne(ctx, rfpRecord{
		ID:            doc.ID,
		Filename:      doc.Filename,
		SavedFilename: doc.SavedFilename,
		Content:       doc.Content,
		FilePath:      doc.FilePath,
		Pages:         doc.Pages,
		UploadDate:    doc.UploadDate,
	})
	if err != nil {
		return fmt.Errorf("insert rfp document: %w", err)
	}
	return nil
}

func (s *Store) FindRFPDocument(ctx context.Context, filename string) (*domain.RFPDocument, error) {
	filter := bson.M{"$or": bson.A{bson.M{"filename": filename}, bson.M{"savedFilename": filename}}}
	opts := options.FindOne().SetSort(bson.D{{Key: "uploadDate", Value: -1}})

	var rec rfpRecord
	if err := s.rfps.FindOne(ctx, filter, opts).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.WrapError(domain.ErrNotFound, "find rfp document", fmt.Errorf("rfp document %q", filename))
		}
		return nil, fmt.Errorf("find rfp document: %w", err)
	}
	return &domain.RFPDocument{
		ID:            rec.ID,
		Content:       rec.Content,
		Filename:      rec.Filename,
		SavedFilename: rec.SavedFilename,
		UploadDate:    rec.UploadDate.UTC(),
		FilePath:      rec.FilePath,
		Pages:         rec.Pages,
	}, nil
}

func (s *Store) ListRFPDocuments(ctx context.Context) ([]domain.DocumentSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "uploadDate", Value: -1}}).
		SetProjection(bson.M{"content": 0})
	cur, err := s.rfps.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list rfp documents: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]domain.DocumentSummary, 0)
	for cur.Next(ctx) {
		var rec rfpRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode rfp document: %w", err)
		}
		out = append(out, domain.DocumentSummary{
			ID:            rec.ID,
			Filename:      rec.Filename,
			SavedFilename: rec.SavedFilename,
			Pages:         rec.Pages,
			UploadDate:    rec.UploadDate.UTC(),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate rfp documents: %w", err)
	}
	return out, nil
}

func (s *Store) CreateBrandGuide(ctx context.Context, guide *domain.BrandGuide) error {
	_, err := s.guides.InsertOne(ctx, brandGuideRecord{
		ID:           guide.ID,
		BrandName:    guide.BrandName,
		Filename:     guide.Filename,
		Content:      guide.Content,
		ColorPalette: guide.ColorPalette,
		Typography:   guide.Typography,
		VoiceTone:    guide.VoiceTone,
		Pages:        guide.Pages,
		UploadDate:   guide.UploadDate,
	})
	if err != nil {
		return fmt.Errorf("insert brand guide: %w", err)
	}
	return nil
}

func (s *Store) FindBrandGuide(ctx context.Context, filename string) (*domain.BrandGuide, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "uploadDate", Value: -1}})

	var rec brandGuideRecord
	if err := s.guides.FindOne(ctx, bson.M{"filename": filename}, opts).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.WrapError(domain.ErrNotFound, "find brand guide", fmt.Errorf("brand guide %q", filename))
		}
		return nil, fmt.Errorf("find brand guide: %w", err)
	}
	return &domain.BrandGuide{
		ID:           rec.ID,
		BrandName:    rec.BrandName,
		Content:      rec.Content,
		Filename:     rec.Filename,
		ColorPalette: rec.ColorPalette,
		Typography:   rec.Typography,
		VoiceTone:    rec.VoiceTone,
		Pages:        rec.Pages,
		UploadDate:   rec.UploadDate.UTC(),
	}, nil
}

func (s *Store) ListBrandGuides(ctx context.Context) ([]domain.DocumentSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "uploadDate", Value: -1}}).
		SetProjection(bson.M{"content": 0})
	cur, err := s.guides.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list brand guides: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]domain.DocumentSummary, 0)
	for cur.Next(ctx) {
		var rec brandGuideRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode brand guide: %w", err)
		}
		out = append(out, domain.DocumentSummary{
			ID:         rec.ID,
			Filename:   rec.Filename,
			BrandName:  rec.BrandName,
			Pages:      rec.Pages,
			UploadDate: rec.UploadDate.UTC(),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate brand guides: %w", err)
	}
	return out, nil
}

func (s *Store) CreateGeneration(ctx context.Context, generation *domain.SlideGeneration) error {
	slidesJSON, err := json.Marshal(generation.Slides)
	if err != nil {
		return fmt.Errorf("marshal slides: %w", err)
	}
	_, err = s.generations.InsertOne(ctx, generationRecord{
		ID:                 generation.ID,
		RFPFilename:        generation.RFPFilename,
		BrandGuideFilename: generation.BrandGuideFilename,
		SlideCount:         generation.SlideCount,
		Slides:             string(slidesJSON),
		Status:             string(generation.Status),
		GeneratedDate:      generation.GeneratedDate,
	})
	if err != nil {
		return fmt.Errorf("insert slide generation: %w", err)
	}
	return nil
}

func (s *Store) GetGeneration(ctx context.Context, id string) (*domain.SlideGeneration, error) {
	var rec generationRecord
	if err := s.generations.FindOne(ctx, bson.M{"id": id}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.WrapError(domain.ErrNotFound, "get generation", fmt.Errorf("generation %s", id))
		}
		return nil, fmt.Errorf("get generation: %w", err)
	}
	return rec.toDomain()
}

func (s *Store) ListGenerations(ctx context.Context, limit int) ([]domain.SlideGeneration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "generatedDate", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.generations.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]domain.SlideGeneration, 0)
	for cur.Next(ctx) {
		var rec generationRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode generation: %w", err)
		}
		generation, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *generation)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate generations: %w", err)
	}
	return out, nil
}

func (r generationRecord) toDomain() (*domain.SlideGeneration, error) {
	generation := &domain.SlideGeneration{
		ID:                 r.ID,
		RFPFilename:        r.RFPFilename,
		BrandGuideFilename: r.BrandGuideFilename,
		SlideCount:         r.SlideCount,
		GeneratedDate:      r.GeneratedDate.UTC(),
		Status:             domain.GenerationStatus(r.Status),
	}
	if r.Slides != "" {
		if err := json.Unmarshal([]byte(r.Slides), &generation.Slides); err != nil {
			return nil, fmt.Errorf("unmarshal slides: %w", err)
		}
	}
	return generation, nil
}
