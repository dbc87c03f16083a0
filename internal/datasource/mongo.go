package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/slotgrid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "schedule-snapshots"

type dayDocument struct {
	Date      string                     `bson:"date"`
	IsClosed  bool                       `bson:"isClosed"`
	Timeslots []*slotgrid.TimeslotRecord `bson:"timeslots"`
}

type scheduleDocument struct {
	Key                   string        `bson:"key"`
	Interval              int           `bson:"interval"`
	Provider              []byte        `bson:"provider,omitempty"`
	TransportationOptions []byte        `bson:"transportationOptions,omitempty"`
	Dates                 []dayDocument `bson:"dates"`
	UpdatedAt             time.Time     `bson:"updatedAt"`
}

func newScheduleDocument(key string, s *slotgrid.Schedule) scheduleDocument {
	doc := scheduleDocument{
		Key:                   key,
		Interval:              s.Interval,
		Provider:              s.Provider,
		TransportationOptions: s.TransportationOptions,
		Dates:                 make([]dayDocument, len(s.Dates)),
	}

	for idx, d := range s.Dates {
		doc.Dates[idx] = dayDocument{
			Date:      d.Date,
			IsClosed:  d.IsClosed,
			Timeslots: d.Timeslots,
		}
	}

	return doc
}

func (doc scheduleDocument) toSchedule() *slotgrid.Schedule {
	s := &slotgrid.Schedule{
		Interval:              doc.Interval,
		Provider:              doc.Provider,
		TransportationOptions: doc.TransportationOptions,
		Dates:                 make([]slotgrid.DaySchedule, len(doc.Dates)),
	}

	for idx, d := range doc.Dates {
		s.Dates[idx] = slotgrid.DaySchedule{
			Date:      d.Date,
			IsClosed:  d.IsClosed,
			Timeslots: d.Timeslots,
		}
	}

	return s
}

// MongoSource serves schedule snapshots that have been imported into
// MongoDB, for example for providers that do not expose a timeslot API.
type MongoSource struct {
	col *mongo.Collection
}

func NewMongoSource(ctx context.Context, db *mongo.Database) (*MongoSource, error) {
	s := &MongoSource{
		col: db.Collection(collectionName),
	}

	if err := s.setup(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *MongoSource) setup(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{
				Key:   "key",
				Value: 1,
			},
		},
		Options: options.Index().SetUnique(true),
	})

	return err
}

func (s *MongoSource) Fetch(ctx context.Context, req Request) (*slotgrid.Schedule, error) {
	var doc scheduleDocument

	err := s.col.FindOne(ctx, bson.M{"key": req.Key()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, sourceError(nil, "no schedule snapshot for %s", req)
	}

	if err != nil {
		return nil, sourceError(err, "failed to load schedule snapshot")
	}

	return doc.toSchedule(), nil
}

// Store creates or replaces the snapshot for req.
func (s *MongoSource) Store(ctx context.Context, req Request, schedule *slotgrid.Schedule) error {
	doc := newScheduleDocument(req.Key(), schedule)
	doc.UpdatedAt = time.Now()

	_, err := s.col.ReplaceOne(ctx, bson.M{"key": doc.Key}, doc, options.Replace().SetUpsert(true))

	return err
}
