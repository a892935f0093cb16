// Package mongo implements the store interface for MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mgo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/store"
)

const connectTimeout = 5 * time.Second

// Mongo implements a connection to a MongoDB database.
type Mongo struct {
	c  *mgo.Client
	db string
}

// mongoEscrow implements a stored escrow in MongoDB.
type mongoEscrow struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	ClientAddress     string             `bson:"client_address"`
	FreelancerAddress string             `bson:"freelancer_address"`
	Amount            float64            `bson:"amount"`
	TokenSymbol       string             `bson:"token_symbol"`
	Status            string             `bson:"status"`
	RiskScore         float64            `bson:"risk_score"`
	CreatedAt         time.Time          `bson:"created_at"`
}

// Escrow converts a mongoEscrow to store.Escrow type.
func (e mongoEscrow) Escrow() store.Escrow {
	return store.Escrow{
		ID:                e.ID.Hex(),
		ClientAddress:     e.ClientAddress,
		FreelancerAddress: e.FreelancerAddress,
		Amount:            e.Amount,
		TokenSymbol:       e.TokenSymbol,
		Status:            e.Status,
		RiskScore:         e.RiskScore,
		CreatedAt:         e.CreatedAt,
	}
}

// New returns a Mongo client connection to the specified MongoDB uri using database db.
func New(uri, db string) (*Mongo, error) {
	c, err := mgo.NewClient(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongo DB in %s: %w", uri, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err = c.Connect(ctx); err != nil {
		return nil, fmt.Errorf("error connecting to mongo DB: %w", err)
	}

	return &Mongo{c: c, db: db}, nil
}

// CloseMongo will close a database connection. Must be called at termination time.
func (m *Mongo) CloseMongo() error {
	return m.c.Disconnect(context.Background())
}

func (m *Mongo) escrows() *mgo.Collection {
	return m.c.Database(m.db).Collection("escrows")
}

func (m *Mongo) messages() *mgo.Collection {
	return m.c.Database(m.db).Collection("messages")
}

// CreateEscrow inserts a new escrow document and returns the assigned id.
func (m *Mongo) CreateEscrow(ctx context.Context, e store.Escrow) (string, error) {
	res, err := m.escrows().InsertOne(ctx, mongoEscrow{
		ClientAddress:     e.ClientAddress,
		FreelancerAddress: e.FreelancerAddress,
		Amount:            e.Amount,
		TokenSymbol:       e.TokenSymbol,
		Status:            e.Status,
		RiskScore:         e.RiskScore,
		CreatedAt:         e.CreatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("could not insert escrow in db: %w", err)
	}

	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// GetEscrow returns the escrow document for the given id.
func (m *Mongo) GetEscrow(ctx context.Context, id string) (store.Escrow, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.Escrow{}, store.ErrNotFound
	}

	var e mongoEscrow
	if err = m.escrows().FindOne(ctx, bson.M{"_id": oid}).Decode(&e); err != nil {
		if errors.Is(err, mgo.ErrNoDocuments) {
			return store.Escrow{}, store.ErrNotFound
		}

		return store.Escrow{}, fmt.Errorf("could not get escrow from db: %w", err)
	}

	return e.Escrow(), nil
}

// UpdateStatus moves the escrow to newStatus. The filter includes the permitted source statuses so the update is a
// single-document compare-and-swap: a racing transition that loses finds no document to update.
func (m *Mongo) UpdateStatus(ctx context.Context, id, newStatus string) (store.Escrow, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.Escrow{}, store.ErrNotFound
	}

	sources := store.SourceStatuses(newStatus)
	if len(sources) == 0 {
		return store.Escrow{}, store.ErrInvalidTransition
	}

	filter := bson.M{"_id": oid, "status": bson.M{"$in": sources}}
	update := bson.M{"$set": bson.M{"status": newStatus}}

	var e mongoEscrow

	err = m.escrows().FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&e)
	if errors.Is(err, mgo.ErrNoDocuments) {
		// either the escrow does not exist or its current status does not permit the transition
		if _, errGet := m.GetEscrow(ctx, id); errGet != nil {
			return store.Escrow{}, errGet
		}

		return store.Escrow{}, store.ErrInvalidTransition
	}

	if err != nil {
		return store.Escrow{}, fmt.Errorf("could not update escrow status in db: %w", err)
	}

	return e.Escrow(), nil
}

// AddMessage appends a chat message to the escrow thread, assigning its timestamp.
func (m *Mongo) AddMessage(ctx context.Context, msg store.ChatMessage) (store.ChatMessage, error) {
	// the escrow must exist
	if _, err := m.GetEscrow(ctx, msg.EscrowID); err != nil {
		return store.ChatMessage{}, err
	}

	msg.Timestamp = time.Now().UTC()

	_, err := m.messages().InsertOne(ctx, msg)
	if err != nil {
		return store.ChatMessage{}, fmt.Errorf("could not insert message in db: %w", err)
	}

	return msg, nil
}

// GetMessages returns the escrow's messages in insertion order.
func (m *Mongo) GetMessages(ctx context.Context, escrowID string) ([]store.ChatMessage, error) {
	cur, err := m.messages().Find(ctx, bson.M{"escrow_id": escrowID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("could not get messages from db: %w", err)
	}
	defer cur.Close(ctx)

	msgs := []store.ChatMessage{}

	for cur.Next(ctx) {
		var msg store.ChatMessage
		if err = cur.Decode(&msg); err != nil {
			return nil, fmt.Errorf("could not decode message from db: %w", err)
		}

		msgs = append(msgs, msg)
	}

	return msgs, nil
}
