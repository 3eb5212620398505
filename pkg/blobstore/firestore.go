package blobstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/goliatone/go-aidash/components/dashboard"
)

// DefaultFirestoreCollection holds one document per storage key.
const DefaultFirestoreCollection = "dashboard_state"

type firestoreBlob struct {
	Value []byte `firestore:"value"`
}

// Firestore stores each blob in the "value" field of a document named after the key.
type Firestore struct {
	client     *firestore.Client
	collection string
}

var _ dashboard.BlobStore = (*Firestore)(nil)

// NewFirestore wraps an existing client. An empty collection uses DefaultFirestoreCollection.
func NewFirestore(client *firestore.Client, collection string) (*Firestore, error) {
	if client == nil {
		return nil, errors.New("blobstore: firestore client is required")
	}
	if collection == "" {
		collection = DefaultFirestoreCollection
	}
	return &Firestore{client: client, collection: collection}, nil
}

// OpenFirestore dials Firestore for projectID.
func OpenFirestore(ctx context.Context, projectID, collection string) (*Firestore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("blobstore: firestore client: %w", err)
	}
	return NewFirestore(client, collection)
}

// Load reads the blob for key.
func (f *Firestore) Load(ctx context.Context, key string) ([]byte, error) {
	doc, err := f.client.Collection(f.collection).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, dashboard.ErrBlobNotFound
		}
		return nil, fmt.Errorf("blobstore: get %s: %w", key, err)
	}
	var blob firestoreBlob
	if err := doc.DataTo(&blob); err != nil {
		return nil, fmt.Errorf("blobstore: parse %s: %w", key, err)
	}
	return blob.Value, nil
}

// Save overwrites the document for key.
func (f *Firestore) Save(ctx context.Context, key string, value []byte) error {
	if _, err := f.client.Collection(f.collection).Doc(key).Set(ctx, firestoreBlob{Value: value}); err != nil {
		return fmt.Errorf("blobstore: set %s: %w", key, err)
	}
	return nil
}

// Close releases the client.
func (f *Firestore) Close() error {
	return f.client.Close()
}
