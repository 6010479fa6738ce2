package firestore

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection names. Organization data lives in subcollections of
// organizations/{organizationID}; the shared threat catalog is a root collection.
const (
	collectionOrganizations   = "organizations"
	collectionThreats         = "threats"
	collectionRisks           = "risks"
	collectionActions         = "improvement_actions"
	collectionTrainings       = "training_records"
	collectionControls        = "controls"
	collectionNonConformities = "non_conformities"
	collectionAudits          = "audits"
	collectionAuditLogs       = "audit_logs"
	collectionCounters        = "counters"
)

type store struct {
	client           *firestore.Client
	collectionPrefix string
}

func (s *store) root(name string) *firestore.CollectionRef {
	if s.collectionPrefix != "" {
		return s.client.Collection(s.collectionPrefix + "_" + name)
	}
	return s.client.Collection(name)
}

func (s *store) org(organizationID, name string) *firestore.CollectionRef {
	return s.root(collectionOrganizations).Doc(organizationID).Collection(name)
}

func docID(id int64) string {
	return fmt.Sprintf("%d", id)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// nextID increments the named counter of an organization in a transaction
// and returns the new value. The first value is 1.
func (s *store) nextID(ctx context.Context, organizationID, counter string) (int64, error) {
	counterRef := s.org(organizationID, collectionCounters).Doc(counter)

	var nextID int64
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if isNotFound(err) {
				nextID = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": nextID,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}

		val, ok := currentValue.(int64)
		if !ok {
			return goerr.New("counter value is not of type int64", goerr.V("value", currentValue))
		}
		nextID = val + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: nextID},
		})
	})

	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next ID", goerr.V("counter", counter))
	}

	return nextID, nil
}

// collect decodes every document of a query
func collect[T any](iter *firestore.DocumentIterator) ([]*T, error) {
	defer iter.Stop()

	results := make([]*T, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents")
		}

		var v T
		if err := docSnap.DataTo(&v); err != nil {
			return nil, goerr.Wrap(err, "failed to decode document", goerr.V("doc_id", docSnap.Ref.ID))
		}
		results = append(results, &v)
	}

	return results, nil
}

// get decodes a single document, wrapping ErrNotFound when it does not exist
func get[T any](ctx context.Context, ref *firestore.DocumentRef, kind string) (*T, error) {
	docSnap, err := ref.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, kind+" not found", goerr.V("id", ref.ID))
		}
		return nil, goerr.Wrap(err, "failed to get "+kind, goerr.V("id", ref.ID))
	}

	var v T
	if err := docSnap.DataTo(&v); err != nil {
		return nil, goerr.Wrap(err, "failed to decode "+kind, goerr.V("id", ref.ID))
	}
	return &v, nil
}

// exists checks a document is present before it is overwritten or deleted
func exists(ctx context.Context, ref *firestore.DocumentRef, kind string) error {
	_, err := ref.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrNotFound, kind+" not found", goerr.V("id", ref.ID))
		}
		return goerr.Wrap(err, "failed to check "+kind+" existence", goerr.V("id", ref.ID))
	}
	return nil
}

func sortByID[T any](items []*T, id func(*T) int64) {
	sort.Slice(items, func(i, j int) bool {
		return id(items[i]) < id(items[j])
	})
}
