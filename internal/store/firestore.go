package store

import (
	"context"
	"errors"
	"fmt"
	"path"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

// Firestore keeps documents at users/{uid}/{collection}/{id}.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (f *Firestore) userRef(uid string) *firestore.DocumentRef {
	return f.client.Collection(usersCollection).Doc(uid)
}

// col accepts nested collection paths such as contacts/{id}/interactions.
func (f *Firestore) col(uid, collection string) *firestore.CollectionRef {
	return f.client.Collection(path.Join(usersCollection, uid, collection))
}

func (f *Firestore) List(ctx context.Context, uid, collection string) ([]Document, error) {
	snaps, err := f.col(uid, collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return toDocuments(snaps)
}

func (f *Firestore) Query(ctx context.Context, uid, collection string, q Query) ([]Document, error) {
	query := f.col(uid, collection).Query
	if q.Since != "" {
		query = query.Where(q.Field, ">=", q.Since)
	}
	dir := firestore.Asc
	if q.Desc {
		dir = firestore.Desc
	}
	query = query.OrderBy(q.Field, dir)
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query %s by %s: %w", collection, q.Field, err)
	}
	return toDocuments(snaps)
}

func (f *Firestore) Get(ctx context.Context, uid, collection, id string) (Document, error) {
	snap, err := f.col(uid, collection).Doc(id).Get(ctx)
	if err != nil {
		return Document{}, notFound(err, "get %s/%s", collection, id)
	}
	docs, err := toDocuments([]*firestore.DocumentSnapshot{snap})
	if err != nil {
		return Document{}, err
	}
	return docs[0], nil
}

func (f *Firestore) Create(ctx context.Context, uid, collection string, data map[string]any) (string, error) {
	ref, _, err := f.col(uid, collection).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("create in %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (f *Firestore) Set(ctx context.Context, uid, collection, id string, data map[string]any, merge bool) error {
	var err error
	if merge {
		_, err = f.col(uid, collection).Doc(id).Set(ctx, data, firestore.MergeAll)
	} else {
		_, err = f.col(uid, collection).Doc(id).Set(ctx, data)
	}
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f *Firestore) Update(ctx context.Context, uid, collection, id string, fields map[string]any) error {
	_, err := f.col(uid, collection).Doc(id).Update(ctx, toUpdates(fields))
	if err != nil {
		return notFound(err, "update %s/%s", collection, id)
	}
	return nil
}

func (f *Firestore) Delete(ctx context.Context, uid, collection, id string) error {
	if _, err := f.col(uid, collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f *Firestore) DeleteAll(ctx context.Context, uid string, collections []string) error {
	bw := f.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob

	for _, collection := range collections {
		refs, err := f.col(uid, collection).DocumentRefs(ctx).GetAll()
		if err != nil {
			bw.End()
			return fmt.Errorf("list %s for delete: %w", collection, err)
		}
		for _, ref := range refs {
			job, err := bw.Delete(ref)
			if err != nil {
				bw.End()
				return fmt.Errorf("queue delete %s/%s: %w", collection, ref.ID, err)
			}
			jobs = append(jobs, job)
		}
	}
	bw.End()

	var errs []error
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("delete user data: %w", errors.Join(errs...))
	}
	return nil
}

func (f *Firestore) GetUser(ctx context.Context, uid string) (map[string]any, error) {
	snap, err := f.userRef(uid).Get(ctx)
	if err != nil {
		return nil, notFound(err, "get user %s", uid)
	}
	return normalize(snap.Data())
}

func (f *Firestore) SetUser(ctx context.Context, uid string, data map[string]any, merge bool) error {
	var err error
	if merge {
		_, err = f.userRef(uid).Set(ctx, data, firestore.MergeAll)
	} else {
		_, err = f.userRef(uid).Set(ctx, data)
	}
	if err != nil {
		return fmt.Errorf("set user %s: %w", uid, err)
	}
	return nil
}

func (f *Firestore) UpdateUser(ctx context.Context, uid string, fields map[string]any) error {
	if _, err := f.userRef(uid).Update(ctx, toUpdates(fields)); err != nil {
		return notFound(err, "update user %s", uid)
	}
	return nil
}

// ListUserIDs includes users whose document was never written but who own
// subcollections, which DocumentRefs reports as missing documents.
func (f *Firestore) ListUserIDs(ctx context.Context) ([]string, error) {
	it := f.client.Collection(usersCollection).DocumentRefs(ctx)
	var ids []string
	for {
		ref, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		ids = append(ids, ref.ID)
	}
	return ids, nil
}

func (f *Firestore) Close() error {
	return f.client.Close()
}

func toDocuments(snaps []*firestore.DocumentSnapshot) ([]Document, error) {
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		data, err := normalize(snap.Data())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", snap.Ref.ID, err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: data})
	}
	return docs, nil
}

func toUpdates(fields map[string]any) []firestore.Update {
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		if inc, ok := value.(Increment); ok {
			value = firestore.Increment(inc.By)
		}
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	return updates
}

func notFound(err error, format string, args ...any) error {
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
