package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bounceBackAPI/internal/store"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func ago(d time.Duration) string {
	return fixedNow.Add(-d).Format("2006-01-02T15:04:05.000Z")
}

const day = 24 * time.Hour

func seed(t *testing.T, st store.Store, uid, collection, id string, data map[string]any) {
	t.Helper()
	require.NoError(t, st.Set(context.Background(), uid, collection, id, data, false))
}

func getDoc(t *testing.T, st store.Store, uid, collection, id string) map[string]any {
	t.Helper()
	doc, err := st.Get(context.Background(), uid, collection, id)
	require.NoError(t, err)
	return doc.Data
}
