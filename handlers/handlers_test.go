package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bounceBackAPI/internal/llm"
	"bounceBackAPI/internal/store"
	"bounceBackAPI/middleware"
	"bounceBackAPI/services"
)

type tokenAsUID struct{}

func (tokenAsUID) Verify(ctx context.Context, token string) (string, error) {
	if token == "invalid" {
		return "", errors.New("invalid token")
	}
	return token, nil
}

type echoModel struct{}

func (echoModel) Complete(ctx context.Context, system string, history []llm.Message) (string, error) {
	return `{"message":"` + history[len(history)-1].Content + `","actions":[],"tags":["echo"]}`, nil
}

func newTestRouter(t *testing.T) (*mux.Router, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	logger := zap.NewNop()

	progress := services.NewProgressService(st, logger)
	h := &Handlers{
		Chore:    NewChoreHandler(services.NewChoreService(st, logger), logger),
		Progress: NewProgressHandler(progress, logger),
		Contact:  NewContactHandler(services.NewContactService(st, logger), logger),
		Journal:  NewJournalHandler(services.NewJournalService(st, nil, logger), logger),
		Activity: NewActivityHandler(services.NewActivityService(st, logger), logger),
		Zone:     NewZoneHandler(services.NewZoneService(st, logger), logger),
		Profile:  NewProfileHandler(services.NewProfileService(st, logger), logger),
		Data:     NewDataHandler(services.NewDataService(st, logger), logger),
		Chat:     NewChatHandler(services.NewChatService(st, progress, echoModel{}, logger), logger),
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.AuthMiddleware(tokenAsUID{}, logger))
	h.Register(api)
	return r, st
}

func call(t *testing.T, r http.Handler, uid, function string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/"+function, &buf)
	if uid != "" {
		req.Header.Set("Authorization", "Bearer "+uid)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func TestChoreCallables(t *testing.T) {
	r, _ := newTestRouter(t)

	code, out := call(t, r, "u1", "addChore", map[string]any{
		"name": "Dishes", "frequency": "day", "importance": "high",
	})
	require.Equal(t, http.StatusOK, code, out)
	assert.Equal(t, true, out["success"])
	id := out["id"].(string)

	code, out = call(t, r, "u1", "completeChore", map[string]any{"choreId": id})
	require.Equal(t, http.StatusOK, code, out)

	code, out = call(t, r, "u1", "getChores", nil)
	require.Equal(t, http.StatusOK, code)
	chores := out["chores"].([]any)
	require.Len(t, chores, 1)
	assert.Equal(t, true, chores[0].(map[string]any)["isCompleted"])
	assert.Equal(t, float64(1), chores[0].(map[string]any)["completionCount"])

	code, out = call(t, r, "u1", "getChoreProgress", map[string]any{"timeRange": "day"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(100), out["progress"].(map[string]any)["completionRate"])

	code, _ = call(t, r, "u2", "getChores", nil)
	assert.Equal(t, http.StatusOK, code)

	code, out = call(t, r, "u1", "deleteChore", map[string]any{"choreId": "missing"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Chore not found", out["error"])
}

func TestCallableErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	code, out := call(t, r, "", "getChores", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.NotEmpty(t, out["error"])

	code, _ = call(t, r, "invalid", "getChores", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, out = call(t, r, "u1", "addChore", map[string]any{"name": "x", "frequency": "hourly", "importance": "low"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, out["error"], "frequency")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/addChore", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer u1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpstreamFailureHidesDetails(t *testing.T) {
	r, st := newTestRouter(t)
	st.FailOn = func(op, collection, id string) error {
		return errors.New("connection reset by peer 10.0.0.7")
	}

	code, out := call(t, r, "u1", "getChores", nil)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "Failed to get chores", out["error"])
}

func TestTrackUserProgressCallable(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, text := range []string{"one", "two", "three"} {
		code, out := call(t, r, "u1", "addJournalEntry", map[string]any{"entry": text})
		require.Equal(t, http.StatusOK, code, out)
	}

	code, out := call(t, r, "u1", "trackUserProgress", nil)
	require.Equal(t, http.StatusOK, code, out)
	journals := out["userData"].(map[string]any)["journals"].(map[string]any)
	assert.Equal(t, 1.5, journals["analytics"].(map[string]any)["entriesPerWeek"])

	code, out = call(t, r, "u1", "getProgressSnapshot", nil)
	require.Equal(t, http.StatusOK, code, out)
	assert.NotEmpty(t, out["snapshot"].(map[string]any)["dateKey"])
}

func TestProfileAndChatCallables(t *testing.T) {
	r, _ := newTestRouter(t)

	code, out := call(t, r, "u1", "chatWithBounceBot", map[string]any{
		"message": []map[string]string{{"role": "user", "content": "hello"}},
	})
	assert.Equal(t, http.StatusNotFound, code, out)

	code, out = call(t, r, "u1", "createUserData", map[string]any{"displayName": "Jo"})
	require.Equal(t, http.StatusOK, code, out)

	code, out = call(t, r, "u1", "getOnboardingStatus", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, out["onboardingComplete"])

	code, _ = call(t, r, "u1", "updateUserData", map[string]any{"profile": map[string]any{"onboardingComplete": true}})
	require.Equal(t, http.StatusOK, code)

	code, out = call(t, r, "u1", "getProfile", nil)
	require.Equal(t, http.StatusOK, code)
	p := out["profile"].(map[string]any)
	assert.Equal(t, "Jo", p["name"])
	assert.Equal(t, true, p["onboardingComplete"])

	code, out = call(t, r, "u1", "chatWithBounceBot", map[string]any{
		"message": []map[string]string{{"role": "user", "content": "hello"}},
		"mode":    "Companion",
	})
	require.Equal(t, http.StatusOK, code, out)
	assert.Equal(t, "hello", out["parsed"].(map[string]any)["message"])
}

func TestActivityAndZoneCallables(t *testing.T) {
	r, _ := newTestRouter(t)

	code, out := call(t, r, "u1", "startWorkout", map[string]any{"type": "outdoor_activity"})
	require.Equal(t, http.StatusOK, code, out)
	workoutID := out["workoutId"].(string)

	code, out = call(t, r, "u1", "endWorkout", map[string]any{
		"workoutId": workoutID, "duration": 300, "type": "outdoor_activity", "distance": 800,
	})
	require.Equal(t, http.StatusOK, code, out)
	assert.Equal(t, float64(5), out["xpGained"])

	code, out = call(t, r, "u1", "getActivities", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["activities"], 1)

	code, out = call(t, r, "u1", "addAvoidanceZone", map[string]any{"label": "Bar", "lat": 1.5, "lng": 2.5, "radius": 100})
	require.Equal(t, http.StatusOK, code, out)

	code, out = call(t, r, "u1", "getAvoidanceZones", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["zones"], 1)
}

func TestDataCallables(t *testing.T) {
	r, st := newTestRouter(t)
	require.NoError(t, st.Set(context.Background(), "u1", store.Journals, "j1", map[string]any{"text": "x"}, false))

	code, out := call(t, r, "u1", "getDataTypes", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["dataTypes"], 7)

	code, out = call(t, r, "u1", "deleteUserData", map[string]any{"collections": []string{"journals"}})
	require.Equal(t, http.StatusOK, code, out)

	code, out = call(t, r, "u1", "getJournalEntries", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, out["entries"])
}

func TestContactCallables(t *testing.T) {
	r, _ := newTestRouter(t)

	code, out := call(t, r, "u1", "addContact", map[string]any{"name": "Sam", "phone": "555", "closenessRating": 4})
	require.Equal(t, http.StatusOK, code, out)
	id := out["id"].(string)

	code, out = call(t, r, "u1", "trackContactInteraction", map[string]any{"contactId": id, "interactionType": "call"})
	require.Equal(t, http.StatusOK, code, out)

	code, out = call(t, r, "u1", "getContacts", nil)
	require.Equal(t, http.StatusOK, code)
	contacts := out["contacts"].([]any)
	require.Len(t, contacts, 1)
	assert.NotContains(t, contacts[0].(map[string]any), "closenessRating")
	assert.NotNil(t, contacts[0].(map[string]any)["lastContacted"])

	code, out = call(t, r, "u1", "getContactInteractions", map[string]any{"contactId": id})
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["interactions"], 1)
}
