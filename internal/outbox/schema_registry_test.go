package outbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureSchemaReturnsExistingID(t *testing.T) {
	var posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			require.Equal(t, "/subjects/care_events-value/versions/latest", r.URL.Path)
			_, _ = w.Write([]byte(`{"id": 12, "version": 3}`))
		default:
			posts.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	id, err := NewSchemaRegistryClient(srv.URL+"/").EnsureSchema(context.Background(), SchemaSubject, recordLoggedSchema)
	require.NoError(t, err)
	require.Equal(t, 12, id)
	require.Zero(t, posts.Load())
}

func TestEnsureSchemaRegistersMissingSubject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		require.Equal(t, "/subjects/care_events-value/versions", r.URL.Path)
		require.Equal(t, registryContentType, r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "JSON", body["schemaType"])
		require.Equal(t, recordLoggedSchema, body["schema"])
		_, _ = w.Write([]byte(`{"id": 5}`))
	}))
	defer srv.Close()

	id, err := NewSchemaRegistryClient(srv.URL).EnsureSchema(context.Background(), SchemaSubject, recordLoggedSchema)
	require.NoError(t, err)
	require.Equal(t, 5, id)
}

func TestEnsureSchemaSurfacesRegistryErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	_, err := NewSchemaRegistryClient(srv.URL).EnsureSchema(context.Background(), SchemaSubject, recordLoggedSchema)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrSubjectNotFound)
	require.Contains(t, err.Error(), "status 502")
	require.Contains(t, err.Error(), "upstream down")
}
