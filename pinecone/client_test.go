package pinecone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"nyayamitra-backend/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(nil, Config{
		APIKey:    "test-key",
		IndexHost: srv.URL,
		Namespace: "statutes",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestUpsertSendsVectorsAndHeaders(t *testing.T) {
	var gotPath, gotKey, gotVersion string
	var gotBody upsertRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("Api-Key")
		gotVersion = r.Header.Get("X-Pinecone-Api-Version")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"upsertedCount":2}`))
	})

	records := []models.VectorRecord{
		{ID: "ipc_378", Values: []float32{0.1, 0.2}, Metadata: map[string]interface{}{"act": "IPC"}},
		{ID: "ipc_379", Values: []float32{0.3, 0.4}},
	}
	if err := c.Upsert(context.Background(), records); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if gotPath != "/vectors/upsert" {
		t.Errorf("path = %q, want /vectors/upsert", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("Api-Key = %q, want test-key", gotKey)
	}
	if gotVersion != "2025-10" {
		t.Errorf("X-Pinecone-Api-Version = %q, want default 2025-10", gotVersion)
	}
	if gotBody.Namespace != "statutes" {
		t.Errorf("namespace = %q, want statutes", gotBody.Namespace)
	}
	if len(gotBody.Vectors) != 2 || gotBody.Vectors[0].ID != "ipc_378" {
		t.Errorf("vectors not forwarded: %+v", gotBody.Vectors)
	}
}

func TestUpsertEmptyIsNoop(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	if err := c.Upsert(context.Background(), nil); err != nil {
		t.Fatalf("Upsert(nil): %v", err)
	}
	if called {
		t.Error("empty upsert should not hit the API")
	}
}

func TestQueryParsesMatches(t *testing.T) {
	var gotBody queryRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query" {
			t.Errorf("path = %q, want /query", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"matches":[
			{"id":"ipc_378","score":0.91,"metadata":{"act":"IPC","section":"378"}},
			{"id":"ipc_379","score":0.85}
		]}`))
	})

	matches, err := c.Query(context.Background(), []float32{0.5, 0.5}, 8, true)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if gotBody.TopK != 8 || !gotBody.IncludeMetadata || gotBody.Namespace != "statutes" {
		t.Errorf("request = %+v, want topK=8 includeMetadata=true namespace=statutes", gotBody)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].ID != "ipc_378" || matches[0].Score != 0.91 {
		t.Errorf("first match = %+v", matches[0])
	}
	if matches[0].Metadata["section"] != "378" {
		t.Errorf("metadata not parsed: %+v", matches[0].Metadata)
	}
}

func TestDescribeStatsNormalizesCounts(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int64
	}{
		{
			name: "current field name",
			body: `{"totalRecordCount":120,"dimension":1536,"namespaces":{"statutes":{"recordCount":120}}}`,
			want: 120,
		},
		{
			name: "legacy field name",
			body: `{"totalVectorCount":95,"dimension":1536,"namespaces":{"statutes":{"vectorCount":95}}}`,
			want: 95,
		},
		{
			name: "empty index",
			body: `{"dimension":1536}`,
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			stats, err := c.DescribeStats(context.Background())
			if err != nil {
				t.Fatalf("DescribeStats: %v", err)
			}
			if stats.TotalRecordCount != tt.want {
				t.Errorf("TotalRecordCount = %d, want %d", stats.TotalRecordCount, tt.want)
			}
			if stats.Dimension != 1536 {
				t.Errorf("Dimension = %d, want 1536", stats.Dimension)
			}
			if tt.want > 0 && stats.Namespaces["statutes"] != tt.want {
				t.Errorf("namespace count = %d, want %d", stats.Namespaces["statutes"], tt.want)
			}
		})
	}
}

func TestDeleteAllTreatsMissingNamespaceAsSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vectors/delete" {
			t.Errorf("path = %q, want /vectors/delete", r.URL.Path)
		}
		http.Error(w, `{"code":5,"message":"Namespace not found"}`, http.StatusNotFound)
	})
	if err := c.DeleteAll(context.Background()); err != nil {
		t.Errorf("DeleteAll on missing namespace: %v, want nil", err)
	}
}

func TestDeleteAllSendsDeleteAllFlag(t *testing.T) {
	var gotBody deleteRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{}`))
	})
	if err := c.DeleteAll(context.Background()); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if !gotBody.DeleteAll || gotBody.Namespace != "statutes" {
		t.Errorf("request = %+v, want deleteAll=true namespace=statutes", gotBody)
	}
}

func TestRetryOnServerError(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "upstream hiccup", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"matches":[]}`))
	})

	if _, err := c.Query(context.Background(), []float32{1}, 5, false); err != nil {
		t.Fatalf("Query after retry: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestNoRetryOnBadRequest(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "bad vector dimension", http.StatusBadRequest)
	})

	_, err := c.Query(context.Background(), []float32{1}, 5, false)
	if err == nil {
		t.Fatal("want error on 400")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on client errors)", attempts)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(nil, Config{IndexHost: "h"}); err == nil {
		t.Error("want error for missing API key")
	}
	if _, err := New(nil, Config{APIKey: "k"}); err == nil {
		t.Error("want error for missing index host")
	}
}
