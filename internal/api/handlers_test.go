// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/streambridge/streambridge/internal/config"
	"github.com/streambridge/streambridge/internal/emby"
	"github.com/streambridge/streambridge/internal/metrics"
	"github.com/streambridge/streambridge/internal/models"
)

func testRouterConfig() *config.Config {
	return &config.Config{
		Client: config.ClientConfig{
			Name:       "StreamBridge",
			DeviceID:   "test-device",
			DeviceName: "StreamBridge Test",
			Version:    config.Version,
		},
		Emby: config.EmbyConfig{
			RequestTimeout:  5 * time.Second,
			CatalogPageSize: 50,
			SearchLimit:     10,
			LiveTV:          true,
		},
		Security: config.SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitDisabled: true,
		},
	}
}

// newTestRouter wires the full router against a fake Emby backend.
func newTestRouter(t *testing.T, backend http.Handler) (http.Handler, string) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	cfg := testRouterConfig()
	router := NewRouter(cfg, emby.NewClient(cfg))

	token, err := EncodeUserConfig(models.UserConfig{
		ServerURL:   srv.URL,
		UserID:      "u1",
		AccessToken: "tok123",
	})
	if err != nil {
		t.Fatalf("Encode config: %v", err)
	}
	return router, token
}

func doJSON(t *testing.T, router http.Handler, path string, v interface{}) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if v != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
			t.Fatalf("Decode %s: %v", path, err)
		}
	}
	return rec
}

func emptyBackend(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeItems(t, w, models.EmbyItemsResponse{})
	})
}

func writeItems(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("Encode backend response: %v", err)
	}
}

func TestBaseManifest(t *testing.T) {
	router, _ := newTestRouter(t, emptyBackend(t))

	var m models.Manifest
	rec := doJSON(t, router, "/manifest.json", &m)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	if !m.BehaviorHints.ConfigurationRequired || !m.BehaviorHints.Configurable {
		t.Errorf("Base manifest hints = %+v", m.BehaviorHints)
	}
	if len(m.Catalogs) != 0 {
		t.Errorf("Base manifest must carry no catalogs, got %d", len(m.Catalogs))
	}
}

func TestPersonalisedManifest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Users/u1/Views", func(w http.ResponseWriter, r *http.Request) {
		writeItems(t, w, models.EmbyViewsResponse{Items: []models.EmbyView{
			{ID: "lib1", Name: "Movies", CollectionType: "movies"},
		}})
	})
	mux.HandleFunc("/LiveTv/Channels", func(w http.ResponseWriter, r *http.Request) {
		writeItems(t, w, models.EmbyItemsResponse{TotalRecordCount: 3})
	})
	router, token := newTestRouter(t, mux)

	var m models.Manifest
	rec := doJSON(t, router, "/"+token+"/manifest.json", &m)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	if m.BehaviorHints.ConfigurationRequired {
		t.Error("Configured manifest must not require configuration")
	}
	if !strings.HasPrefix(m.ID, "org.streambridge.emby.") {
		t.Errorf("ID = %q, want per-config suffix", m.ID)
	}
	if !strings.Contains(m.Name, "127.0.0.1") {
		t.Errorf("Name = %q, want server host", m.Name)
	}

	ids := make([]string, 0, len(m.Catalogs))
	for _, c := range m.Catalogs {
		ids = append(ids, c.ID)
	}
	want := []string{"lib1", "lib1::lastAdded", emby.LiveTVCatalogID}
	for _, id := range want {
		found := false
		for _, got := range ids {
			if got == id {
				found = true
			}
		}
		if !found {
			t.Errorf("Catalog %q missing from %v", id, ids)
		}
	}
}

func TestManifestInvalidToken(t *testing.T) {
	router, _ := newTestRouter(t, emptyBackend(t))
	rec := doJSON(t, router, "/not-a-token/manifest.json", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

func TestCatalogEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Users/u1/Items", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("SearchTerm"); got != "matrix" {
			t.Errorf("SearchTerm = %q", got)
		}
		writeItems(t, w, models.EmbyItemsResponse{Items: []models.EmbyItem{
			{ID: "42", Name: "The Matrix", Type: "Movie", ProviderIDs: map[string]string{"Imdb": "tt0133093"}},
		}})
	})
	router, token := newTestRouter(t, mux)

	var resp models.CatalogResponse
	rec := doJSON(t, router, "/"+token+"/catalog/movie/lib1/search=matrix.json", &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	if len(resp.Metas) != 1 || resp.Metas[0].ID != "tt0133093" {
		t.Errorf("Metas = %+v", resp.Metas)
	}
}

func TestCatalogEndpointDegradesToEmpty(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	router, token := newTestRouter(t, backend)

	var resp models.CatalogResponse
	rec := doJSON(t, router, "/"+token+"/catalog/movie/lib1.json", &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, failures must degrade to 200", rec.Code)
	}
	if resp.Metas == nil || len(resp.Metas) != 0 {
		t.Errorf("Metas must be an empty array, got %v", resp.Metas)
	}
}

func TestMetaEndpointNullOnMiss(t *testing.T) {
	router, token := newTestRouter(t, emptyBackend(t))

	var resp models.MetaResponse
	rec := doJSON(t, router, "/"+token+"/meta/movie/tt9999999.json", &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	if resp.Meta != nil {
		t.Errorf("Meta = %+v, want null", resp.Meta)
	}
}

func TestStreamEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Items", func(w http.ResponseWriter, r *http.Request) {
		writeItems(t, w, models.EmbyItemsResponse{Items: []models.EmbyItem{
			{ID: "42", Name: "The Matrix", Type: "Movie", ProviderIDs: map[string]string{"Imdb": "tt0133093"}},
		}})
	})
	mux.HandleFunc("/Items/42/PlaybackInfo", func(w http.ResponseWriter, r *http.Request) {
		writeItems(t, w, models.EmbyPlaybackInfo{MediaSources: []models.EmbyMediaSource{
			{ID: "src1", Container: "mkv", MediaStreams: []models.EmbyMediaStream{
				{Type: "Video", Codec: "h264", Height: 1080},
			}},
		}})
	})
	router, token := newTestRouter(t, mux)

	var resp models.StreamsResponse
	rec := doJSON(t, router, "/"+token+"/stream/movie/tt0133093.json", &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	if len(resp.Streams) != 1 {
		t.Fatalf("Streams = %+v", resp.Streams)
	}
	s := resp.Streams[0]
	if !strings.Contains(s.URL, "/Videos/42/stream.mkv") {
		t.Errorf("URL = %q", s.URL)
	}
	if !strings.HasPrefix(s.Name, "StreamBridge") {
		t.Errorf("Name = %q", s.Name)
	}
	if s.Title != "The Matrix" {
		t.Errorf("Title = %q", s.Title)
	}
}

func TestStreamEndpointEmptyOnMiss(t *testing.T) {
	router, token := newTestRouter(t, emptyBackend(t))

	var resp models.StreamsResponse
	rec := doJSON(t, router, "/"+token+"/stream/movie/tt9999999.json", &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	if resp.Streams == nil || len(resp.Streams) != 0 {
		t.Errorf("Streams must be an empty array, got %v", resp.Streams)
	}
}

func TestSubtitleProxy(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Videos/42/src1/Subtitles/2/Stream.srt", func(w http.ResponseWriter, r *http.Request) {
		// Windows-1252 payload with 0xE9 for é.
		_, _ = w.Write([]byte{'c', 'a', 'f', 0xE9, '\r', '\n'})
	})
	router, token := newTestRouter(t, mux)

	rec := doJSON(t, router, "/"+token+"/subtitle/42/src1/2.srt", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "café\n" {
		t.Errorf("Body = %q, want normalized UTF-8", got)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestSubtitleProxyRejectsNonText(t *testing.T) {
	router, token := newTestRouter(t, emptyBackend(t))

	rec := doJSON(t, router, "/"+token+"/subtitle/42/src1/2.pgs", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want 404 for bitmap formats", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, emptyBackend(t))

	var body map[string]string
	rec := doJSON(t, router, "/healthz", &body)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	if body["status"] != "healthy" || body["version"] == "" {
		t.Errorf("Body = %v", body)
	}
}

func TestRootRedirectsToConfigure(t *testing.T) {
	router, _ := newTestRouter(t, emptyBackend(t))

	rec := doJSON(t, router, "/", nil)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/configure" {
		t.Errorf("Status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestConfigurePageServed(t *testing.T) {
	router, _ := newTestRouter(t, emptyBackend(t))

	rec := doJSON(t, router, "/configure", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "StreamBridge") {
		t.Error("Configure page content missing")
	}
}

func TestRenderStreamBehaviorHints(t *testing.T) {
	stream := renderStream(models.StreamDescriptor{
		DirectPlayURL: "http://emby:8096/Videos/42/stream.mkv",
		ItemName:      "The Matrix",
		MediaSourceID: "src1",
		QualityTitle:  "1080p H264",
		Subtitles: []models.SubtitleDescriptor{
			{ID: "3", URL: "http://addon/sub.srt", Lang: "ger", Forced: true},
		},
	})

	if stream.BehaviorHints == nil {
		t.Fatal("Stream must carry behavior hints")
	}
	if !stream.BehaviorHints.NotWebReady {
		t.Error("Non-live stream must be notWebReady")
	}
	if stream.BehaviorHints.BingeGroup != "streambridge-1080p H264" {
		t.Errorf("BingeGroup = %q", stream.BehaviorHints.BingeGroup)
	}
	if len(stream.Subtitles) != 1 || !stream.Subtitles[0].Forced {
		t.Errorf("Subtitles = %+v, forced flag lost", stream.Subtitles)
	}
}

func TestRenderStreamLive(t *testing.T) {
	stream := renderStream(models.StreamDescriptor{
		DirectPlayURL: "http://emby:8096/LiveTv/ch1/stream.ts",
		ItemName:      "1 News",
		MediaSourceID: "ch1",
		IsLive:        true,
	})

	if stream.BehaviorHints == nil || !stream.BehaviorHints.Live {
		t.Fatalf("Live stream hints = %+v", stream.BehaviorHints)
	}
	if stream.BehaviorHints.NotWebReady {
		t.Error("Live streams are not marked notWebReady")
	}
	if stream.BehaviorHints.BingeGroup != "streambridge-ch1" {
		t.Errorf("BingeGroup = %q", stream.BehaviorHints.BingeGroup)
	}
}

func TestParseCatalogExtraSort(t *testing.T) {
	opts := parseCatalogExtra("sort=lastAdded")
	if opts.Sort != "lastAdded" {
		t.Errorf("Sort = %q, want lastAdded", opts.Sort)
	}
	if opts := parseCatalogExtra("sort=name&skip=40"); opts.Sort != "name" || opts.Skip != 40 {
		t.Errorf("Options = %+v", opts)
	}
	if opts := parseCatalogExtra("sort=bogus"); opts.Sort != "" {
		t.Errorf("Unknown sort must be dropped, got %q", opts.Sort)
	}
}

func TestCatalogSortExtraReachesServer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Users/u1/Items", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("SortBy") != "DateCreated" || q.Get("SortOrder") != "Descending" {
			t.Errorf("Sort = %q/%q, want DateCreated/Descending", q.Get("SortBy"), q.Get("SortOrder"))
		}
		writeItems(t, w, models.EmbyItemsResponse{Items: []models.EmbyItem{
			{ID: "1", Name: "Recent", Type: "Movie"},
		}})
	})
	router, token := newTestRouter(t, mux)

	var resp models.CatalogResponse
	rec := doJSON(t, router, "/"+token+"/catalog/movie/lib1/sort=lastAdded.json", &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
}

func TestManifestAdvertisesSortExtra(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Users/u1/Views", func(w http.ResponseWriter, r *http.Request) {
		writeItems(t, w, models.EmbyViewsResponse{Items: []models.EmbyView{
			{ID: "lib1", Name: "Movies", CollectionType: "movies"},
		}})
	})
	mux.HandleFunc("/LiveTv/Channels", func(w http.ResponseWriter, r *http.Request) {
		writeItems(t, w, models.EmbyItemsResponse{})
	})
	router, token := newTestRouter(t, mux)

	var m models.Manifest
	doJSON(t, router, "/"+token+"/manifest.json", &m)

	var base *models.ManifestCatalog
	for i := range m.Catalogs {
		if m.Catalogs[i].ID == "lib1" {
			base = &m.Catalogs[i]
		}
	}
	if base == nil {
		t.Fatalf("Catalog lib1 missing from %+v", m.Catalogs)
	}
	found := false
	for _, extra := range base.Extra {
		if extra.Name == "sort" {
			found = true
			if len(extra.Options) != 2 || extra.Options[0] != "name" || extra.Options[1] != "lastAdded" {
				t.Errorf("Sort options = %v", extra.Options)
			}
		}
	}
	if !found {
		t.Errorf("Sort extra missing from %+v", base.Extra)
	}
}

func TestInvalidTokenCountsUnauthorized(t *testing.T) {
	router, _ := newTestRouter(t, emptyBackend(t))

	before := testutil.ToFloat64(metrics.HTTPUnauthorizedRequests)
	rec := doJSON(t, router, "/not-a-token/stream/movie/tt0133093.json", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Status = %d, want 400", rec.Code)
	}
	if got := testutil.ToFloat64(metrics.HTTPUnauthorizedRequests); got != before+1 {
		t.Errorf("Unauthorized counter = %v, want %v", got, before+1)
	}
}
