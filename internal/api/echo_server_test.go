package api

import (
	"bytes"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/esstool/pkg/ess"
	"github.com/samcharles93/esstool/pkg/ess/esstest"
)

func newTestEcho(cfg Config) (*echo.Echo, *SaveStore) {
	store := NewSaveStore()
	server := NewServer(store, cfg)
	e := echo.New()
	server.Register(e)
	return e, store
}

func do(t *testing.T, e *echo.Echo, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, "application/octet-stream")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func sampleBytes(t *testing.T) []byte {
	t.Helper()
	data, _ := esstest.Encode(esstest.Sample(), esstest.Options{})
	return data
}

func TestSaveLifecycle(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(Config{})
	data := sampleBytes(t)

	createRec := do(t, e, http.MethodPost, "/v1/saves", data)
	if createRec.Code != http.StatusCreated {
		t.Fatalf("create status: got %d body=%s", createRec.Code, createRec.Body.String())
	}
	created := decodeBody[SaveResponse](t, createRec)
	if !strings.HasPrefix(created.ID, "save_") {
		t.Fatalf("unexpected id %q", created.ID)
	}
	if created.Size != int64(len(data)) || created.Fingerprint == "" {
		t.Fatalf("unexpected create response: %+v", created)
	}

	dupRec := do(t, e, http.MethodPost, "/v1/saves", data)
	if dupRec.Code != http.StatusOK {
		t.Fatalf("duplicate upload status: got %d", dupRec.Code)
	}
	if dup := decodeBody[SaveResponse](t, dupRec); dup.ID != created.ID {
		t.Fatalf("duplicate upload got new id %q, want %q", dup.ID, created.ID)
	}

	getRec := do(t, e, http.MethodGet, "/v1/saves/"+created.ID, nil)
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status: got %d", getRec.Code)
	}
	got := decodeBody[struct {
		Save struct {
			FileHeader struct {
				MinorVersion int `json:"minor_version"`
			} `json:"file_header"`
			SaveGameHeader struct {
				PlayerName string `json:"player_name"`
			} `json:"save_game_header"`
			Globals struct {
				QuickKeys []*uint32 `json:"quick_keys"`
			} `json:"globals"`
		} `json:"save"`
	}](t, getRec)
	if got.Save.FileHeader.MinorVersion != 125 || got.Save.SaveGameHeader.PlayerName != "Kheros" {
		t.Fatalf("unexpected save: %+v", got.Save)
	}
	if len(got.Save.Globals.QuickKeys) != 8 || got.Save.Globals.QuickKeys[0] == nil || got.Save.Globals.QuickKeys[1] != nil {
		t.Fatalf("unexpected quick keys: %s", getRec.Body.String())
	}

	listRec := do(t, e, http.MethodGet, "/v1/saves", nil)
	list := decodeBody[ListResponse[SaveSummary]](t, listRec)
	if len(list.Data) != 1 || list.Data[0].PluginCount != 28 || list.Data[0].SaveNumber != 325 {
		t.Fatalf("unexpected list: %+v", list)
	}

	delRec := do(t, e, http.MethodDelete, "/v1/saves/"+created.ID, nil)
	if delRec.Code != http.StatusOK {
		t.Fatalf("delete status: got %d", delRec.Code)
	}
	if del := decodeBody[DeleteResponse](t, delRec); !del.Deleted {
		t.Fatalf("unexpected delete response: %+v", del)
	}

	if rec := do(t, e, http.MethodGet, "/v1/saves/"+created.ID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodDelete, "/v1/saves/"+created.ID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: got %d", rec.Code)
	}

	// The digest is released with the record, so the same bytes upload anew.
	if rec := do(t, e, http.MethodPost, "/v1/saves", data); rec.Code != http.StatusCreated {
		t.Fatalf("re-upload after delete: got %d", rec.Code)
	}
}

func TestPluginsAndScreenshot(t *testing.T) {
	t.Parallel()
	e, store := newTestEcho(Config{})
	want := esstest.Sample()
	data, _ := esstest.Encode(want, esstest.Options{})
	rec, _ := store.Put(data, want, time.Unix(1700000000, 0))

	plugRec := do(t, e, http.MethodGet, "/v1/saves/"+rec.ID+"/plugins", nil)
	plugins := decodeBody[ListResponse[Plugin]](t, plugRec)
	if len(plugins.Data) != 28 {
		t.Fatalf("got %d plugins", len(plugins.Data))
	}
	if p := plugins.Data[26]; p.Index != 26 || p.Name != "Café Tamriel.esp" {
		t.Fatalf("unexpected plugin: %+v", p)
	}

	shotRec := do(t, e, http.MethodGet, "/v1/saves/"+rec.ID+"/screenshot.png", nil)
	if shotRec.Code != http.StatusOK {
		t.Fatalf("screenshot status: got %d", shotRec.Code)
	}
	if ct := shotRec.Header().Get(echo.HeaderContentType); ct != "image/png" {
		t.Fatalf("content type %q", ct)
	}
	img, err := png.Decode(shotRec.Body)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("bounds %v", b)
	}
	r, g, b, a := img.At(1, 1).RGBA()
	if r>>8 != 0x10 || g>>8 != 0x20 || b>>8 != 0x30 || a>>8 != 0xff {
		t.Fatalf("pixel (1,1) = %x %x %x %x", r, g, b, a)
	}

	if rec := do(t, e, http.MethodGet, "/v1/saves/missing/plugins", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing plugins: got %d", rec.Code)
	}
}

func TestUploadDecodeErrors(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(Config{})

	bad := sampleBytes(t)
	copy(bad, "TES5SAVEGAME")

	withItems := esstest.Sample()
	withItems.Globals.CreatedItems = []ess.Record{{Type: ess.RecordType{'A', 'R', 'M', 'O'}}}
	unsupported, _ := esstest.Encode(withItems, esstest.Options{})

	tests := []struct {
		name  string
		body  []byte
		kind  string
		field string
	}{
		{"short", []byte("TES4"), "no_header", "file_header"},
		{"bad id", bad, "bad_file_id", "file_header"},
		{"xbox", []byte("CON " + strings.Repeat("\x00", 64)), "foreign_container", "file_header"},
		{"truncated", sampleBytes(t)[:40], "unexpected_eof", "save_header.save_number"},
		{"created items", unsupported, "unsupported", "globals.created_items[0].payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, http.MethodPost, "/v1/saves", tt.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
			}
			body := decodeBody[errorEnvelope](t, rec)
			if body.Error.Type != "decode_error" || body.Error.Kind != tt.kind || body.Error.Field != tt.field {
				t.Fatalf("unexpected error body: %+v", body.Error)
			}
			if body.Error.Offset == nil {
				t.Fatal("offset missing")
			}
		})
	}
}

func TestUploadStrictDecoder(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(Config{Decoder: ess.NewDecoder(ess.WithStrict(true))})
	data, _ := esstest.Encode(esstest.Sample(), esstest.Options{ScreenshotSize: esstest.Ptr(uint32(1))})

	rec := do(t, e, http.MethodPost, "/v1/saves", data)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d", rec.Code)
	}
	if body := decodeBody[errorEnvelope](t, rec); body.Error.Kind != "inconsistent" {
		t.Fatalf("unexpected error body: %+v", body.Error)
	}
}

func TestUploadCompressed(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(Config{})

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(sampleBytes(t)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	rec := do(t, e, http.MethodPost, "/v1/saves", buf.Bytes())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestUploadDecompressedOverCap(t *testing.T) {
	t.Parallel()
	e, store := newTestEcho(Config{MaxUploadBytes: 64 << 10})

	sv := esstest.Sample()
	sv.SaveGameHeader.Screenshot = ess.Screenshot{
		Width:  1024,
		Height: 1024,
		Pixels: make([]ess.RGB, 1024*1024),
	}
	data, _ := esstest.Encode(sv, esstest.Options{})
	zw, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	body := zw.EncodeAll(data, nil)
	_ = zw.Close()
	if len(body) >= 64<<10 {
		t.Fatalf("compressed body is %d bytes, want it under the cap", len(body))
	}

	rec := do(t, e, http.MethodPost, "/v1/saves", body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if n := len(store.List()); n != 0 {
		t.Fatalf("stored %d saves", n)
	}

	// A truncated save under the cap is still a decode error.
	rec = do(t, e, http.MethodPost, "/v1/saves", sampleBytes(t)[:200])
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("truncated: got %d", rec.Code)
	}
}

func TestUploadRequestErrors(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(Config{MaxUploadBytes: 64})

	if rec := do(t, e, http.MethodPost, "/v1/saves", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty body: got %d", rec.Code)
	}
	rec := do(t, e, http.MethodPost, "/v1/saves", sampleBytes(t))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized body: got %d", rec.Code)
	}
}

func TestUploadRateLimited(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(Config{UploadLimiter: NewRateLimiter(0.001, 1)})
	data := sampleBytes(t)

	if rec := do(t, e, http.MethodPost, "/v1/saves", data); rec.Code != http.StatusCreated {
		t.Fatalf("first upload: got %d", rec.Code)
	}
	rec := do(t, e, http.MethodPost, "/v1/saves", data)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second upload: got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
	// Reads are not limited.
	if rec := do(t, e, http.MethodGet, "/v1/saves", nil); rec.Code != http.StatusOK {
		t.Fatalf("list: got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(Config{})
	rec := do(t, e, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if h := decodeBody[HealthResponse](t, rec); h.Status != "ok" || h.Version == "" {
		t.Fatalf("unexpected health: %+v", h)
	}
}

func TestIndexPage(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(Config{})
	rec := do(t, e, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type: got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "/v1/saves") {
		t.Fatalf("index does not reference the API:\n%s", rec.Body.String())
	}
}

func TestRateLimiterAllow(t *testing.T) {
	t.Parallel()
	now := time.Unix(1700000000, 0)
	l := NewRateLimiter(1, 2)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := l.Allow("a"); !ok {
			t.Fatalf("request %d within burst denied", i)
		}
	}
	ok, wait := l.Allow("a")
	if ok || wait <= 0 || wait > time.Second {
		t.Fatalf("third request: ok=%v wait=%v", ok, wait)
	}
	if ok, _ := l.Allow("b"); !ok {
		t.Fatal("other client denied")
	}

	now = now.Add(time.Second)
	if ok, _ := l.Allow("a"); !ok {
		t.Fatal("token not refilled")
	}

	now = now.Add(idleClientTTL + time.Second)
	l.Allow("c")
	l.mu.Lock()
	n := len(l.clients)
	l.mu.Unlock()
	if n != 1 {
		t.Fatalf("idle clients not evicted: %d buckets", n)
	}
}
