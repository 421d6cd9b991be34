package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/fivetwenty-io/gia/pkg/iga"
)

const (
	fakeTokenPath = "/am/oauth2/access_token"
	fakeAppsPath  = "/iga/governance/application"
)

// fakeUpload is a file received by fakeIGA.
type fakeUpload struct {
	ApplicationID string
	ObjectType    string
	FileName      string
	Content       string
}

// fakeIGA is an in-memory IGA tenant for client tests.
type fakeIGA struct {
	t      *testing.T
	server *httptest.Server

	mu          sync.Mutex
	nextID      int
	apps        map[string]iga.Object
	objectTypes map[string]map[string]iga.Object
	uploads     []fakeUpload
	calls       map[string]int
	listQueries []map[string]string
}

func newFakeIGA(t *testing.T) *fakeIGA {
	t.Helper()

	fake := &fakeIGA{
		t:           t,
		apps:        make(map[string]iga.Object),
		objectTypes: make(map[string]map[string]iga.Object),
		calls:       make(map[string]int),
	}

	fake.server = httptest.NewServer(http.HandlerFunc(fake.handle))
	t.Cleanup(fake.server.Close)

	return fake
}

// newClient returns a Client authenticating against the fake token endpoint.
func (f *fakeIGA) newClient(t *testing.T, pageSize int) *Client {
	t.Helper()

	client, err := New(&iga.Config{
		BaseURL:      f.server.URL + "/",
		ClientID:     "gia-client",
		ClientSecret: "gia-secret",
		PageSize:     pageSize,
	})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	return client
}

func (f *fakeIGA) seedApplication(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.insertApplication(iga.Object{"name": name})
}

func (f *fakeIGA) insertApplication(app iga.Object) string {
	f.nextID++
	id := fmt.Sprintf("app-%03d", f.nextID)
	app["id"] = id
	f.apps[id] = app
	f.objectTypes[id] = make(map[string]iga.Object)

	return id
}

func (f *fakeIGA) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[name]
}

func (f *fakeIGA) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == fakeTokenPath {
		f.calls["token"]++
		f.writeJSON(w, http.StatusOK, map[string]interface{}{
			"access_token": "fake-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})

		return
	}

	if r.Header.Get("Authorization") != "Bearer fake-token" {
		f.writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"message": "missing token"})

		return
	}

	if !strings.HasPrefix(r.URL.Path, fakeAppsPath) {
		f.notFound(w)

		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, fakeAppsPath), "/")

	var segments []string
	if rest != "" {
		segments = strings.Split(rest, "/")
	}

	switch {
	case len(segments) == 0:
		f.handleCollection(w, r)
	case len(segments) == 1:
		f.handleApplication(w, r, segments[0])
	default:
		f.handleSubresource(w, r, segments[0], segments[1:])
	}
}

func (f *fakeIGA) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		f.calls["list"]++
		f.list(w, r)
	case http.MethodPost:
		if r.URL.Query().Get("action") != "create" {
			f.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "missing action"})

			return
		}

		f.calls["create"]++

		app := f.decodeBody(r)
		id := f.insertApplication(app)
		f.writeJSON(w, http.StatusCreated, f.apps[id])
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeIGA) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	recorded := make(map[string]string)
	for key := range query {
		recorded[key] = query.Get(key)
	}

	f.listQueries = append(f.listQueries, recorded)

	ids := make([]string, 0, len(f.apps))
	for id := range f.apps {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	var matched []iga.Object

	for _, id := range ids {
		filter := query.Get("_queryFilter")
		if filter != "" && filter != iga.NameEquals(f.apps[id].String("name")) {
			continue
		}

		matched = append(matched, f.apps[id])
	}

	pageSize, _ := strconv.Atoi(query.Get("_pageSize"))
	offset, _ := strconv.Atoi(query.Get("_pagedResultsOffset"))

	page := []iga.Object{}
	for i := offset; i < len(matched) && (pageSize <= 0 || i < offset+pageSize); i++ {
		page = append(page, matched[i])
	}

	f.writeJSON(w, http.StatusOK, map[string]interface{}{
		"result":      page,
		"resultCount": len(page),
		"totalCount":  len(matched),
	})
}

func (f *fakeIGA) handleApplication(w http.ResponseWriter, r *http.Request, id string) {
	app, exists := f.apps[id]
	if !exists {
		f.notFound(w)

		return
	}

	switch r.Method {
	case http.MethodGet:
		f.writeJSON(w, http.StatusOK, app)
	case http.MethodPut:
		f.calls["update"]++

		updated := f.decodeBody(r)
		updated["id"] = id
		f.apps[id] = updated
		f.writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		f.calls["delete"]++

		delete(f.apps, id)
		delete(f.objectTypes, id)
		w.WriteHeader(http.StatusNoContent)
	case http.MethodPost:
		if r.URL.Query().Get("_action") != "upload" {
			w.WriteHeader(http.StatusBadRequest)

			return
		}

		f.calls["upload"]++
		f.upload(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeIGA) upload(w http.ResponseWriter, r *http.Request, appID string) {
	err := r.ParseMultipartForm(1 << 20)
	if err != nil {
		f.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": err.Error()})

		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		f.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": err.Error()})

		return
	}

	defer func() { _ = file.Close() }()

	content, _ := io.ReadAll(file)
	objectType := r.FormValue("objectType")

	if _, defined := f.objectTypes[appID][objectType]; !defined {
		f.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "unknown object type " + objectType})

		return
	}

	f.uploads = append(f.uploads, fakeUpload{
		ApplicationID: appID,
		ObjectType:    objectType,
		FileName:      header.Filename,
		Content:       string(content),
	})

	f.writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":         fmt.Sprintf("upload-%d", len(f.uploads)),
		"objectType": objectType,
		"status":     "PENDING",
	})
}

//nolint:funlen // Routing table for every sub-resource
func (f *fakeIGA) handleSubresource(w http.ResponseWriter, r *http.Request, appID string, segments []string) {
	types, exists := f.objectTypes[appID]
	if !exists {
		f.notFound(w)

		return
	}

	switch {
	case segments[0] == "objectType" && len(segments) == 1 && r.Method == http.MethodPost:
		f.calls["addObjectType"]++

		objectType := f.decodeBody(r)
		types[objectType.String("id")] = objectType
		f.writeJSON(w, http.StatusCreated, objectType)
	case segments[0] == "objectType" && len(segments) == 2:
		objectType, defined := types[segments[1]]
		if !defined {
			f.calls["getObjectType"]++
			f.notFound(w)

			return
		}

		switch r.Method {
		case http.MethodGet:
			f.calls["getObjectType"]++
			f.writeJSON(w, http.StatusOK, objectType)
		case http.MethodPut:
			f.calls["updateObjectType"]++

			updated := f.decodeBody(r)
			types[segments[1]] = updated
			f.writeJSON(w, http.StatusOK, updated)
		case http.MethodDelete:
			delete(types, segments[1])
			w.WriteHeader(http.StatusNoContent)
		}
	case len(segments) == 2 && segments[1] == "schema":
		objectType, defined := types[segments[0]]
		if !defined {
			f.notFound(w)

			return
		}

		f.writeJSON(w, http.StatusOK, map[string]interface{}{"properties": objectType["properties"]})
	case segments[0] == "files":
		files := make([]map[string]interface{}, 0, len(f.uploads))

		for _, upload := range f.uploads {
			if upload.ApplicationID == appID {
				files = append(files, map[string]interface{}{"fileName": upload.FileName, "objectType": upload.ObjectType})
			}
		}

		f.writeJSON(w, http.StatusOK, map[string]interface{}{"result": files})
	case segments[0] == "upload" && len(segments) == 2:
		f.writeJSON(w, http.StatusOK, map[string]interface{}{"id": strings.TrimPrefix(segments[1], ":"), "status": "COMPLETE"})
	case segments[0] == "upload" && len(segments) == 3 && segments[2] == "failures":
		f.writeJSON(w, http.StatusOK, map[string]interface{}{
			"result": []map[string]interface{}{{"line": 2, "error": "missing id"}},
		})
	case segments[0] == "account" || segments[0] == "resource":
		records := []map[string]interface{}{
			{"id": segments[0] + "-1", "name": "first"},
			{"id": segments[0] + "-2", "name": "second"},
		}

		if len(segments) == 1 {
			f.writeJSON(w, http.StatusOK, map[string]interface{}{"result": records})

			return
		}

		for _, record := range records {
			if record["id"] == segments[1] {
				f.writeJSON(w, http.StatusOK, record)

				return
			}
		}

		f.notFound(w)
	default:
		f.notFound(w)
	}
}

func (f *fakeIGA) decodeBody(r *http.Request) iga.Object {
	body := iga.Object{}

	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		f.t.Errorf("decoding request body: %v", err)
	}

	return body
}

func (f *fakeIGA) notFound(w http.ResponseWriter) {
	f.writeJSON(w, http.StatusNotFound, map[string]interface{}{"code": 404, "reason": "Not Found", "message": "Not Found"})
}

func (f *fakeIGA) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeIGA) application(id string) (iga.Object, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	app, exists := f.apps[id]

	return app, exists
}

func (f *fakeIGA) applicationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.apps)
}

func (f *fakeIGA) receivedUploads() []fakeUpload {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]fakeUpload(nil), f.uploads...)
}

func (f *fakeIGA) receivedListQueries() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]map[string]string(nil), f.listQueries...)
}
