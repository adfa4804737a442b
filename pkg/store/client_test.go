package store

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/echomind-ai/echomind/pkg/memory"
)

type MockServer struct {
	*httptest.Server
	mu       sync.Mutex
	memories []memory.Memory
	nextID   int
	// Custom handlers for testing
	customCreate http.HandlerFunc
	customList   http.HandlerFunc
	customDelete http.HandlerFunc
}

func NewMockServer() *MockServer {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)

	mock := &MockServer{Server: server}

	mux.HandleFunc("/api/auth/login", mock.handleLogin)
	mux.HandleFunc("/api/auth/register", mock.handleRegister)
	mux.HandleFunc("/api/memories/", mock.handleMemories)

	return mock
}

func (s *MockServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if creds.Password != "hunter2" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": "test-token"})
}

func (s *MockServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusCreated)
}

func (s *MockServer) authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer test-token"
}

func (s *MockServer) handleMemories(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost:
		s.handleCreate(w, r)
	case r.Method == http.MethodGet:
		s.handleList(w, r)
	case r.Method == http.MethodDelete:
		s.handleDelete(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *MockServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	if s.customCreate != nil {
		s.customCreate(w, r)
		return
	}

	if !s.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var candidate memory.Candidate
	if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil || candidate.Content == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.nextID++
	created := memory.Memory{
		ID:         fmt.Sprintf("mem-%d", s.nextID),
		Type:       candidate.Type,
		Content:    candidate.Content,
		Confidence: candidate.Confidence,
		Mood:       candidate.Mood,
		Tags:       candidate.Tags,
		CreatedAt:  time.Now().UTC(),
	}
	s.memories = append(s.memories, created)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (s *MockServer) handleList(w http.ResponseWriter, r *http.Request) {
	if s.customList != nil {
		s.customList(w, r)
		return
	}

	if !s.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	s.mu.Lock()
	memories := append([]memory.Memory{}, s.memories...)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(memories)
}

func (s *MockServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	if s.customDelete != nil {
		s.customDelete(w, r)
		return
	}

	if !s.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/memories/")

	s.mu.Lock()
	kept := s.memories[:0]
	for _, mem := range s.memories {
		if mem.ID != id {
			kept = append(kept, mem)
		}
	}
	s.memories = kept
	s.mu.Unlock()

	// Unknown ids still report success, matching the real service.
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"msg": "Deleted"})
}

func TestNewClient(t *testing.T) {
	Convey("Given a new client with a base URL", t, func() {
		client := NewClient("http://localhost:3210")

		Convey("It should have a configured fiber client", func() {
			So(client.conn, ShouldNotBeNil)
			So(client.conn.BaseURL(), ShouldEqual, "http://localhost:3210")
		})
	})
}

func TestLogin(t *testing.T) {
	Convey("Given a memory service client", t, func() {
		server := NewMockServer()
		defer server.Close()
		client := NewClient(server.URL)

		Convey("When logging in with valid credentials", func() {
			err := client.Login("ada@example.com", "hunter2")

			Convey("Then the token should be stored", func() {
				So(err, ShouldBeNil)
				So(client.token, ShouldEqual, "test-token")
			})
		})

		Convey("When logging in with bad credentials", func() {
			err := client.Login("ada@example.com", "wrong")

			Convey("Then an AuthError should be returned", func() {
				So(err, ShouldNotBeNil)
				So(err, ShouldHaveSameTypeAs, &AuthError{})
			})
		})

		Convey("When the server is unreachable", func() {
			server.Close()

			err := client.Login("ada@example.com", "hunter2")

			Convey("Then a ConnectionError should be returned", func() {
				So(err, ShouldNotBeNil)
				So(err, ShouldHaveSameTypeAs, &ConnectionError{})
			})
		})
	})
}

func TestCreate(t *testing.T) {
	Convey("Given an authenticated client", t, func() {
		server := NewMockServer()
		defer server.Close()
		client := NewClient(server.URL, WithToken("test-token"))

		Convey("When creating a candidate", func() {
			created, err := client.Create(memory.Candidate{
				Type:       memory.TypePreference,
				Content:    "User prefers short answers",
				Confidence: 0.9,
			})

			Convey("Then the stored memory carries a server-assigned id", func() {
				So(err, ShouldBeNil)
				So(created.ID, ShouldNotBeEmpty)
				So(created.Content, ShouldEqual, "User prefers short answers")
				So(created.CreatedAt.IsZero(), ShouldBeFalse)
			})
		})

		Convey("When the token is rejected", func() {
			client := NewClient(server.URL, WithToken("stale"))

			_, err := client.Create(memory.Candidate{Content: "anything"})

			Convey("Then an AuthError should be returned", func() {
				So(err, ShouldNotBeNil)
				So(err, ShouldHaveSameTypeAs, &AuthError{})
			})
		})

		Convey("When the response is invalid JSON", func() {
			server.customCreate = func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte("invalid json"))
			}

			_, err := client.Create(memory.Candidate{Content: "anything"})

			Convey("Then a DecodingError should be returned", func() {
				So(err, ShouldNotBeNil)
				So(err, ShouldHaveSameTypeAs, &DecodingError{})
			})
		})

		Convey("When the server is unreachable", func() {
			server.Close()

			_, err := client.Create(memory.Candidate{Content: "anything"})

			Convey("Then a ConnectionError should be returned", func() {
				So(err, ShouldNotBeNil)
				So(err, ShouldHaveSameTypeAs, &ConnectionError{})
			})
		})
	})
}

func TestList(t *testing.T) {
	Convey("Given an authenticated client", t, func() {
		server := NewMockServer()
		defer server.Close()
		client := NewClient(server.URL, WithToken("test-token"))

		Convey("When memories exist", func() {
			_, err := client.Create(memory.Candidate{Content: "first"})
			So(err, ShouldBeNil)
			_, err = client.Create(memory.Candidate{Content: "second"})
			So(err, ShouldBeNil)

			memories, err := client.List()

			Convey("Then all of them should be returned", func() {
				So(err, ShouldBeNil)
				So(memories, ShouldHaveLength, 2)
			})
		})

		Convey("When the server returns an error", func() {
			server.customList = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}

			memories, err := client.List()

			Convey("Then a RequestError should be returned", func() {
				So(err, ShouldNotBeNil)
				So(err, ShouldHaveSameTypeAs, &RequestError{})
				So(memories, ShouldBeNil)
			})
		})
	})
}

func TestDelete(t *testing.T) {
	Convey("Given an authenticated client", t, func() {
		server := NewMockServer()
		defer server.Close()
		client := NewClient(server.URL, WithToken("test-token"))

		Convey("When deleting an existing memory", func() {
			created, err := client.Create(memory.Candidate{Content: "short-lived"})
			So(err, ShouldBeNil)

			err = client.Delete(created.ID)

			Convey("Then it should be gone", func() {
				So(err, ShouldBeNil)

				memories, err := client.List()
				So(err, ShouldBeNil)
				So(memories, ShouldBeEmpty)
			})

			Convey("And deleting it again should still succeed", func() {
				So(client.Delete(created.ID), ShouldBeNil)
			})
		})
	})
}

func TestClearAll(t *testing.T) {
	Convey("Given an authenticated client with several memories", t, func() {
		server := NewMockServer()
		defer server.Close()
		client := NewClient(server.URL, WithToken("test-token"))

		for i := 0; i < 3; i++ {
			_, err := client.Create(memory.Candidate{Content: fmt.Sprintf("memory %d", i)})
			So(err, ShouldBeNil)
		}

		Convey("When clearing all memories", func() {
			err := client.ClearAll()

			Convey("Then the store should be empty", func() {
				So(err, ShouldBeNil)

				memories, err := client.List()
				So(err, ShouldBeNil)
				So(memories, ShouldBeEmpty)
			})
		})
	})
}
