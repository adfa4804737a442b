package store

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	fiberClient "github.com/gofiber/fiber/v3/client"

	"github.com/echomind-ai/echomind/pkg/memory"
)

/*
Client connects to the memory service. All memory operations are scoped to
the authenticated user behind the bearer token, so Login (or WithToken) must
happen before Create, List, Delete, or ClearAll.

Creation is the only way a memory gets an id; the client never invents one.
List returns the service's payload as-is, so callers who care about order
must sort on createdAt themselves.
*/
type Client struct {
	baseURL string
	token   string
	conn    *fiberClient.Client
}

type ClientOption func(*Client)

/*
WithToken seeds the client with an existing bearer token, skipping Login.
*/
func WithToken(token string) ClientOption {
	return func(client *Client) {
		client.token = token
	}
}

/*
WithTimeout overrides the default per-request timeout.
*/
func WithTimeout(timeout time.Duration) ClientOption {
	return func(client *Client) {
		client.conn.SetTimeout(timeout)
	}
}

/*
NewClient creates a memory service client rooted at the given base URL.
*/
func NewClient(baseURL string, opts ...ClientOption) *Client {
	client := &Client{
		baseURL: baseURL,
		conn:    fiberClient.New().SetBaseURL(baseURL).SetTimeout(10 * time.Second),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
Register creates an account on the memory service.
*/
func (client *Client) Register(email, password string) error {
	resp, err := client.conn.Post("/api/auth/register", fiberClient.Config{
		Header: map[string]string{"Content-Type": "application/json"},
		Body:   credentials{Email: email, Password: password},
	})

	if err != nil {
		return &ConnectionError{Message: "registration failed", Err: err}
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusBadRequest {
		return &RequestError{StatusCode: resp.StatusCode(), Message: string(resp.Body())}
	}

	return nil
}

/*
Login exchanges credentials for a bearer token and keeps it on the client
for every subsequent request.
*/
func (client *Client) Login(email, password string) error {
	resp, err := client.conn.Post("/api/auth/login", fiberClient.Config{
		Header: map[string]string{"Content-Type": "application/json"},
		Body:   credentials{Email: email, Password: password},
	})

	if err != nil {
		return &ConnectionError{Message: "login failed", Err: err}
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		return &AuthError{Message: "invalid credentials"}
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusBadRequest {
		return &RequestError{StatusCode: resp.StatusCode(), Message: string(resp.Body())}
	}

	var body struct {
		Token string `json:"token"`
	}

	if err = resp.JSON(&body); err != nil {
		return &DecodingError{Message: "failed to decode login response", Err: err}
	}

	client.token = body.Token
	return nil
}

/*
Create persists one extracted candidate and returns the stored memory,
id and createdAt assigned by the service.
*/
func (client *Client) Create(candidate memory.Candidate) (memory.Memory, error) {
	resp, err := client.conn.Post("/api/memories/", fiberClient.Config{
		Header: client.headers(),
		Body:   candidate,
	})

	if err != nil {
		return memory.Memory{}, &ConnectionError{Message: "failed to create memory", Err: err}
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		return memory.Memory{}, &AuthError{Message: "token rejected"}
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusBadRequest {
		return memory.Memory{}, &RequestError{StatusCode: resp.StatusCode(), Message: string(resp.Body())}
	}

	var created memory.Memory

	if err = resp.JSON(&created); err != nil {
		return memory.Memory{}, &DecodingError{Message: "failed to decode created memory", Err: err}
	}

	return created, nil
}

/*
List retrieves all memories for the authenticated user.
*/
func (client *Client) List() ([]memory.Memory, error) {
	resp, err := client.conn.Get("/api/memories/", fiberClient.Config{
		Header: client.headers(),
	})

	if err != nil {
		return nil, &ConnectionError{Message: "failed to list memories", Err: err}
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		return nil, &AuthError{Message: "token rejected"}
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusBadRequest {
		return nil, &RequestError{StatusCode: resp.StatusCode(), Message: string(resp.Body())}
	}

	var memories []memory.Memory

	if err = resp.JSON(&memories); err != nil {
		return nil, &DecodingError{Message: "failed to decode memories list", Err: err}
	}

	return memories, nil
}

/*
Delete removes one memory by id. The service treats an unknown id as already
deleted, so Delete is safe to retry.
*/
func (client *Client) Delete(id string) error {
	resp, err := client.conn.Delete(
		fmt.Sprintf("/api/memories/%s", url.PathEscape(id)),
		fiberClient.Config{Header: client.headers()},
	)

	if err != nil {
		return &ConnectionError{Message: "failed to delete memory", Err: err}
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		return &AuthError{Message: "token rejected"}
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusBadRequest {
		return &RequestError{StatusCode: resp.StatusCode(), Message: string(resp.Body())}
	}

	return nil
}

/*
ClearAll deletes every memory for the user as individual deletes. It keeps
going past per-memory failures and reports the first error at the end, so a
partial clear removes as much as it can.
*/
func (client *Client) ClearAll() error {
	memories, err := client.List()
	if err != nil {
		return err
	}

	var firstErr error

	for _, mem := range memories {
		if err := client.Delete(mem.ID); err != nil {
			log.Error("failed to delete memory during clear", "id", mem.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (client *Client) headers() map[string]string {
	return map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + client.token,
	}
}
