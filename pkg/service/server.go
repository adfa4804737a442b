package service

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/echomind-ai/echomind/pkg/auth"
	"github.com/echomind-ai/echomind/pkg/memory"
	"github.com/echomind-ai/echomind/pkg/stores"
)

/*
Server exposes the memory store over HTTP: per-user memory CRUD plus the
auth endpoints that issue the bearer tokens every other route requires.
*/
type Server struct {
	app      *fiber.App
	memories stores.MemoryStore
	users    stores.UserStore
	tokens   *auth.Service
	limiter  *auth.RateLimiter
}

type ServerOption func(*Server)

func WithMemoryStore(store stores.MemoryStore) ServerOption {
	return func(srv *Server) {
		srv.memories = store
	}
}

func WithUserStore(store stores.UserStore) ServerOption {
	return func(srv *Server) {
		srv.users = store
	}
}

func WithTokenService(tokens *auth.Service) ServerOption {
	return func(srv *Server) {
		srv.tokens = tokens
	}
}

func NewServer(options ...ServerOption) *Server {
	srv := &Server{
		app: fiber.New(fiber.Config{
			AppName:      "EchoMind Memory Service",
			ServerHeader: "EchoMind-Memory",
		}),
		limiter: auth.NewRateLimiter(30, time.Minute),
	}

	for _, option := range options {
		option(srv)
	}

	if srv.memories == nil || srv.users == nil {
		store := stores.NewInMemoryStore()
		if srv.memories == nil {
			srv.memories = store
		}
		if srv.users == nil {
			srv.users = store
		}
	}

	if srv.tokens == nil {
		srv.tokens = auth.NewService([]byte("dev-only-signing-key"))
	}

	srv.routes()
	return srv
}

func (srv *Server) routes() {
	srv.app.Use(logger.New(logger.Config{
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/livez" || c.Path() == "/readyz"
		},
	}))
	srv.app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	srv.app.Get(healthcheck.ReadinessEndpoint, healthcheck.New())

	srv.app.Post("/api/auth/register", srv.handleRegister)
	srv.app.Post("/api/auth/login", srv.handleLogin)

	memories := srv.app.Group("/api/memories", srv.requireAuth)
	memories.Post("/", srv.handleCreate)
	memories.Get("/", srv.handleList)
	memories.Delete("/:id", srv.handleDelete)
}

/*
App exposes the underlying fiber app for in-process testing.
*/
func (srv *Server) App() *fiber.App {
	return srv.app
}

func (srv *Server) Run(addr string) error {
	log.Info("memory service listening", "addr", addr)
	return srv.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

/*
requireAuth resolves the bearer token into a user id and stashes it in the
request locals for the handlers.
*/
func (srv *Server) requireAuth(c fiber.Ctx) error {
	token, err := auth.FromHeader(c.Get("Authorization"))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	userID, err := srv.tokens.Subject(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}

	c.Locals("userID", userID)
	return c.Next()
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (srv *Server) handleRegister(c fiber.Ctx) error {
	if !srv.limiter.Allow() {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many requests"})
	}

	var req credentialsRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email and password are required"})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to process credentials"})
	}

	user, err := srv.users.CreateUser(c, req.Email, hash)
	if err != nil {
		if errors.Is(err, stores.ErrDuplicateEmail) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email already registered"})
		}
		log.Error("failed to create user", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create user"})
	}

	log.Info("user registered", "user", user.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": user.ID, "email": user.Email})
}

func (srv *Server) handleLogin(c fiber.Ctx) error {
	if !srv.limiter.Allow() {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many requests"})
	}

	var req credentialsRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	user, err := srv.users.UserByEmail(c, strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	token, err := srv.tokens.GenerateToken(user.ID)
	if err != nil {
		log.Error("failed to issue token", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to issue token"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"token": token})
}

type createMemoryRequest struct {
	Type       memory.Type `json:"type,omitempty"`
	Content    string      `json:"content"`
	Confidence float64     `json:"confidence,omitempty"`
	Mood       string      `json:"mood,omitempty"`
	Tags       []string    `json:"tags,omitempty"`
}

func (srv *Server) handleCreate(c fiber.Ctx) error {
	var req createMemoryRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	created, err := srv.memories.Create(c, userID(c), memory.Memory{
		Type:       req.Type,
		Content:    req.Content,
		Confidence: req.Confidence,
		Mood:       req.Mood,
		Tags:       req.Tags,
	})
	if err != nil {
		if errors.Is(err, stores.ErrEmptyContent) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "content must not be empty"})
		}
		log.Error("failed to create memory", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create memory"})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (srv *Server) handleList(c fiber.Ctx) error {
	listed, err := srv.memories.List(c, userID(c))
	if err != nil {
		log.Error("failed to list memories", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list memories"})
	}

	if listed == nil {
		listed = []memory.Memory{}
	}

	return c.Status(fiber.StatusOK).JSON(listed)
}

func (srv *Server) handleDelete(c fiber.Ctx) error {
	if err := srv.memories.Delete(c, userID(c), c.Params("id")); err != nil {
		log.Error("failed to delete memory", "error", err, "id", c.Params("id"))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete memory"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"msg": "Deleted"})
}

func userID(c fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}
