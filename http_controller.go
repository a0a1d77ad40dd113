package account

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// LoginRequest is the credential payload for the login endpoint.
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// LoginResponse carries the bearer credential for subsequent API calls
// plus an optional session JWT when a token service is configured.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	SessionToken string `json:"session_token,omitempty"`
}

// APIController exposes the account subsystem over the REST surface the
// original api module served: login, identity, and profile. Route
// registration is left to the caller via RegisterAPIRoutes so the
// controller stays framework-setup free.
type APIController struct {
	Debug    bool
	Logger   Logger
	Provider IdentityProvider
	Accounts AccountFinder
	Tokens   *TokenService
}

// APIControllerOption configures the controller.
type APIControllerOption func(*APIController) *APIController

// WithAPIProvider sets the identity provider, mandatory.
func WithAPIProvider(provider IdentityProvider) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Provider = provider
		return c
	}
}

// WithAPIAccounts sets the store used by the profile endpoint, mandatory.
func WithAPIAccounts(accounts AccountFinder) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Accounts = accounts
		return c
	}
}

// WithAPITokenService enables session JWTs in login responses.
func WithAPITokenService(tokens *TokenService) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Tokens = tokens
		return c
	}
}

// WithAPILogger overrides the controller logger.
func WithAPILogger(logger Logger) APIControllerOption {
	return func(c *APIController) *APIController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// NewAPIController builds the controller.
func NewAPIController(opts ...APIControllerOption) *APIController {
	c := &APIController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Provider == nil {
		panic("Missing IdentityProvider in api controller...")
	}

	if c.Accounts == nil {
		panic("Missing Accounts store in api controller...")
	}

	return c
}

// RegisterAPIRoutes wires the controller into the given router.
func RegisterAPIRoutes[T any](app router.Router[T], opts ...APIControllerOption) {
	controller := NewAPIController(opts...)

	app.Post("/login", controller.Login).SetName("api.login.post")
	app.Get("/identity", controller.Identity).SetName("api.identity.get")
	app.Get("/profile/:id", controller.Profile).SetName("api.profile.get")
}

// Login authenticates a username/password pair and returns the account's
// bearer access token.
func (a *APIController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "invalid payload",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error":      "invalid payload",
			"validation": err.Error(),
		})
	}

	if a.Debug {
		fmt.Println("======= API LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("========================")
	}

	identity, err := a.Provider.VerifyIdentity(ctx.Context(), payload.Username, payload.Password)
	if err != nil {
		a.Logger.Error("Login verify identity error: %v", err)
		return ctx.JSON(fiber.StatusUnauthorized, map[string]any{
			"error": "unauthorized",
		})
	}

	resp := LoginResponse{}
	if bearer, ok := identity.(interface{ AccessToken() string }); ok {
		resp.AccessToken = bearer.AccessToken()
	}

	if a.Tokens != nil {
		token, err := a.Tokens.Generate(identity)
		if err != nil {
			a.Logger.Error("Login session token error: %v", err)
		} else {
			resp.SessionToken = token
		}
	}

	return ctx.JSON(fiber.StatusOK, resp)
}

// Identity resolves the caller from its bearer access token.
func (a *APIController) Identity(ctx router.Context) error {
	identity, err := a.identityFromRequest(ctx)
	if err != nil {
		return ctx.JSON(fiber.StatusUnauthorized, map[string]any{
			"error": "unauthorized",
		})
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"id":       identity.ID(),
		"username": identity.Username(),
		"email":    identity.Email(),
		"services": identity.Services(),
	})
}

// Profile returns the public profile of the account with the given id.
// The caller must itself authenticate with a bearer access token.
func (a *APIController) Profile(ctx router.Context) error {
	if _, err := a.identityFromRequest(ctx); err != nil {
		return ctx.JSON(fiber.StatusUnauthorized, map[string]any{
			"error": "unauthorized",
		})
	}

	identity, err := a.Provider.FindIdentity(ctx.Context(), ctx.Param("id"))
	if err != nil {
		if IsNotFound(err) {
			return ctx.JSON(fiber.StatusNotFound, map[string]any{
				"error": "not found",
			})
		}
		a.Logger.Error("Profile lookup error: %v", err)
		return ctx.JSON(fiber.StatusInternalServerError, map[string]any{
			"error": "internal error",
		})
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"id":       identity.ID(),
		"username": identity.Username(),
		"email":    identity.Email(),
	})
}

func (a *APIController) identityFromRequest(ctx router.Context) (Identity, error) {
	token := bearerToken(ctx.Header("Authorization"))
	if token == "" {
		return nil, ErrAccountNotFound
	}

	return a.Provider.FindIdentityByAccessToken(ctx.Context(), token)
}

func bearerToken(header string) string {
	const scheme = "Bearer "
	if len(header) <= len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return ""
	}
	return strings.TrimSpace(header[len(scheme):])
}
