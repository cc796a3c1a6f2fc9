package auth

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-loan-auth/middleware/jwtware"
	"github.com/goliatone/go-print"
)

// AuthControllerRoutes holds the paths, relative to the router the
// controller is mounted on.
type AuthControllerRoutes struct {
	Register       string
	Login          string
	Logout         string
	UpdateProfile  string
	UpdatePassword string
	Me             string
}

// AuthController exposes the identity lifecycle over HTTP.
type AuthController struct {
	Debug     bool
	Logger    Logger
	Routes    *AuthControllerRoutes
	Auther    IdentityManager
	Protected fiber.Handler
	ClaimsKey string

	bearer []jwtware.JWTExtractor
}

type AuthControllerOption func(*AuthController) *AuthController

// WithControllerAuther sets the identity manager.
func WithControllerAuther(m IdentityManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = m
		return c
	}
}

// WithControllerLogger sets the logger.
func WithControllerLogger(l Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = normalizeLogger(l)
		return c
	}
}

// WithControllerDebug dumps request payloads at debug level.
func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

// WithControllerProtected sets the middleware guarding the Me route.
func WithControllerProtected(h fiber.Handler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Protected = h
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:    defLogger{},
		ClaimsKey: DefaultClaimsKey,
		Routes: &AuthControllerRoutes{
			Register:       "/register",
			Login:          "/login",
			Logout:         "/logout",
			UpdateProfile:  "/updateProfile",
			UpdatePassword: "/updatePassword/:userId",
			Me:             "/me",
		},
		bearer: jwtware.GetExtractors("header:"+fiber.HeaderAuthorization, "Bearer"),
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing IdentityManager in auth controller...")
	}

	return c
}

// RegisterRoutes mounts the controller. The Me route is only mounted when
// a Protected middleware is configured.
func (a *AuthController) RegisterRoutes(r fiber.Router) {
	r.Post(a.Routes.Register, a.Register).Name("auth.register")
	r.Post(a.Routes.Login, a.Login).Name("auth.login")
	r.Post(a.Routes.Logout, a.Logout).Name("auth.logout")
	r.Post(a.Routes.UpdateProfile, a.UpdateProfile).Name("auth.profile.update")
	r.Put(a.Routes.UpdatePassword, a.UpdatePassword).Name("auth.password.update")
	if a.Protected != nil {
		r.Get(a.Routes.Me, a.Protected, a.Me).Name("auth.me")
	}
}

func (a *AuthController) Register(c *fiber.Ctx) error {
	payload := RegisterUserMessage{}
	if err := c.BodyParser(&payload); err != nil {
		return a.sendError(c, NewValidationError(err))
	}
	a.debugPayload("register", payload)

	result, err := a.Auther.Register(c.UserContext(), payload)
	if err != nil {
		return a.sendError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  true,
		"message": "User registered successfully. OTP sent to email.",
		"data":    result,
	})
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := LoginMessage{}
	if err := c.BodyParser(&payload); err != nil {
		return a.sendError(c, NewValidationError(err))
	}
	a.debugPayload("login", fiber.Map{"email": payload.Email})

	result, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return a.sendError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "User login successfully",
		"data":    result,
	})
}

func (a *AuthController) Logout(c *fiber.Ctx) error {
	token, err := jwtware.ExtractRawToken(c, a.bearer)
	if err != nil || token == "" {
		return a.sendError(c, ErrMissingToken)
	}

	if err := a.Auther.Logout(c.UserContext(), token); err != nil {
		return a.sendError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "User logged out successfully",
	})
}

func (a *AuthController) UpdateProfile(c *fiber.Ctx) error {
	payload := UpdateProfileMessage{}
	if err := c.BodyParser(&payload); err != nil {
		return a.sendError(c, NewValidationError(err))
	}
	a.debugPayload("update profile", payload)

	if _, err := a.Auther.UpdateProfile(c.UserContext(), payload); err != nil {
		return a.sendError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "Profile updated successfully",
	})
}

func (a *AuthController) UpdatePassword(c *fiber.Ctx) error {
	payload := ActivatePasswordMessage{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return a.sendError(c, NewValidationError(err))
		}
	}
	payload.UserID = c.Params("userId")

	result, err := a.Auther.ActivatePassword(c.UserContext(), payload)
	if err != nil {
		return a.sendError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "Password updated successfully",
		"user":    result.User,
		"token":   result.Token,
	})
}

func (a *AuthController) Me(c *fiber.Ctx) error {
	claims, ok := GetFiberClaims(c, a.ClaimsKey)
	if !ok {
		return a.sendError(c, ErrInvalidToken)
	}
	return c.JSON(fiber.Map{
		"status": true,
		"data":   claims,
	})
}

func (a *AuthController) debugPayload(action string, payload any) {
	if !a.Debug {
		return
	}
	a.Logger.Debug("auth request payload", "action", action, "payload", print.MaybePrettyJSON(payload))
}

func (a *AuthController) sendError(c *fiber.Ctx, err error) error {
	code, body := ErrorResponse(err)
	if code >= fiber.StatusInternalServerError {
		a.Logger.Error("auth request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(body)
}

// ErrorResponse maps err to a status code and a {status:false, message}
// body. Internal failures also carry the error text for diagnostics.
func ErrorResponse(err error) (int, fiber.Map) {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		if richErr.Code != 0 {
			code = richErr.Code
		}
		message = richErr.Message
	}

	body := fiber.Map{
		"status":  false,
		"message": message,
	}
	if code >= fiber.StatusInternalServerError && err != nil {
		body["error"] = err.Error()
	}
	return code, body
}
