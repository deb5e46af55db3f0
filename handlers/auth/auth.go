package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"student-fees-api/database"
	"student-fees-api/model"
	"student-fees-api/utils/auth"
	"student-fees-api/utils/middleware"
	"student-fees-api/utils/response"
	"student-fees-api/utils/validation"
)

// AuthHandler handles registration, login and token lifecycle
type AuthHandler struct {
	store                database.Storage
	jwtManager           *auth.JWTManager
	blacklistService     *auth.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store database.Storage, jwtManager *auth.JWTManager, bruteForce *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		store:                store,
		jwtManager:           jwtManager,
		blacklistService:     auth.NewBlacklistService(store),
		bruteForceProtection: bruteForce,
		validator:            validation.NewValidator(),
	}
}

// UserResponse is the user shape returned by auth endpoints
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// RegisterRequest represents a student self-registration request. The
// student profile is created together with the account.
type RegisterRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	StudentCode   string `json:"studentId" validate:"required,max=50"`
	FullName      string `json:"fullName" validate:"required,max=255"`
	Course        string `json:"course" validate:"required,max=255"`
	ContactNumber string `json:"contactNumber" validate:"required,max=50"`
	Address       string `json:"address" validate:"required,max=500"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	user := &model.User{
		Email:        validation.SanitizeString(req.Email),
		PasswordHash: passwordHash,
		Role:         model.RoleStudent,
	}
	if err := h.store.CreateUser(user); err != nil {
		return response.FromError(c, err)
	}

	student := &model.Student{
		UserID:        user.ID,
		StudentCode:   validation.SanitizeString(req.StudentCode),
		FullName:      validation.SanitizeString(req.FullName),
		Course:        validation.SanitizeString(req.Course),
		ContactNumber: validation.SanitizeString(req.ContactNumber),
		Address:       validation.SanitizeString(req.Address),
	}
	if err := h.store.CreateStudent(student); err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, fiber.Map{
		"user":    toUserResponse(user),
		"student": student,
	})
}

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int          `json:"expiresIn"` // in seconds
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}

	ip := c.IP()

	user, err := h.store.GetUserByEmail(req.Email)
	if err != nil {
		// Record failed attempt even if user not found
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, ip)
		}
		return response.Unauthorized(c, "Invalid email or password")
	}

	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, ip)
		}
		return response.Unauthorized(c, "Invalid email or password")
	}

	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccessfulAttempt(c, ip)
	}

	accessToken, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}
	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	return response.Success(c, LoginResponse{
		User:         toUserResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    24 * 60 * 60,
	})
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	claims, err := h.jwtManager.ValidateToken(req.RefreshToken)
	if err != nil {
		return response.Unauthorized(c, "Invalid refresh token")
	}
	if claims.TokenType != "refresh" {
		return response.Unauthorized(c, "Invalid token type")
	}

	revoked, err := h.blacklistService.IsTokenRevoked(claims.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to check token status")
	}
	if revoked {
		return response.Unauthorized(c, "Token has been revoked")
	}

	user, err := h.store.GetUserByID(claims.UserID)
	if err != nil {
		return response.Unauthorized(c, "User not found")
	}
	if user.TokenVersion != claims.TokenVersion {
		return response.Unauthorized(c, "Token has been invalidated")
	}

	accessToken, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	return response.Success(c, fiber.Map{
		"accessToken": accessToken,
		"expiresIn":   24 * 60 * 60,
	})
}

// Logout handles POST /api/auth/logout. Blacklists the current token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	if err := h.blacklistService.RevokeToken(claims.ID, claims.UserID, claims.ExpiresAt.Time, "logout"); err != nil {
		return response.InternalServerError(c, "Failed to revoke token")
	}

	return response.Success(c, fiber.Map{"message": "Logged out successfully"})
}

// Me handles GET /api/auth/me. Returns the user and their student profile
// when one exists.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	payload := fiber.Map{"user": toUserResponse(user)}
	if student, err := h.store.GetStudentByUserID(user.ID); err == nil {
		payload["student"] = student
	}

	return response.Success(c, payload)
}
