package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/pkg/config"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/pkg/jwtutil"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/pkg/logger"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/prometheus"
)

// AuthHandler handles back-office login against the single configured credential
type AuthHandler struct {
	cfg *config.AdminConfig
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(cfg *config.AdminConfig) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// LoginRequest is the admin login payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks the credential pair and issues an admin JWT
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.AuthAttemptsCounter.Inc()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.Password)) == 1
	if !userOK || !passOK {
		prometheus.AuthErrorsCounter.Inc()
		log.Warn("Failed admin login attempt", zap.String("username", req.Username))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}

	token, err := jwtutil.GenerateToken(req.Username)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to generate token"})
	}

	log.Info("Admin logged in", zap.String("username", req.Username))
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}
