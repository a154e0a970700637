package handler

import (
	"errors"
	"net/http"

	"shopapp/internal/config"
	"shopapp/internal/middleware"
	"shopapp/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /auth のHTTP
type AuthHandler struct {
	uc  *usecase.AuthUsecase
	cfg config.Config
}

// DI
func NewAuthHandler(uc *usecase.AuthUsecase, cfg config.Config) *AuthHandler {
	return &AuthHandler{uc: uc, cfg: cfg}
}

// /auth/register のリクエストボディ。
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

type forgotPasswordResponse struct {
	Message  string `json:"message"`
	ResetURL string `json:"resetUrl,omitempty"`
	Note     string `json:"note,omitempty"`
}

func (h *AuthHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/forgot-password", h.forgotPassword)
	g.PUT("/reset-password/:resetToken", h.resetPassword)
	g.GET("/profile", h.profile, middleware.AuthJWT(h.cfg))
}

// auth系sentinelエラーをステータスへ変換
func writeAuthError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "Invalid input"})
	case errors.Is(err, usecase.ErrEmailTaken):
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "User already exists"})
	case errors.Is(err, usecase.ErrUnauthorized):
		// emailが無いのかパスワード違いなのかは教えない
		return c.JSON(http.StatusUnauthorized, MessageResponse{Message: "Invalid email or password"})
	case errors.Is(err, usecase.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, MessageResponse{Message: "User not found"})
	case errors.Is(err, usecase.ErrInvalidResetToken):
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "Invalid or expired reset token"})
	default:
		return c.JSON(http.StatusInternalServerError, MessageResponse{Message: "internal error"})
	}
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "Invalid input"})
	}

	out, err := h.uc.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "Invalid input"})
	}

	out, err := h.uc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) profile(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, MessageResponse{Message: "unauthorized"})
	}

	out, err := h.uc.Profile(c.Request().Context(), userID)
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) forgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "Invalid input"})
	}

	resetURL, err := h.uc.ForgotPassword(c.Request().Context(), req.Email)
	if err != nil {
		return writeAuthError(c, err)
	}

	// emailの有無に関わらず同じメッセージを返す
	res := forgotPasswordResponse{
		Message: "If that email exists, a reset link has been sent",
	}

	// devだけリセットURLをそのまま返す
	if h.cfg.GoEnv == "dev" && resetURL != "" {
		res.ResetURL = resetURL
		res.Note = "Check logs for reset link (dev)"
	}

	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "Invalid input"})
	}

	if err := h.uc.ResetPassword(c.Request().Context(), c.Param("resetToken"), req.Password); err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Password reset successful. Please login with your new password."})
}
