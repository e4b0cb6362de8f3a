package profile

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/vidya365/rental/app/echoServer/jwtx"
	"github.com/vidya365/rental/model"
	userrepo "github.com/vidya365/rental/repository/user"
)

type Controller struct {
	Repo userrepo.Repo
	V    *validator.Validate
	Log  *slog.Logger
}

type UpsertProfileReq struct {
	Phone        string `json:"phone" validate:"required,len=10,numeric"`
	Email        string `json:"email" validate:"required,email"`
	AddressLine1 string `json:"address_line1" validate:"required"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Aadhar       string `json:"aadhar" validate:"required,len=12,numeric"`
}

// GET /v1/profile
func (h *Controller) Get(c echo.Context) error {
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	p, err := h.Repo.ProfileByUserID(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("profile get", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if p == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "profile not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": p})
}

// PUT /v1/profile
func (h *Controller) Put(c echo.Context) error {
	var req UpsertProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	p := &model.UserProfile{
		UserID:       uid,
		Phone:        req.Phone,
		Email:        req.Email,
		AddressLine1: req.AddressLine1,
		City:         req.City,
		State:        req.State,
		Pincode:      req.Pincode,
		Aadhar:       req.Aadhar,
	}
	if err := h.Repo.UpsertProfile(c.Request().Context(), p); err != nil {
		h.Log.Error("profile upsert", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": p})
}
