package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-service/internal/api/dto"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/service"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// AssetsHandler exposes device and license management endpoints.
type AssetsHandler struct {
	assets *service.AssetService
}

// NewAssetsHandler constructs handler.
func NewAssetsHandler(assetService *service.AssetService) *AssetsHandler {
	return &AssetsHandler{assets: assetService}
}

// CreateAsset POST /staff/assets.
func (h *AssetsHandler) CreateAsset(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AssetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	asset, err := h.assets.CreateAsset(c.Context(), staff, assetInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": assetResponse(asset)})
}

// UpdateAsset PUT /staff/assets/:id.
func (h *AssetsHandler) UpdateAsset(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AssetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	asset, err := h.assets.UpdateAsset(c.Context(), staff, c.Params("id"), assetInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assetResponse(asset)})
}

// GetAsset GET /staff/assets/:id.
func (h *AssetsHandler) GetAsset(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	asset, err := h.assets.GetAsset(c.Context(), staff, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assetResponse(asset)})
}

// ListAssets GET /staff/assets.
func (h *AssetsHandler) ListAssets(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var kind *domain.AssetKind
	if val := c.Query("kind"); val != "" {
		k := domain.AssetKind(val)
		kind = &k
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	assets, err := h.assets.ListAssets(c.Context(), staff, kind, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.AssetResponse, 0, len(assets))
	for i := range assets {
		items = append(items, assetResponse(&assets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func assetInput(req dto.AssetRequest) service.AssetInput {
	return service.AssetInput{
		CompanyID:      req.CompanyID,
		Kind:           req.Kind,
		Name:           req.Name,
		SerialNumber:   req.SerialNumber,
		AssignedUserID: req.AssignedUserID,
		ExpiresAt:      req.ExpiresAt,
		Metadata:       req.Metadata,
	}
}

func assetResponse(asset *domain.Asset) dto.AssetResponse {
	return dto.AssetResponse{
		ID:             asset.ID,
		CompanyID:      asset.CompanyID,
		Kind:           asset.Kind,
		Name:           asset.Name,
		SerialNumber:   asset.SerialNumber,
		AssignedUserID: asset.AssignedUserID,
		ExpiresAt:      asset.ExpiresAt,
		Metadata:       asset.Metadata,
		CreatedAt:      asset.CreatedAt,
		UpdatedAt:      asset.UpdatedAt,
	}
}
