package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"certapi/internal/model"
	"certapi/internal/service"
)

// dataResponse wraps successful payloads.
type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// Root godoc
// @Summary      Service banner
// @Tags         meta
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       / [get]
func Root() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "message": "Certificate Generator API"})
	}
}

// GenerateCertificate godoc
// @Summary      Generate a certificate
// @Description  Renders the certificate, converts it to PDF and JPEG, optionally uploads both and emails them.
// @Tags         certificates
// @Accept       json
// @Produce      json
// @Param        request  body      model.CertificateRequest  true  "Certificate request"
// @Success      201      {object}  dataResponse{data=model.CertificateMeta}
// @Failure      400      {object}  errorPayload
// @Failure      429      {object}  errorPayload
// @Failure      500      {object}  errorPayload
// @Router       /api/v1/certificates/generate [post]
func GenerateCertificate(svc service.CertificateService, v *validator.Validate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.CertificateRequest
		if err := c.BodyParser(&req); err != nil {
			if errors.Is(err, fiber.ErrUnprocessableEntity) {
				return fiber.NewError(fiber.StatusBadRequest, "request body must be application/json")
			}
			return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
		}
		if err := validateStruct(v, req); err != nil {
			return err
		}

		meta, err := svc.Generate(c.UserContext(), req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(dataResponse{Success: true, Data: meta})
	}
}

// GetCertificate godoc
// @Summary      Get certificate metadata
// @Tags         certificates
// @Produce      json
// @Param        id   path      string  true  "Filename base"
// @Success      200  {object}  dataResponse{data=model.CertificateMeta}
// @Failure      404  {object}  errorPayload
// @Router       /api/v1/certificates/{id} [get]
func GetCertificate(svc service.CertificateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		meta, err := svc.GetMeta(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(dataResponse{Success: true, Data: meta})
	}
}
