package handler

import (
	"database/sql"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"certapi/docs"
	"certapi/internal/service"
	"certapi/internal/storage"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// db and store may be nil when the metadata store or object storage are not configured.
func RegisterRoutes(app *fiber.App, db *sql.DB, store storage.Storage, svc service.CertificateService) {
	app.Get("/", Root())
	app.Get("/swagger/*", SwaggerUI())

	app.Get("/health", HealthCheck(db, store))
	app.Get("/healthz", LivenessProbe())

	v := NewValidator()
	certs := app.Group("/api/v1/certificates")
	certs.Post("/generate", GenerateCertificate(svc, v))
	certs.Get("/:id", GetCertificate(svc))
}

// SwaggerUI serves the API docs.
func SwaggerUI() fiber.Handler {
	return swagger.HandlerDefault
}

// ConfigureSwagger sets the host and scheme advertised by the API docs.
// The public base URL wins over the listen host. Call it once before serving.
func ConfigureSwagger(baseURL, host string) {
	scheme := "http"
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		host = u.Host
		if u.Scheme != "" {
			scheme = u.Scheme
		}
	}
	docs.SwaggerInfo.Host = host
	docs.SwaggerInfo.Schemes = []string{scheme}
}
