package handlers

import (
	"embed"
	"html/template"
	"io"

	"boltadmin/internal/api"
	"boltadmin/internal/assist"
	"boltadmin/internal/catalog"
	"boltadmin/internal/session"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Handler serves the console pages. All state flows through explicit
// dependencies: the session store gates access, the listing and workflow own
// the catalog interactions.
type Handler struct {
	sessions *session.Store
	backend  *api.Client
	listing  *catalog.Listing
	workflow *catalog.Workflow
	suggest  *assist.DescriptionGenerator // nil disables the assist action
	hub      *ProgressHub

	googleClientID string
}

// New wires the console handler. suggest may be nil.
func New(sessions *session.Store, backend *api.Client, listing *catalog.Listing,
	workflow *catalog.Workflow, suggest *assist.DescriptionGenerator, googleClientID string) *Handler {

	h := &Handler{
		sessions:       sessions,
		backend:        backend,
		listing:        listing,
		workflow:       workflow,
		suggest:        suggest,
		hub:            NewProgressHub(),
		googleClientID: googleClientID,
	}
	workflow.Observe(h.hub.BroadcastProgress)
	return h
}

// Register mounts the console routes. authMW guards the admin surfaces.
func (h *Handler) Register(e *echo.Echo, authMW echo.MiddlewareFunc) {
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(302, "/login")
	})
	e.GET("/login", h.LoginPage)
	e.POST("/login", h.Login)
	e.POST("/logout", h.Logout)

	admin := e.Group("/admin", authMW)
	admin.GET("", h.Products)
	admin.GET("/products/new", h.NewProduct)
	admin.GET("/products/:id/edit", h.EditProduct)
	admin.POST("/products/save", h.SaveProduct)
	admin.POST("/products/:id/delete", h.DeleteProduct)
	admin.POST("/products/suggest", h.SuggestDescription)

	e.GET("/ws/progress", h.Progress, authMW)
}

// TemplateRenderer adapts html/template to echo's Renderer interface.
type TemplateRenderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded console templates.
func NewRenderer() (*TemplateRenderer, error) {
	t, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{templates: t}, nil
}

func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}
