package api

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/xiaoyuanzhu-com/comix/library"
	"github.com/xiaoyuanzhu-com/comix/utils"
)

// Config wires the HTTP layer to the collection
type Config struct {
	Index    *library.Index
	Resolver PageResolver
	Layout   string // name of the layout template loaded into the engine
	Logger   zerolog.Logger
}

// Handlers serves dispatcher responses over HTTP
type Handlers struct {
	dispatcher *Dispatcher
	layout     string
	logger     zerolog.Logger
}

// NewHandlers creates handlers rendering through the named layout template
func NewHandlers(cfg Config) *Handlers {
	return &Handlers{
		dispatcher: NewDispatcher(cfg.Index, cfg.Resolver, cfg.Logger),
		layout:     cfg.Layout,
		logger:     cfg.Logger,
	}
}

// Serve answers GET and HEAD for every path
func (h *Handlers) Serve(c *gin.Context) {
	switch resp := h.dispatcher.Dispatch(c.Request.Context(), c.Request.URL.Path).(type) {
	case NotFound:
		RespondNotFound(c, h.layout)
	case PageContent:
		h.servePage(c, resp.FilePath)
	default:
		page, err := renderListing(resp)
		if err != nil {
			h.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("failed to render listing")
			c.Status(http.StatusInternalServerError)
			return
		}
		RespondPage(c, h.layout, page)
	}
}

// MethodNotAllowed answers everything that is not GET or HEAD
func (h *Handlers) MethodNotAllowed(c *gin.Context) {
	RespondMethodNotAllowed(c, h.layout)
}

// servePage streams an extracted page file
func (h *Handlers) servePage(c *gin.Context, path string) {
	f, err := os.Open(path)
	if err != nil {
		h.logger.Warn().Err(err).Str("page", path).Msg("extracted page disappeared")
		RespondNotFound(c, h.layout)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		RespondNotFound(c, h.layout)
		return
	}

	c.Header("Content-Type", utils.DetectMimeType(path))
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}
