package api

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

// =============================================================================
// HTML Response Helpers
// =============================================================================
//
// Every HTML response is the layout template with two slots filled:
// "title" (plain text) and "body" (an already escaped fragment).

// -----------------------------------------------------------------------------
// Layout
// -----------------------------------------------------------------------------

// Page is the data handed to the layout template
type Page struct {
	Title string
	Body  template.HTML
}

func (p Page) slots() gin.H {
	return gin.H{
		"title": p.Title,
		"body":  p.Body,
	}
}

// LoadLayout parses the layout template file
func LoadLayout(path string) (*template.Template, error) {
	return template.ParseFiles(path)
}

// -----------------------------------------------------------------------------
// Success Helpers
// -----------------------------------------------------------------------------

// RespondPage renders a page through the layout
// Status: 200 OK
func RespondPage(c *gin.Context, layout string, page Page) {
	c.HTML(http.StatusOK, layout, page.slots())
}

// -----------------------------------------------------------------------------
// Error Helpers
// -----------------------------------------------------------------------------

const (
	notFoundTitle         = "No Such Resource"
	notFoundMessage       = "No such child resource."
	methodNotAllowedTitle = "Method Not Allowed"
)

// RespondNotFound renders the not-found page
// Status: 404 Not Found
func RespondNotFound(c *gin.Context, layout string) {
	c.HTML(http.StatusNotFound, layout, Page{
		Title: notFoundTitle,
		Body:  errorBody(notFoundTitle, notFoundMessage),
	}.slots())
}

// RespondMethodNotAllowed answers any method other than GET and HEAD
// Status: 405 Method Not Allowed
func RespondMethodNotAllowed(c *gin.Context, layout string) {
	c.Header("Allow", "GET, HEAD")
	c.HTML(http.StatusMethodNotAllowed, layout, Page{
		Title: methodNotAllowedTitle,
		Body:  errorBody(methodNotAllowedTitle, "Your browser approached me (at "+c.Request.URL.Path+") with the method \""+c.Request.Method+"\"."),
	}.slots())
}
