package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskdeck/backend/docs"
)

// OpenAPIDoc serves the swag-generated document for the todo API.
func OpenAPIDoc(c *gin.Context) {
	doc := docs.SwaggerInfo.ReadDoc()
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}
