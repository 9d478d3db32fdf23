package handlers

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

// OpenAPIPath is where the router mounts OpenAPISpec; the docs page loads it from there.
const OpenAPIPath = "/docs/openapi.yaml"

var (
	//go:embed openapi.yaml
	openAPISpec []byte

	//go:embed swagger.html
	swaggerPage string

	swaggerHTML = renderSwaggerPage()
)

func renderSwaggerPage() []byte {
	tmpl := template.Must(template.New("swagger").Parse(swaggerPage))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Title, SpecURL string }{"UserHub API", OpenAPIPath}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func SwaggerUI(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", swaggerHTML)
}

func OpenAPISpec(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "application/yaml; charset=utf-8", openAPISpec)
}
