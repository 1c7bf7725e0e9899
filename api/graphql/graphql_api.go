package graphql

import (
	"log"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"jewelstock.GO/api"
	"jewelstock.GO/graphqlserver"
)

func init() {
	api.RegisterRoute(RegisterGraphQLRoutes)
}

// RegisterGraphQLRoutes mounts the read-only GraphQL endpoint at /graphql.
func RegisterGraphQLRoutes(e *echo.Echo, db *gorm.DB) {
	schema, err := graphqlserver.NewSchema(db)
	if err != nil {
		log.Printf("graphql: schema parse failed, endpoint disabled: %v", err)
		return
	}
	h := graphqlserver.Handler(schema)
	e.POST("/graphql", echo.WrapHandler(h))
}
