package router

import "github.com/gin-gonic/gin"

// factbookRoutes serves generated page data. These routes are public.
func (r *Router) factbookRoutes(version *gin.RouterGroup) {
	factbook := version.Group("/factbook")
	{
		factbook.GET("/countries", r.factbookHandler.Countries)
		factbook.GET("/countries/:slug", r.factbookHandler.Country)
		factbook.GET("/country-codes", r.factbookHandler.CountryCodes)
	}
}
