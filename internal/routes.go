package internal

import (
	"net/http"
	"updatescan/internal/controllers"
	"updatescan/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/pages", http.HandlerFunc(apiController.GetPages))
	routers.Get("/pages/changed", http.HandlerFunc(apiController.GetChangedPages))
	routers.Get("/pages/content", http.HandlerFunc(apiController.GetContent))
	routers.Post("/pages/add", http.HandlerFunc(apiController.AddPage))
	routers.Post("/pages/view", http.HandlerFunc(apiController.ViewPage))
	routers.Post("/pages/delete", http.HandlerFunc(apiController.DeletePage))
	routers.Post("/scan", http.HandlerFunc(apiController.ScanAll))
	return routers
}
