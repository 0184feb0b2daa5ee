package menu

import (
	"github.com/go-chi/chi/v5"

	"tablecheck/internal/common/logger"
	"tablecheck/internal/docstore"
	"tablecheck/internal/microservices/menu/handler"
	"tablecheck/internal/microservices/menu/repository"
	"tablecheck/internal/microservices/menu/service"
)

func Mount(r chi.Router, store docstore.Store) {
	lg := logger.New("menu-service")
	svc := service.NewMenuService(repository.NewMenuRepository(store))
	handler.Routes(r, handler.NewMenuHandler(svc, lg))
}
