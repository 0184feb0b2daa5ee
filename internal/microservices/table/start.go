package table

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tablecheck/internal/common/logger"
	"tablecheck/internal/docstore"
	"tablecheck/internal/microservices/table/handler"
	"tablecheck/internal/microservices/table/repository"
	"tablecheck/internal/microservices/table/service"
)

func Mount(r chi.Router, store docstore.Store, requireSession func(http.Handler) http.Handler) {
	lg := logger.New("table-service")
	svc := service.NewTableService(repository.NewTableRepository(store), lg)
	handler.Routes(r, handler.NewTableHandler(svc, lg), requireSession)
}
