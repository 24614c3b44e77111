package handler

import (
	"net/http"

	"github.com/hospitalroster/core/internal/repository"
	"github.com/hospitalroster/core/pkg/errors"
)

// CatalogHandler 处理员工/班次/需求目录的重置
type CatalogHandler struct {
	repo *repository.CatalogRepository
}

// NewCatalogHandler 创建目录处理器
func NewCatalogHandler(repo *repository.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{repo: repo}
}

// Seed 将目录重置为固定的演示数据集（三名员工、三个班次、一周需求）。
// 这是一个重置操作，不接受客户端提供的目录数据。
func (h *CatalogHandler) Seed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	employeeCount, shiftCount, demandCount, err := h.repo.SeedFixedDataset(r.Context())
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "重置目录失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"employees_written": employeeCount,
		"shifts_written":    shiftCount,
		"demands_written":   demandCount,
	})
}
