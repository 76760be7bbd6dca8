package app

import (
	"gorm.io/gorm"

	datarepos "github.com/yungbote/mimichub-backend/internal/data/repos"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

func wireRepos(db *gorm.DB, log *logger.Logger) *datarepos.Catalog {
	log.Info("Wiring repos...")
	return datarepos.NewCatalog(db, log)
}
