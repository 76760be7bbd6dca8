package aggregates

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/mimichub-backend/internal/domain/aggregates"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
)

// TxRunner opens the transaction around one catalogue write.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

// GormTxRunner runs fn inside db.Transaction. Options, when set, is passed to
// BEGIN; nil keeps the driver's default isolation.
type GormTxRunner struct {
	DB      *gorm.DB
	Options *sql.TxOptions
}

func NewGormTxRunner(db *gorm.DB) *GormTxRunner {
	return &GormTxRunner{DB: db}
}

func (r *GormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.DB == nil {
		return domainagg.NewError(domainagg.CodeInternal, "tx", "no database configured for writes", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	body := func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	}
	if r.Options != nil {
		return r.DB.WithContext(ctx).Transaction(body, r.Options)
	}
	return r.DB.WithContext(ctx).Transaction(body)
}
