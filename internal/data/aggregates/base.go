package aggregates

import (
	"context"
	"strings"
	"time"

	domainagg "github.com/yungbote/mimichub-backend/internal/domain/aggregates"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

// Deps bundles what a multi-statement write needs.
type Deps struct {
	DB     *gorm.DB
	Runner TxRunner
	Hooks  Hooks
}

func (d Deps) withDefaults() Deps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	return d
}

// Write runs fn inside one transaction, maps its error and reports the outcome
// to the hooks. When dbc already carries a transaction fn joins it instead of
// opening a new one.
func Write(dbc dbctx.Context, deps Deps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "write"
	}
	ctx := dbc.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	if dbc.Tx != nil {
		err = dbc.Tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(dbctx.Context{Ctx: ctx, Tx: tx})
		})
	} else {
		err = deps.Runner.InTx(ctx, fn)
	}
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = errorStatus(mapped)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
		if domainagg.IsCode(mapped, domainagg.CodeRetryable) {
			deps.Hooks.IncRetry(op)
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func errorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
