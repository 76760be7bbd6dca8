package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context carries the request context and the session every repository call runs on.
// A nil Tx means "use the repository's own pool handle".
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// Background is a convenience for callers outside a request (CLI commands, seeders).
func Background() Context {
	return Context{Ctx: context.Background()}
}

// WithTx returns a copy bound to tx.
func (c Context) WithTx(tx *gorm.DB) Context {
	return Context{Ctx: c.ctx(), Tx: tx}
}

// Session resolves the handle a repository should use, falling back to fallback
// when no transaction is attached.
func (c Context) Session(fallback *gorm.DB) *gorm.DB {
	t := c.Tx
	if t == nil {
		t = fallback
	}
	return t.WithContext(c.ctx())
}

func (c Context) ctx() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}
