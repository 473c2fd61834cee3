package router

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/questx-lab/prizechest/pkg/errorx"
	"github.com/questx-lab/prizechest/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	befores := router.befores
	closers := router.closers

	return func(c *gin.Context) {
		ctx := xcontext.Inherit(c.Request.Context(), router.rootCtx)
		ctx = xcontext.WithHTTPRequest(ctx, c.Request)

		defer func() {
			for _, closer := range closers {
				closer(ctx)
			}
		}()

		var err error
		for _, before := range befores {
			ctx, err = before(ctx)
			if err != nil {
				ctx = writeError(ctx, c.Writer, err)
				return
			}
		}

		req := new(Request)
		if err := bind(c, method, req); err != nil {
			xcontext.Logger(ctx).Debugf("Cannot bind request: %v", err)
			ctx = writeError(ctx, c.Writer, errorx.New(errorx.BadRequest, "Invalid request"))
			return
		}

		resp, err := handler(ctx, req)
		if err != nil {
			ctx = writeError(ctx, c.Writer, err)
			return
		}

		if err := WriteJson(c.Writer, newResponse(resp)); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
		}
	}
}

func bind(c *gin.Context, method string, req any) error {
	switch method {
	case http.MethodGet:
		return c.ShouldBindQuery(req)
	case http.MethodPost:
		// An empty body is an empty request.
		if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	default:
		return errors.New("unsupported method")
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) context.Context {
	ctx = xcontext.WithError(ctx, err)
	if err := WriteJson(w, newErrorResponse(err)); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}

	return ctx
}
