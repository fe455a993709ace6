package folio

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/imaging"
)

const (
	transformPrefix = "/img/"
	originalsPrefix = "/media/"
	maxOriginalSize = 40 << 20 // 40MB

	immutableCache = "public, max-age=31536000, immutable"
)

// handleTransform serves a resized variant of an original. The query string
// is the one built by the image resolver.
func (a *App) handleTransform(c echo.Context) error {
	if l := a.transformLimiter; l != nil {
		ip := c.RealIP()
		if !l.Allow(ip) {
			c.Response().Header().Set("Retry-After", "60")
			return echo.NewHTTPError(http.StatusTooManyRequests)
		}
		c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(l.Remaining(ip)))
	}
	key, ok := cleanKey(c.Param("*"))
	if !ok {
		return echo.ErrNotFound
	}
	t, err := imaging.ParseTransform(c.QueryParams())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	variant := key + "?" + c.QueryParams().Encode()
	v, err, _ := a.transforms.Do(variant, func() (any, error) {
		if a.variants != nil {
			if out, ok := a.variants.Get(variant); ok {
				return out, nil
			}
		}
		// Shared by every waiter, so it outlives the first caller's request.
		out, err := a.transform(context.WithoutCancel(ctx), key, t)
		if err == nil && a.variants != nil {
			a.variants.Add(variant, out)
		}
		return out, err
	})
	switch {
	case errors.Is(err, ErrNoOriginal):
		return echo.ErrNotFound
	case errors.Is(err, imaging.ErrUnsupportedSource):
		a.Logger.WarnContext(ctx, "unsupported original", "key", key, "err", err)
		return echo.NewHTTPError(http.StatusUnsupportedMediaType)
	case err != nil:
		return err
	}
	out := v.(imaging.Output)

	h := c.Response().Header()
	h.Set("ETag", out.ETag)
	h.Set("Cache-Control", immutableCache)
	if match := c.Request().Header.Get("If-None-Match"); match != "" && match == out.ETag {
		return c.NoContent(http.StatusNotModified)
	}
	h.Set("X-Image-Size", strconv.Itoa(out.Width)+"x"+strconv.Itoa(out.Height))
	return c.Blob(http.StatusOK, out.ContentType, out.Data)
}

// transform reads the original under key and renders t. Concurrent
// requests for the same variant share one call through a.transforms.
func (a *App) transform(ctx context.Context, key string, t imaging.Transform) (imaging.Output, error) {
	src, err := a.Origin.Open(ctx, key)
	if err != nil {
		return imaging.Output{}, err
	}
	defer src.Close()
	return imaging.Process(io.LimitReader(src, maxOriginalSize), t)
}

// handleOriginal streams an original image unchanged.
func (a *App) handleOriginal(c echo.Context) error {
	key, ok := cleanKey(c.Param("*"))
	if !ok {
		return echo.ErrNotFound
	}
	src, err := a.Origin.Open(c.Request().Context(), key)
	if errors.Is(err, ErrNoOriginal) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	defer src.Close()

	contentType := mime.TypeByExtension(strings.ToLower(path.Ext(key)))
	if !strings.HasPrefix(contentType, "image/") {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set("Cache-Control", immutableCache)
	return c.Stream(http.StatusOK, contentType, src)
}
