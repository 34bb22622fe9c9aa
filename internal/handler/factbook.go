package handler

import (
	"context"
	"net/http"

	apperrors "github.com/Payphone-Digital/factbook/internal/errors"
	"github.com/Payphone-Digital/factbook/internal/factbook"
	ctxutil "github.com/Payphone-Digital/factbook/pkg/context"
	"github.com/Payphone-Digital/factbook/pkg/logger"
	"github.com/gin-gonic/gin"
)

// PageStore is implemented by *factbook.Store.
type PageStore interface {
	CountryList(ctx context.Context) (*factbook.PageData[factbook.CountryListData], error)
	CountryCodes(ctx context.Context) (*factbook.PageData[factbook.CountryCodeData], error)
	Country(ctx context.Context, slug string) (*factbook.PageData[factbook.CountryData], error)
}

type FactbookHandler struct {
	pages PageStore
	log   *logger.ContextLogger
}

func NewFactbookHandler(pages PageStore, log *logger.ContextLogger) *FactbookHandler {
	return &FactbookHandler{pages: pages, log: log}
}

type countryResponse struct {
	Path        string                      `json:"path"`
	Title       string                      `json:"title"`
	Region      string                      `json:"region"`
	HeaderMenu  factbook.HeaderMenu         `json:"header_menu"`
	PageContext factbook.PageContext        `json:"page_context"`
	Values      *factbook.CountryDataValues `json:"values"`
}

type countryCodesResponse struct {
	Title      string                        `json:"title"`
	HeaderMenu factbook.HeaderMenu           `json:"header_menu"`
	Values     *factbook.CountryCodeDataJSON `json:"values"`
}

// Countries serves the country index page data as generated.
func (h *FactbookHandler) Countries(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Countries")

	page, err := h.pages.CountryList(ctx)
	if err != nil {
		abortWithError(c, ctx, h.log, "Failed to load countries", err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Country serves one country with its embedded json decoded.
func (h *FactbookHandler) Country(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Country")

	slug := c.Param("slug")
	page, err := h.pages.Country(ctx, slug)
	if err != nil {
		abortWithError(c, ctx, h.log, "Failed to load country", err)
		return
	}

	data := &page.Result.Data
	values, err := data.Decode()
	if err != nil {
		abortWithError(c, ctx, h.log, "Failed to decode country", apperrors.WrapError(apperrors.ErrInternal, err))
		return
	}

	h.log.Debug(ctx, "Country served").
		String("slug", slug).
		Int("categories", len(values.Categories)).
		Log()

	c.JSON(http.StatusOK, countryResponse{
		Path:        page.Path,
		Title:       data.Country.Title,
		Region:      data.Country.Region,
		HeaderMenu:  data.HeaderMenu,
		PageContext: page.Result.PageContext,
		Values:      values,
	})
}

func (h *FactbookHandler) CountryCodes(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "CountryCodes")

	page, err := h.pages.CountryCodes(ctx)
	if err != nil {
		abortWithError(c, ctx, h.log, "Failed to load country codes", err)
		return
	}

	data := &page.Result.Data
	values, err := data.Decode()
	if err != nil {
		abortWithError(c, ctx, h.log, "Failed to decode country codes", apperrors.WrapError(apperrors.ErrInternal, err))
		return
	}

	c.JSON(http.StatusOK, countryCodesResponse{
		Title:      data.Page.Title,
		HeaderMenu: data.Page.HeaderMenu,
		Values:     values,
	})
}
