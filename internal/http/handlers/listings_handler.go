// Listings ops endpoint.
//
// This file exposes a read-only, paginated view of a day's listings for
// operators (sold ones included), with weak-ETag support so dashboards can
// poll cheaply. It is not part of the chat webhook surface.
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sunrinpay/mealbot/internal/domain"
	"github.com/sunrinpay/mealbot/internal/repo"
	"github.com/sunrinpay/mealbot/internal/utils"
)

// ListingsHandler serves the ops listings view directly from the store.
type ListingsHandler struct {
	DB *gorm.DB
}

// ListingView is the serialized form of one listing row.
type ListingView struct {
	ID     uint   `json:"id"`
	Seller string `json:"seller"`
	Price  int    `json:"price"`
	Date   string `json:"date"`
	Sold   bool   `json:"sold"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListListingsResponse wraps a page of listings and pagination information.
type ListListingsResponse struct {
	Date       string        `json:"date"`
	Listings   []ListingView `json:"listings"`
	Pagination Pagination    `json:"pagination"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// ListListings godoc
// @ID          listListings
// @Summary     List a day's listings (paginated)
// @Description Returns every listing for a date, sold included. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Ops
// @Produce     json
// @Param       date           query   string  false "Day (YYYY-MM-DD), default today"
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"    minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page" minimum(1) maximum(100) default(20)
// @Success     200  {object} handlers.ListListingsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /listings [get]
func (h *ListingsHandler) ListListings(c *gin.Context) {
	ctx := c.Request.Context()

	date := c.Query("date")
	if date == "" {
		date = domain.DateOf(time.Now())
	} else if _, err := time.Parse(domain.DateLayout, date); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date must be YYYY-MM-DD")
		return
	}

	// ETag pre-check (best effort).
	count, maxTS, err := repo.ListingsStats(ctx, h.DB, date)
	if err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.Unix()
		}
		etag := fmt.Sprintf(`W/"listings:%s:%d:%d"`, date, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	page, pageSize := clampPagination(c)
	offset := (page - 1) * pageSize

	total, err := repo.CountListings(ctx, h.DB, date)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	var items []domain.Listing
	if total > 0 {
		items, err = repo.ListListingsPage(ctx, h.DB, date, offset, pageSize)
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
			return
		}
	}

	views := make([]ListingView, 0, len(items))
	for _, l := range items {
		views = append(views, ListingView{
			ID:     l.ID,
			Seller: l.Owner.Name,
			Price:  l.Price,
			Date:   l.Date,
			Sold:   l.Sold,
		})
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListListingsResponse{
		Date:     date,
		Listings: views,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}
