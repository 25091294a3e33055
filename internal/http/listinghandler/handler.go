package listinghandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"listingtrendgo/internal/scheduler/sweepscheduler"
	"listingtrendgo/internal/services/listing"
	"listingtrendgo/internal/services/trending"
	"listingtrendgo/internal/services/window"
	"listingtrendgo/internal/store/listingstore"
)

type Handler struct {
	listings  listing.IListingService
	trendings *trending.Service
	sched     *sweepscheduler.Scheduler
}

func New(listings listing.IListingService, trendings *trending.Service, sched *sweepscheduler.Scheduler) *Handler {
	return &Handler{listings: listings, trendings: trendings, sched: sched}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/listings", h.create)
	r.GET("/listings", h.list)
	r.GET("/listings/:id", h.info)
	r.PUT("/listings/:id", h.updateAuction)
	r.POST("/listings/:id/view", h.view)
	r.POST("/listings/:id/trending", h.toggleTrending)
	r.POST("/admin/trending/sweep", h.sweep)
	r.GET("/healthz", h.health)
}

// @Summary		Create a listing
// @Description	Creates a fixed-price or auction listing. Auction listings get their bidding window computed before anything is persisted.
// @Tags			Listings
// @Param			body	body		CreateListingBody	true	"Listing payload"
// @Success		201		{object}	listingstore.Listing
// @Failure		400		{object}	ErrorResponse
// @Router			/listings [post]
func (h *Handler) create(ginCtx *gin.Context) {
	var body CreateListingBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}
	if body.SaleType == listingstore.SaleTypeAuction && body.AuctionSettings == nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: "auctionSettings is required for AUCTION listings"})
		return
	}

	in := listing.CreateInput{
		Title:    body.Title,
		Price:    body.Price,
		SaleType: body.SaleType,
	}
	if body.AuctionSettings != nil {
		settings := toSettings(*body.AuctionSettings)
		in.Auction = &settings
	}

	l, err := h.listings.Create(ginCtx.Request.Context(), in)
	if err != nil {
		status := http.StatusInternalServerError
		if window.IsValidation(err) {
			status = http.StatusBadRequest
		}
		ginCtx.JSON(status, &ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusCreated, l)
}

// @Summary		Update auction parameters
// @Description	Replaces the auction parameters and recomputes the bidding window wholesale.
// @Tags			Listings
// @Param			id		path	string				true	"Listing ID"
// @Param			body	body	AuctionSettingsBody	true	"Auction payload"
// @Success		200	{object}	listingstore.Listing
// @Failure		400	{object}	ErrorResponse
// @Failure		404	{object}	ErrorResponse
// @Router			/listings/{id} [put]
func (h *Handler) updateAuction(ginCtx *gin.Context) {
	var body AuctionSettingsBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	l, err := h.listings.UpdateAuction(ginCtx.Request.Context(), ginCtx.Param("id"), toSettings(body))
	if err != nil {
		switch {
		case window.IsValidation(err):
			ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		case errors.Is(err, listingstore.ErrNotFound):
			ginCtx.JSON(http.StatusNotFound, &ErrorResponse{Error: err.Error()})
		default:
			ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: err.Error()})
		}
		return
	}
	ginCtx.JSON(http.StatusOK, l)
}

// @Summary		Get listing details
// @Tags			Listings
// @Param			id	path		string	true	"Listing ID"
// @Success		200	{object}	listingstore.Listing
// @Failure		404	{object}	ErrorResponse
// @Router			/listings/{id} [get]
func (h *Handler) info(ginCtx *gin.Context) {
	l, err := h.listings.Get(ginCtx.Request.Context(), ginCtx.Param("id"))
	if err != nil {
		ginCtx.JSON(http.StatusNotFound, &ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusOK, l)
}

// @Summary		List listings
// @Description	Paginated listing query. openOnly applies the same bidding_ends_at comparison the stored flag was computed with.
// @Tags			Listings
// @Param			saleType	query		string	false	"Sale type"	Enums(FIXED,AUCTION)
// @Param			trending	query		bool	false	"Trending only"
// @Param			openOnly	query		bool	false	"Open auctions only"
// @Param			limit		query		int		false	"Max results"	default(10)
// @Param			offset		query		int		false	"Offset"		default(0)
// @Success		200	{array}		listingstore.Listing
// @Failure		400	{object}	ErrorResponse
// @Router			/listings [get]
func (h *Handler) list(ginCtx *gin.Context) {
	var q ListListingsQuery
	if err := ginCtx.ShouldBindQuery(&q); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}
	out, err := h.listings.List(ginCtx.Request.Context(), listingstore.Filter{
		SaleType:     q.SaleType,
		TrendingOnly: q.Trending,
		OpenOnly:     q.OpenOnly,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusOK, out)
}

// @Summary		Track a listing view
// @Description	Increments the view counter and schedules an asynchronous trending re-evaluation. Never writes the trending flag itself.
// @Tags			Listings
// @Param			id	path	string	true	"Listing ID"
// @Success		202
// @Failure		404	{object}	ErrorResponse
// @Router			/listings/{id}/view [post]
func (h *Handler) view(ginCtx *gin.Context) {
	err := h.trendings.OnListingViewed(ginCtx.Request.Context(), ginCtx.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, listingstore.ErrNotFound) {
			status = http.StatusNotFound
		}
		ginCtx.JSON(status, &ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.Status(http.StatusAccepted)
}

// @Summary		Toggle trending manually
// @Description	Admin override of the trending flag.
// @Tags			Admin
// @Param			id		path	string				true	"Listing ID"
// @Param			body	body	ToggleTrendingBody	true	"Flag payload"
// @Success		200
// @Failure		404	{object}	ErrorResponse
// @Router			/listings/{id}/trending [post]
func (h *Handler) toggleTrending(ginCtx *gin.Context) {
	var body ToggleTrendingBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}
	err := h.trendings.SetTrendingManually(ginCtx.Request.Context(), ginCtx.Param("id"), *body.IsTrending)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, listingstore.ErrNotFound) {
			status = http.StatusNotFound
		}
		ginCtx.JSON(status, &ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.Status(http.StatusOK)
}

// @Summary		Run a trending sweep now
// @Description	On-demand bulk reconciliation over every eligible listing.
// @Tags			Admin
// @Success		200	{object}	trending.SweepResult
// @Failure		409	{object}	ErrorResponse
// @Router			/admin/trending/sweep [post]
func (h *Handler) sweep(ginCtx *gin.Context) {
	res, err := h.trendings.SweepAll(ginCtx.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, trending.ErrSweepInProgress) {
			status = http.StatusConflict
		}
		ginCtx.JSON(status, &ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusOK, res)
}

// @Summary		Health and sweep stats
// @Tags			Admin
// @Success		200	{object}	map[string]any
// @Router			/healthz [get]
func (h *Handler) health(ginCtx *gin.Context) {
	ginCtx.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"schedule": h.sched.Schedule(),
		"stats":    h.sched.Snapshot(),
		"uptime":   h.sched.Uptime().String(),
	})
}

func toSettings(b AuctionSettingsBody) window.AuctionSettings {
	return window.AuctionSettings{
		StartingPrice:     b.StartingPrice,
		ReservePrice:      b.ReservePrice,
		BidIncrementPrice: b.BiddingIncrementPrice,
		Deadline: window.DeadlineSpec{
			EndDate:      b.EndDate,
			EndTime:      b.EndTime,
			TimeZone:     b.TimeZone,
			DurationDays: b.Duration,
		},
	}
}
