package listinghandler

type AuctionSettingsBody struct {
	StartingPrice         float64 `json:"startingPrice"         binding:"required,gt=0" example:"100"`
	ReservePrice          float64 `json:"reservePrice"          binding:"required,gt=0" example:"250"`
	BiddingIncrementPrice float64 `json:"biddingIncrementPrice" binding:"required,gt=0" example:"10"`
	EndDate               string  `json:"endDate"               binding:"omitempty" example:"2025-07-12"`
	EndTime               string  `json:"endTime"               binding:"omitempty" example:"18:44"`
	TimeZone              string  `json:"timeZone"              binding:"required"  example:"Asia/Kolkata"`
	Duration              int     `json:"duration"              binding:"omitempty,gte=0" example:"3"`
} // @name AuctionSettings

type CreateListingBody struct {
	Title           string               `json:"title"    binding:"required" example:"Vintage camera"`
	Price           float64              `json:"price"    binding:"omitempty,gte=0" example:"150"`
	SaleType        string               `json:"saleType" binding:"required,oneof=FIXED AUCTION" example:"AUCTION"`
	AuctionSettings *AuctionSettingsBody `json:"auctionSettings" binding:"omitempty"`
} // @name CreateListingRequest

type ToggleTrendingBody struct {
	IsTrending *bool `json:"isTrending" binding:"required" example:"true"`
} // @name ToggleTrendingRequest

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse

type ListListingsQuery struct {
	SaleType string `form:"saleType" binding:"omitempty,oneof=FIXED AUCTION"`
	Trending bool   `form:"trending"`
	OpenOnly bool   `form:"openOnly"`
	Limit    int    `form:"limit,default=10"  binding:"gte=0,lte=100"`
	Offset   int    `form:"offset,default=0"  binding:"gte=0"`
} // @name ListListingsQuery
