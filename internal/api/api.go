package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"options-collector/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const seriesLimit = 1000

type Handler struct {
	db *gorm.DB
}

// SetupRoutes registers the read-only analytics endpoints.
func SetupRoutes(r *gin.RouterGroup, db *gorm.DB) *Handler {
	h := &Handler{db: db}

	r.GET("/expirations", h.ListExpirations)
	r.GET("/options", h.GetOptionChain)
	r.GET("/greeks", h.GetGreeks)
	r.GET("/iv-evolution", h.GetIVEvolution)
	r.GET("/smile", h.GetSmile)

	return h
}

// ListExpirations returns the distinct expiration dates stored for a symbol.
func (h *Handler) ListExpirations(c *gin.Context) {
	symbol := c.DefaultQuery("symbol", "SPY")

	var dates []time.Time
	err := h.db.Model(&models.OptionRecord{}).
		Where("symbol = ?", symbol).
		Distinct("expiration_date").
		Order("expiration_date").
		Pluck("expiration_date", &dates).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("2006-01-02"))
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "expirations": out})
}

// GetOptionChain returns the most recently collected chain for a symbol and
// expiration: every contract row from the latest observation batch.
func (h *Handler) GetOptionChain(c *gin.Context) {
	symbol := c.DefaultQuery("symbol", "SPY")
	expiration := c.Query("expiration")

	latest, ok := h.latestBatch(c, symbol, expiration)
	if !ok {
		return
	}
	if latest == nil {
		c.JSON(http.StatusOK, gin.H{"symbol": symbol, "options": []models.OptionRecord{}})
		return
	}

	q := h.db.Where("symbol = ? AND created_at = ?", symbol, latest)
	if expiration != "" {
		q = q.Where("expiration_date = ?", expiration)
	}

	var records []models.OptionRecord
	if err := q.Order("expiration_date, strike_price, option_type").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "as_of": latest, "options": records})
}

// GetGreeks returns the Greeks rows from the latest observation batch.
func (h *Handler) GetGreeks(c *gin.Context) {
	symbol := c.DefaultQuery("symbol", "SPY")
	expiration := c.Query("expiration")

	filter := func() *gorm.DB {
		q := h.db.Model(&models.GreeksRecord{}).Where("symbol = ?", symbol)
		if expiration != "" {
			q = q.Where("expiration_date = ?", expiration)
		}
		return q
	}

	var latest sql.NullTime
	if err := filter().Select("MAX(created_at)").Scan(&latest).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !latest.Valid {
		c.JSON(http.StatusOK, gin.H{"symbol": symbol, "greeks": []models.GreeksRecord{}})
		return
	}

	var records []models.GreeksRecord
	if err := filter().Where("created_at = ?", latest.Time).
		Order("expiration_date, strike_price, option_type").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "as_of": latest.Time, "greeks": records})
}

// GetIVEvolution returns the implied-volatility time series, optionally
// narrowed to one contract.
func (h *Handler) GetIVEvolution(c *gin.Context) {
	symbol := c.DefaultQuery("symbol", "SPY")

	q := h.db.Where("symbol = ?", symbol)
	if expiration := c.Query("expiration"); expiration != "" {
		q = q.Where("expiration_date = ?", expiration)
	}
	if optionType := c.Query("option_type"); optionType != "" {
		q = q.Where("option_type = ?", optionType)
	}
	if strikeStr := c.Query("strike"); strikeStr != "" {
		strike, err := strconv.ParseFloat(strikeStr, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid strike"})
			return
		}
		q = q.Where("strike_price = ?", strike)
	}

	var points []models.IVPoint
	if err := q.Order("recorded_at").Limit(seriesLimit).Find(&points).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "points": points})
}

// GetSmile returns implied volatility by strike from the latest observation
// batch for one expiration.
func (h *Handler) GetSmile(c *gin.Context) {
	symbol := c.DefaultQuery("symbol", "SPY")
	expiration := c.Query("expiration")
	if expiration == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expiration is required"})
		return
	}

	latest, ok := h.latestBatch(c, symbol, expiration)
	if !ok {
		return
	}
	if latest == nil {
		c.JSON(http.StatusOK, gin.H{"symbol": symbol, "expiration": expiration, "smile": []gin.H{}})
		return
	}

	var records []models.OptionRecord
	err := h.db.Where("symbol = ? AND expiration_date = ? AND created_at = ? AND implied_volatility IS NOT NULL",
		symbol, expiration, latest).
		Order("strike_price").Find(&records).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	smile := make([]gin.H, 0, len(records))
	for _, rec := range records {
		smile = append(smile, gin.H{
			"strike_price":       rec.StrikePrice,
			"option_type":        rec.OptionType,
			"implied_volatility": rec.ImpliedVolatility,
		})
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "expiration": expiration, "as_of": latest, "smile": smile})
}

// latestBatch finds the created_at of the newest observation for the filter.
// Returns ok=false after writing an error response.
func (h *Handler) latestBatch(c *gin.Context, symbol, expiration string) (*time.Time, bool) {
	q := h.db.Model(&models.OptionRecord{}).Where("symbol = ?", symbol)
	if expiration != "" {
		q = q.Where("expiration_date = ?", expiration)
	}

	var latest sql.NullTime
	if err := q.Select("MAX(created_at)").Scan(&latest).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	if !latest.Valid {
		return nil, true
	}
	return &latest.Time, true
}
