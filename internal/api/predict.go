package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/themobileprof/mamacare-be/internal/risk"
)

// PredictHandler serves the rule-based risk predictions
type PredictHandler struct{}

// NewPredictHandler creates a new prediction handler
func NewPredictHandler() *PredictHandler {
	return &PredictHandler{}
}

// Maternal scores maternal vitals
// POST /api/predict/maternal
func (h *PredictHandler) Maternal(c *gin.Context) {
	var in risk.MaternalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Missing required fields")
		return
	}

	res, err := risk.Maternal(in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondPrediction(c, res)
}

// PCOS scores PCOS symptoms and lab values
// POST /api/predict/pcos
func (h *PredictHandler) PCOS(c *gin.Context) {
	var in risk.PCOSInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid features")
		return
	}
	respondPrediction(c, risk.PCOS(in))
}

func respondPrediction(c *gin.Context, res risk.Result) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"risk":       res.Risk,
		"confidence": res.Confidence,
		"score":      res.Score,
	})
}
