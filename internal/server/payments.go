package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/openmotel/motel/internal/payment/domain"
	"github.com/openmotel/motel/pkg/types"
)

type recordPaymentRequest struct {
	// Amount travels as a decimal string so exact integer precision
	// survives the JSON boundary.
	Amount   string  `json:"amount"`
	PaidDate *string `json:"paid_date,omitempty"`
}

func (s *Server) RecordPayment(c *gin.Context) {
	billID, err := parseSnowflakeParam(c, "id")
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	amount, err := types.ParseBigInt(req.Amount)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	recordReq := paymentdomain.RecordRequest{
		BillID: billID,
		Amount: amount,
	}
	if req.PaidDate != nil {
		paidAt, err := parseTime(*req.PaidDate)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		recordReq.PaidAt = &paidAt
	}

	bill, err := s.paymentSvc.Record(c.Request.Context(), recordReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": bill})
}
