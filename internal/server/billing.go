package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	billingdomain "github.com/openmotel/motel/internal/billing/domain"
	"github.com/openmotel/motel/pkg/types"
)

type generateBillRequest struct {
	ContractID       string  `json:"contract_id"`
	Period           string  `json:"period"`
	ChargeDate       *string `json:"charge_date,omitempty"`
	ElectricityAfter *string `json:"electricity_after,omitempty"`
	WaterAfter       *string `json:"water_after,omitempty"`
}

func (s *Server) GenerateBill(c *gin.Context) {
	var req generateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	contractID, err := snowflake.ParseString(strings.TrimSpace(req.ContractID))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	genReq := billingdomain.GenerateRequest{
		ContractID: contractID,
		Period:     strings.TrimSpace(req.Period),
	}
	if req.ChargeDate != nil {
		chargeDate, err := parseTime(*req.ChargeDate)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		genReq.ChargeDate = &chargeDate
	}
	if req.ElectricityAfter != nil {
		value, err := types.ParseBigInt(*req.ElectricityAfter)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		genReq.ElectricityAfter = &value
	}
	if req.WaterAfter != nil {
		value, err := types.ParseBigInt(*req.WaterAfter)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		genReq.WaterAfter = &value
	}

	bill, err := s.billingSvc.Generate(c.Request.Context(), genReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": bill})
}

func (s *Server) GetBill(c *gin.Context) {
	billID, err := parseSnowflakeParam(c, "id")
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	bill, err := s.billingSvc.GetByID(c.Request.Context(), billID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	payments, err := s.paymentSvc.ListForBill(c.Request.Context(), billID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"bill":     bill,
		"payments": payments,
	}})
}

func (s *Server) ListContractBills(c *gin.Context) {
	contractID, err := parseSnowflakeParam(c, "id")
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	bills, err := s.billingSvc.ListForContract(c.Request.Context(), contractID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": bills})
}

func (s *Server) PreviewCharge(c *gin.Context) {
	roomID, err := parseSnowflakeParam(c, "room_id")
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	statement, err := s.billingSvc.Preview(c.Request.Context(), billingdomain.PreviewRequest{
		RoomID: roomID,
		Period: strings.TrimSpace(c.Query("period")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": statement})
}
