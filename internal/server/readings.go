package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	readingdomain "github.com/openmotel/motel/internal/reading/domain"
	"github.com/openmotel/motel/pkg/types"
)

type addReadingRequest struct {
	Value     string `json:"value"`
	ReadingAt string `json:"reading_at"`
}

func (s *Server) AddReading(c *gin.Context) {
	roomID, err := parseSnowflakeParam(c, "room_id")
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	utility, err := readingdomain.ParseUtility(c.Param("utility"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req addReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	value, err := types.ParseBigInt(req.Value)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	readingAt, err := parseTime(req.ReadingAt)
	if err != nil {
		AbortWithError(c, readingdomain.ErrInvalidTime)
		return
	}

	reading, err := s.readingSvc.AddReading(c.Request.Context(), readingdomain.AddReadingRequest{
		RoomID:    roomID,
		Utility:   utility,
		Value:     value,
		ReadingAt: readingAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.ReadingIngested(string(utility))
	c.JSON(http.StatusOK, gin.H{"data": reading})
}

func (s *Server) ListReadings(c *gin.Context) {
	roomID, err := parseSnowflakeParam(c, "room_id")
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	utility, err := readingdomain.ParseUtility(c.Param("utility"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	from, err := parseOptionalTime(c.Query("from"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	to, err := parseOptionalTime(c.Query("to"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	readings, err := s.readingSvc.ListReadings(c.Request.Context(), readingdomain.ListReadingsRequest{
		RoomID:  roomID,
		Utility: utility,
		From:    from,
		To:      to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": readings})
}

func parseSnowflakeParam(c *gin.Context, name string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(c.Param(name)))
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", raw)
}

func parseOptionalTime(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	ts, err := parseTime(raw)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}
