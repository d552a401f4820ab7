package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "rafiqe/internal/errors"
	"rafiqe/internal/logger"
	"rafiqe/internal/metrics"
)

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// parsePathIndex parses a non-negative integer path parameter.
// Returns ErrInvalidInput if the parameter is not a valid index.
func parsePathIndex(c *gin.Context, param string) (int, error) {
	i, err := strconv.Atoi(c.Param(param))
	if err != nil || i < 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return i, nil
}

// parseDecimalQuery parses an optional decimal query parameter.
func parseDecimalQuery(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, key+" must be a number")
	}
	return &d, nil
}

// parseFilter reads the transaction filter from the query string.
func parseFilter(c *gin.Context) (metrics.Filter, error) {
	filter := metrics.Filter{
		Search:   c.Query("search"),
		BucketID: c.Query("bucket"),
		Sort:     metrics.Sort(c.Query("sort")),
	}
	if !filter.Sort.Valid() {
		return metrics.Filter{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "sort must be date or amount")
	}

	var err error
	if filter.MinAmount, err = parseDecimalQuery(c, "min_amount"); err != nil {
		return metrics.Filter{}, err
	}
	if filter.MaxAmount, err = parseDecimalQuery(c, "max_amount"); err != nil {
		return metrics.Filter{}, err
	}
	return filter, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, ErrorResponse{Error: ErrorDetail{Code: appErr.Code, Message: appErr.Message}})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, ErrorResponse{Error: ErrorDetail{
		Code:    apperrors.ErrInternalServer.Code,
		Message: apperrors.ErrInternalServer.Message,
	}})
}

// invalidInput wraps a binding error.
func invalidInput(err error) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}
