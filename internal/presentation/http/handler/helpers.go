package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/pkg/apperror"
	"github.com/mahavirtraders/flowtrack/pkg/pagination"
)

// TerminalHeader lets one user run several tills, each with its own cart.
const TerminalHeader = "X-Terminal-ID"

const dateLayout = "2006-01-02"

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUserRoles extracts the user roles from the Gin context
func GetUserRoles(c *gin.Context) []string {
	roles, exists := c.Get("user_roles")
	if !exists {
		return nil
	}
	return roles.([]string)
}

// SessionID names the cart a request works on: the user, plus the terminal
// when the client sends one.
func SessionID(c *gin.Context, userID uuid.UUID) string {
	if terminal := c.GetHeader(TerminalHeader); terminal != "" {
		return userID.String() + ":" + terminal
	}
	return userID.String()
}

// parseID reads a UUID path parameter
func parseID(c *gin.Context, param, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, apperror.NewBadRequestError("Invalid " + resource + " ID")
	}
	return id, nil
}

// pageParams builds validated pagination from query values
func pageParams(page, perPage int) *pagination.PaginationParams {
	params := &pagination.PaginationParams{Page: page, PerPage: perPage}
	params.Validate()
	return params
}

// parseDay reads a YYYY-MM-DD value as midnight in loc
func parseDay(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, apperror.NewBadRequestError(fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", value))
	}
	return t, nil
}

// parseDayRange turns inclusive from/to calendar days into a half-open range
// ending at midnight after to. Either end may be blank.
func parseDayRange(from, to string, loc *time.Location) (repository.DateRange, error) {
	var r repository.DateRange
	if from != "" {
		start, err := parseDay(from, loc)
		if err != nil {
			return r, err
		}
		r.From = &start
	}
	if to != "" {
		end, err := parseDay(to, loc)
		if err != nil {
			return r, err
		}
		end = end.AddDate(0, 0, 1)
		r.To = &end
	}
	if r.From != nil && r.To != nil && !r.To.After(*r.From) {
		return r, apperror.NewBadRequestError("from must not be after to")
	}
	return r, nil
}
