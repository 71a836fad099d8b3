package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/estate-inquiries-api/middleware"
	"github.com/kendall-kelly/estate-inquiries-api/models"
	"github.com/kendall-kelly/estate-inquiries-api/services"
)

var inquiryService *services.InquiryService

// SetInquiryService sets the service the inquiry handlers run on
func SetInquiryService(s *services.InquiryService) {
	inquiryService = s
}

// GetInquiryService returns the service the inquiry handlers run on
func GetInquiryService() *services.InquiryService {
	return inquiryService
}

// CreateInquiryRequest represents the request body for opening an inquiry
type CreateInquiryRequest struct {
	PropertyID uint   `json:"property_id" binding:"required"`
	Message    string `json:"message" binding:"required"`
}

// SendMessageRequest represents the request body for a follow-up or reply
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// CreateInquiryResponse carries the new inquiry and its first message
type CreateInquiryResponse struct {
	Inquiry *services.InquiryView `json:"inquiry"`
	Message *services.MessageView `json:"message"`
}

// RegisterInquiryRoutes mounts the buyer, agent and admin groups on api.
// api must already resolve the caller.
func RegisterInquiryRoutes(api *gin.RouterGroup) {
	buyer := api.Group("/inquiries", middleware.RequireRole(models.RoleUser))
	{
		buyer.POST("", CreateInquiry)
		buyer.GET("/my", ListInquiries)
		buyer.GET("/:id", GetInquiry)
		buyer.GET("/:id/messages", ListMessages)
		buyer.POST("/:id/messages", SendMessage)
	}

	agent := api.Group("/agent/inquiries", middleware.RequireRole(models.RoleAgent))
	registerStaffRoutes(agent)

	admin := api.Group("/admin/inquiries", middleware.RequireRole(models.RoleAdmin))
	registerStaffRoutes(admin)
	admin.POST("/:id/reassign/:agentId", ReassignInquiry)
}

func registerStaffRoutes(g *gin.RouterGroup) {
	g.GET("", ListInquiries)
	g.GET("/:id", GetInquiry)
	g.GET("/:id/messages", ListMessages)
	g.POST("/:id/reply", SendMessage)
	g.POST("/:id/close", CloseInquiry)
}

// CreateInquiry handles POST /api/v1/inquiries - opens a thread on a property
func CreateInquiry(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req CreateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	inquiry, message, err := inquiryService.CreateInquiry(c.Request.Context(), caller, req.PropertyID, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusCreated, CreateInquiryResponse{Inquiry: inquiry, Message: message})
}

// ListInquiries handles the inquiry list of every role. The caller's role
// selects which inquiries are visible.
func ListInquiries(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	status, ok := statusFilter(c)
	if !ok {
		return
	}

	views, err := inquiryService.ListInquiries(c.Request.Context(), caller, status)
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, views)
}

// GetInquiry handles GET .../inquiries/:id
func GetInquiry(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	view, err := inquiryService.GetInquiry(c.Request.Context(), caller, id)
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, view)
}

// ListMessages handles GET .../inquiries/:id/messages
func ListMessages(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	messages, err := inquiryService.ListMessages(c.Request.Context(), caller, id)
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, messages)
}

// SendMessage handles buyer follow-ups and staff replies
func SendMessage(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	message, err := inquiryService.SendMessage(c.Request.Context(), caller, id, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusCreated, message)
}

// CloseInquiry handles POST .../inquiries/:id/close
func CloseInquiry(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	view, err := inquiryService.Close(c.Request.Context(), caller, id)
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, view)
}

// ReassignInquiry handles POST /api/v1/admin/inquiries/:id/reassign/:agentId
func ReassignInquiry(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	agentID, ok := uintParam(c, "agentId")
	if !ok {
		return
	}

	view, err := inquiryService.Reassign(c.Request.Context(), caller, id, agentID)
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, view)
}

func requireCaller(c *gin.Context) (models.Caller, bool) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return models.Caller{}, false
	}
	return caller, true
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+name)
		return 0, false
	}
	return uint(n), true
}

// statusFilter parses the optional ?status= query parameter
func statusFilter(c *gin.Context) (*models.InquiryStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return nil, true
	}
	status, ok := models.ParseInquiryStatus(raw)
	if !ok {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "status must be one of PENDING, REPLIED, CLOSED")
		return nil, false
	}
	return &status, true
}
