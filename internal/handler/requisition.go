package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Samsoniteyd/newtailor/internal/apperr"
	"github.com/Samsoniteyd/newtailor/internal/middleware"
	"github.com/Samsoniteyd/newtailor/internal/models"
	"github.com/Samsoniteyd/newtailor/internal/util"
)

// RequisitionHandler serves tailoring orders.
type RequisitionHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewRequisitionHandler(db *gorm.DB, pageSize int) *RequisitionHandler {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return &RequisitionHandler{DB: db, PageSize: pageSize}
}

// ---------- request structures ----------

type createRequisitionReq struct {
	Name         string              `json:"name" binding:"required,min=2,max=100"`
	Description  string              `json:"description" binding:"max=500"`
	Status       string              `json:"status"`
	ContactEmail string              `json:"contact_email"`
	ContactPhone string              `json:"contact_phone"`
	Measurements models.Measurements `json:"measurements"`
	DueDate      string              `json:"due_date"`
}

type updateRequisitionReq struct {
	Name         *string              `json:"name"`
	Description  *string              `json:"description"`
	Status       *string              `json:"status"`
	ContactEmail *string              `json:"contact_email"`
	ContactPhone *string              `json:"contact_phone"`
	Measurements *models.Measurements `json:"measurements"`
	DueDate      *string              `json:"due_date"`
}

type addNoteReq struct {
	Text string `json:"text" binding:"required,max=500"`
}

// parseDueDate accepts the formats the form clients actually send.
func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New("invalid due date, expected YYYY-MM-DD")
}

// findOwned loads a requisition by id scoped to its owner. Foreign ids look
// exactly like absent ones.
func (h *RequisitionHandler) findOwned(userID uint, idStr string) (*models.Requisition, error) {
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return nil, apperr.NotFound("requisition")
	}
	var req models.Requisition
	err = h.DB.Preload("Notes", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("requisition")
		}
		return nil, apperr.Server("load requisition", err)
	}
	return &req, nil
}

// ---------- create ----------

func (h *RequisitionHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Fail(c, apperr.Unauthorized(""))
		return
	}

	var req createRequisitionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("invalid request body"))
		return
	}

	status := req.Status
	if status == "" {
		status = models.StatusPending
	}
	if !models.ValidStatus(status) {
		util.Fail(c, apperr.Validation("unknown status"))
		return
	}

	if req.ContactEmail != "" {
		if err := util.ValidateEmail(req.ContactEmail); err != nil {
			util.Fail(c, apperr.ValidationFields(map[string]string{"contact_email": err.Error()}))
			return
		}
	}
	if req.ContactPhone != "" {
		if err := util.ValidatePhone(req.ContactPhone); err != nil {
			util.Fail(c, apperr.ValidationFields(map[string]string{"contact_phone": err.Error()}))
			return
		}
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		util.Fail(c, apperr.ValidationFields(map[string]string{"due_date": err.Error()}))
		return
	}

	requisition := models.Requisition{
		UserID:       user.ID,
		Reference:    uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Status:       status,
		ContactEmail: strings.ToLower(strings.TrimSpace(req.ContactEmail)),
		ContactPhone: strings.TrimSpace(req.ContactPhone),
		Measurements: req.Measurements,
		DueDate:      dueDate,
	}

	if err := h.DB.Create(&requisition).Error; err != nil {
		util.Fail(c, apperr.Server("create requisition", err))
		return
	}

	util.Success(c, http.StatusCreated, util.Response{"requisition": requisition})
}

// ---------- list ----------

// List returns the caller's requisitions with status filter, name search,
// due-date range, sorting and pagination.
func (h *RequisitionHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Fail(c, apperr.Unauthorized(""))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(h.PageSize)))
	if size <= 0 || size > 100 {
		size = h.PageSize
	}
	offset := (page - 1) * size

	base := h.DB.Model(&models.Requisition{}).Where("user_id = ?", user.ID)

	if status := c.Query("status"); status != "" {
		if !models.ValidStatus(status) {
			util.Fail(c, apperr.Validation("unknown status"))
			return
		}
		base = base.Where("status = ?", status)
	}

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		base = base.Where("name LIKE ?", "%"+q+"%")
	}

	if from := c.Query("due_from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			util.Fail(c, apperr.Validation("due_from must be YYYY-MM-DD"))
			return
		}
		base = base.Where("due_date >= ?", t)
	}
	if to := c.Query("due_to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			util.Fail(c, apperr.Validation("due_to must be YYYY-MM-DD"))
			return
		}
		// inclusive end of day
		base = base.Where("due_date < ?", t.Add(24*time.Hour))
	}

	orderBy := "created_at DESC, id DESC"
	switch c.DefaultQuery("sort", "created_desc") {
	case "created_asc":
		orderBy = "created_at ASC, id ASC"
	case "due_desc":
		orderBy = "due_date DESC, id DESC"
	case "due_asc":
		orderBy = "due_date ASC, id ASC"
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		util.Fail(c, apperr.Server("count requisitions", err))
		return
	}

	var requisitions []models.Requisition
	if err := base.Order(orderBy).Limit(size).Offset(offset).
		Preload("Notes").Find(&requisitions).Error; err != nil {
		util.Fail(c, apperr.Server("list requisitions", err))
		return
	}

	util.Success(c, http.StatusOK, util.Response{
		"requisitions": requisitions,
		"total":        total,
		"page":         page,
		"page_size":    size,
	})
}

// ---------- get ----------

func (h *RequisitionHandler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Fail(c, apperr.Unauthorized(""))
		return
	}

	requisition, err := h.findOwned(user.ID, c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, http.StatusOK, util.Response{"requisition": requisition})
}

// ---------- update ----------

// Update applies a partial update; absent fields are left untouched.
func (h *RequisitionHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Fail(c, apperr.Unauthorized(""))
		return
	}

	requisition, err := h.findOwned(user.ID, c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}

	var req updateRequisitionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("invalid request body"))
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < 2 || len(name) > 100 {
			util.Fail(c, apperr.ValidationFields(map[string]string{"name": "name must be 2-100 characters"}))
			return
		}
		requisition.Name = name
	}
	if req.Description != nil {
		if len(*req.Description) > 500 {
			util.Fail(c, apperr.ValidationFields(map[string]string{"description": "description must be at most 500 characters"}))
			return
		}
		requisition.Description = *req.Description
	}
	if req.Status != nil {
		if !models.ValidStatus(*req.Status) {
			util.Fail(c, apperr.Validation("unknown status"))
			return
		}
		requisition.Status = *req.Status
	}
	if req.ContactEmail != nil {
		email := strings.ToLower(strings.TrimSpace(*req.ContactEmail))
		if email != "" {
			if err := util.ValidateEmail(email); err != nil {
				util.Fail(c, apperr.ValidationFields(map[string]string{"contact_email": err.Error()}))
				return
			}
		}
		requisition.ContactEmail = email
	}
	if req.ContactPhone != nil {
		phone := strings.TrimSpace(*req.ContactPhone)
		if phone != "" {
			if err := util.ValidatePhone(phone); err != nil {
				util.Fail(c, apperr.ValidationFields(map[string]string{"contact_phone": err.Error()}))
				return
			}
		}
		requisition.ContactPhone = phone
	}
	if req.Measurements != nil {
		requisition.Measurements = *req.Measurements
	}
	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			util.Fail(c, apperr.ValidationFields(map[string]string{"due_date": err.Error()}))
			return
		}
		requisition.DueDate = dueDate
	}

	// notes are preloaded on the struct; keep the save to the order row itself
	if err := h.DB.Omit(clause.Associations).Save(requisition).Error; err != nil {
		util.Fail(c, apperr.Server("save requisition", err))
		return
	}

	util.Success(c, http.StatusOK, util.Response{"requisition": requisition})
}

// ---------- delete ----------

func (h *RequisitionHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Fail(c, apperr.Unauthorized(""))
		return
	}

	requisition, err := h.findOwned(user.ID, c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}

	if err := h.DB.Delete(requisition).Error; err != nil {
		util.Fail(c, apperr.Server("delete requisition", err))
		return
	}

	util.Success(c, http.StatusOK, util.Response{"message": "requisition deleted"})
}

// ---------- notes ----------

// AddNote appends a timestamped remark to an order.
func (h *RequisitionHandler) AddNote(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Fail(c, apperr.Unauthorized(""))
		return
	}

	requisition, err := h.findOwned(user.ID, c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}

	var req addNoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("note text is required"))
		return
	}

	note := models.RequisitionNote{
		RequisitionID: requisition.ID,
		Text:          strings.TrimSpace(req.Text),
	}
	if err := h.DB.Create(&note).Error; err != nil {
		util.Fail(c, apperr.Server("add note", err))
		return
	}

	requisition.Notes = append(requisition.Notes, note)
	util.Success(c, http.StatusCreated, util.Response{"requisition": requisition})
}
