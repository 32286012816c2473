package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gaoz-1224/AgriChatBot/internal/model"
	"github.com/Gaoz-1224/AgriChatBot/internal/service"
)

// CropHandler 作物档案处理器
type CropHandler struct {
	cropSvc *service.CropService
}

// NewCropHandler 创建作物档案处理器
func NewCropHandler() *CropHandler {
	return &CropHandler{
		cropSvc: service.NewCropService(),
	}
}

// CropRequest 创建/更新作物请求
type CropRequest struct {
	Name         string  `json:"name" binding:"required"`
	CropType     string  `json:"crop_type" binding:"required"`
	Variety      string  `json:"variety"`
	Area         float64 `json:"area"`
	PlantingDate string  `json:"planting_date"` // 2006-01-02
	HarvestDate  string  `json:"harvest_date"`
	Status       string  `json:"status"`
	Notes        string  `json:"notes"`
}

// Create 创建作物档案
func (h *CropHandler) Create(c *gin.Context) {
	var req CropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	crop := &model.Crop{
		Username: currentUsername(c),
		Name:     req.Name,
		CropType: req.CropType,
		Variety:  req.Variety,
		Area:     req.Area,
		Status:   req.Status,
		Notes:    req.Notes,
	}
	crop.PlantingDate = parseDate(req.PlantingDate)
	crop.HarvestDate = parseDate(req.HarvestDate)

	if err := h.cropSvc.CreateCrop(crop); err != nil {
		fail(c, http.StatusInternalServerError, "创建作物档案失败: "+err.Error())
		return
	}

	success(c, crop)
}

// Get 获取作物档案详情，包含生长天数和总成本
func (h *CropHandler) Get(c *gin.Context) {
	id := parseUint(c.Param("id"))

	crop, err := h.cropSvc.GetCrop(id)
	if err != nil {
		fail(c, http.StatusInternalServerError, "获取作物档案失败: "+err.Error())
		return
	}
	if crop == nil {
		fail(c, http.StatusNotFound, "作物档案不存在")
		return
	}

	totalCost, err := h.cropSvc.TotalCost(id)
	if err != nil {
		fail(c, http.StatusInternalServerError, "统计成本失败: "+err.Error())
		return
	}

	success(c, gin.H{
		"crop":        crop,
		"growth_days": crop.GrowthDays(),
		"total_cost":  totalCost,
	})
}

// List 列出作物档案
func (h *CropHandler) List(c *gin.Context) {
	crops, err := h.cropSvc.ListCrops(currentUsername(c), c.Query("status"))
	if err != nil {
		fail(c, http.StatusInternalServerError, "获取作物列表失败: "+err.Error())
		return
	}

	success(c, gin.H{
		"total": len(crops),
		"crops": crops,
	})
}

// Update 更新作物档案
func (h *CropHandler) Update(c *gin.Context) {
	id := parseUint(c.Param("id"))

	var req CropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	updates := map[string]interface{}{
		"name":      req.Name,
		"crop_type": req.CropType,
		"variety":   req.Variety,
		"area":      req.Area,
		"notes":     req.Notes,
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if d := parseDate(req.PlantingDate); d != nil {
		updates["planting_date"] = d
	}
	if d := parseDate(req.HarvestDate); d != nil {
		updates["harvest_date"] = d
	}

	if err := h.cropSvc.UpdateCrop(id, updates); err != nil {
		fail(c, http.StatusInternalServerError, "更新作物档案失败: "+err.Error())
		return
	}
	success(c, nil)
}

// Delete 删除作物档案
func (h *CropHandler) Delete(c *gin.Context) {
	if err := h.cropSvc.DeleteCrop(parseUint(c.Param("id"))); err != nil {
		fail(c, http.StatusInternalServerError, "删除作物档案失败: "+err.Error())
		return
	}
	success(c, nil)
}

// RecordRequest 田间记录请求
type RecordRequest struct {
	Date         string   `json:"date" binding:"required"` // 2006-01-02
	Temperature  *float64 `json:"temperature"`
	Humidity     *float64 `json:"humidity"`
	Weather      string   `json:"weather"`
	GrowthStatus string   `json:"growth_status"`
	Notes        string   `json:"notes"`
}

// AddRecord 添加田间记录
func (h *CropHandler) AddRecord(c *gin.Context) {
	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	record := &model.FieldRecord{
		CropID:       parseUint(c.Param("id")),
		Date:         req.Date,
		Temperature:  req.Temperature,
		Humidity:     req.Humidity,
		Weather:      req.Weather,
		GrowthStatus: req.GrowthStatus,
		Notes:        req.Notes,
	}

	if err := h.cropSvc.CreateFieldRecord(record); err != nil {
		fail(c, http.StatusInternalServerError, "添加田间记录失败: "+err.Error())
		return
	}
	success(c, record)
}

// ListRecords 列出田间记录
func (h *CropHandler) ListRecords(c *gin.Context) {
	limit := int(parseUint(c.DefaultQuery("limit", "30")))

	records, err := h.cropSvc.ListFieldRecords(parseUint(c.Param("id")), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, "获取田间记录失败: "+err.Error())
		return
	}

	success(c, gin.H{
		"total":   len(records),
		"records": records,
	})
}

// DeleteRecord 删除田间记录
func (h *CropHandler) DeleteRecord(c *gin.Context) {
	if err := h.cropSvc.DeleteFieldRecord(parseUint(c.Param("id"))); err != nil {
		fail(c, http.StatusInternalServerError, "删除田间记录失败: "+err.Error())
		return
	}
	success(c, nil)
}

// EventRequest 农事事件请求
type EventRequest struct {
	Date        string  `json:"date" binding:"required"` // 2006-01-02
	EventType   string  `json:"event_type" binding:"required"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
}

// AddEvent 添加农事事件
func (h *CropHandler) AddEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	event := &model.CropEvent{
		CropID:      parseUint(c.Param("id")),
		Date:        req.Date,
		EventType:   req.EventType,
		Description: req.Description,
		Cost:        req.Cost,
	}

	if err := h.cropSvc.CreateCropEvent(event); err != nil {
		fail(c, http.StatusInternalServerError, "添加农事事件失败: "+err.Error())
		return
	}
	success(c, event)
}

// ListEvents 列出农事事件
func (h *CropHandler) ListEvents(c *gin.Context) {
	events, err := h.cropSvc.ListCropEvents(parseUint(c.Param("id")))
	if err != nil {
		fail(c, http.StatusInternalServerError, "获取农事事件失败: "+err.Error())
		return
	}

	success(c, gin.H{
		"total":  len(events),
		"events": events,
	})
}

// parseDate 解析 2006-01-02 格式日期，空串或非法格式返回 nil
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
