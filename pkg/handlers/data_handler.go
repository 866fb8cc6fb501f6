package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"telar-chat-api/pkg/models"
	"telar-chat-api/pkg/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DataHandler は在庫・売上・指標・グラフのデータ API です。
type DataHandler struct {
	data   *services.DataService
	charts *services.ChartService
	logger *zap.Logger
}

// NewDataHandler は新しいDataHandlerを生成します。
func NewDataHandler(data *services.DataService, logger *zap.Logger) *DataHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataHandler{data: data, charts: services.NewChartService(data), logger: logger}
}

// GetInventory はクエリで絞り込んだ在庫を返します。すべての条件は完全一致です。
func (h *DataHandler) GetInventory(c *gin.Context) {
	filter, err := inventoryFilterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	items := h.data.ListInventory(filter)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items, "count": len(items)})
}

func inventoryFilterFromQuery(c *gin.Context) (models.InventoryFilter, error) {
	var f models.InventoryFilter
	for key, dst := range map[string]**string{
		"id":       &f.ID,
		"name":     &f.Name,
		"category": &f.Category,
		"size":     &f.Size,
		"gender":   &f.Gender,
	} {
		if v, ok := c.GetQuery(key); ok {
			v := v
			*dst = &v
		}
	}
	if v, ok := c.GetQuery("stock"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, errors.New("stock must be an integer")
		}
		f.Stock = &n
	}
	if v, ok := c.GetQuery("price"); ok {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, errors.New("price must be a number")
		}
		f.Price = &p
	}
	return f, nil
}

// GetSales は期間内の売上を返します。start / end は省略できます。
func (h *DataHandler) GetSales(c *gin.Context) {
	sales, err := h.data.ListSales(c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": sales, "count": len(sales)})
}

// GetBusinessMetrics は期間内のビジネス指標を返します。
func (h *DataHandler) GetBusinessMetrics(c *gin.Context) {
	metrics, err := h.data.ComputeMetrics(c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": metrics})
}

// GetReport はレポートの生データを返します。未知の種別は 404 です。
func (h *DataHandler) GetReport(c *gin.Context) {
	report, err := h.data.GenerateReport(c.Param("type"))
	switch {
	case errors.Is(err, services.ErrUnsupportedReportType):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		return
	case err != nil:
		h.logger.Error("❌ レポートの生成に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to generate report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "type": report.Type, "data": report.Payload()})
}

// PostChart は自由文からグラフ指定と系列データを生成します。
func (h *DataHandler) PostChart(c *gin.Context) {
	var req models.ChartTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "text is required"})
		return
	}

	chartReq := services.BuildChartRequest(req.Text)
	data, err := h.charts.GenerateChartData(chartReq)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"request": chartReq,
		"data":    data,
		"options": services.ChartOptionsFor(chartReq),
	})
}
