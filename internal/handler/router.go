package handler

import (
	"github.com/gin-gonic/gin"

	"mindcare-go/internal/service"
)

// RegisterRoutes mounts the API on r. trends may be nil when the search index is disabled.
func RegisterRoutes(r *gin.Engine, analysisService service.AnalysisService, historyService service.HistoryService, trends TrendSource) {
	health := Health(analysisService)
	r.GET("/", health)
	r.GET("/healthz", health)

	// unversioned paths keep the Streamlit app and the React frontend working
	compat := NewCompatHandler(analysisService, historyService)
	r.POST("/predict", compat.Predict)
	r.POST("/history", compat.SaveChat)
	r.GET("/history/:user_id", compat.GetHistory)
	r.DELETE("/history/:chat_id", compat.DeleteChat)
	r.GET("/get_chats/:user_id", compat.GetHistory)
	r.DELETE("/delete_chat/:chat_id", compat.DeleteChat)
	r.GET("/get_insights/:user_id", compat.GetInsights)

	analysis := NewAnalysisHandler(analysisService)
	history := NewHistoryHandler(historyService)

	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/predict", analysis.Predict)

		apiV1.POST("/history", history.SaveChat)
		apiV1.GET("/history/:user_id", history.GetHistory)
		apiV1.DELETE("/history/:chat_id", history.DeleteChat)
		apiV1.GET("/insights/:user_id", history.GetInsights)

		if trends != nil {
			apiV1.GET("/trends/:user_id", NewTrendHandler(trends).GetTrend)
		}
	}
}
