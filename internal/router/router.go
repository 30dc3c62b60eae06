package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/middleware"
	"github.com/clipforge/clipforge/internal/modules/handler"
	"github.com/clipforge/clipforge/internal/modules/serializer"
	"github.com/clipforge/clipforge/internal/telemetry"
)

type RouterDeps struct {
	Config          *config.Config
	Log             *zap.Logger
	ProjectHandler  *handler.ProjectHandler
	FileHandler     *handler.FileHandler
	ChatHandler     *handler.ChatHandler
	SandboxHandler  *handler.SandboxHandler
	ToolHandler     *handler.ToolHandler
	SettingsHandler *handler.SettingsHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	// Initialize logger for serializer package
	serializer.SetLogger(d.Log)

	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OTLPEndpoint != "" {
		r.Use(telemetry.GinMiddleware(d.Config.App.Name))
		r.Use(telemetry.TraceIDMiddleware())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	v1 := r.Group("/api/v1")
	{
		v1.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "pong"}) })

		v1.GET("/tools", d.ToolHandler.ListTools)

		v1.GET("/settings", d.SettingsHandler.GetSettings)
		v1.PUT("/settings", d.SettingsHandler.UpdateSettings)

		agent := v1.Group("/agent")
		{
			agent.POST("/start", d.ChatHandler.AgentStart)
			agent.GET("/status", d.ChatHandler.AgentStatus)
		}

		project := v1.Group("/project")
		{
			project.GET("", d.ProjectHandler.ListProjects)
			project.POST("", d.ProjectHandler.CreateProject)
			project.GET("/:project_id", d.ProjectHandler.GetProject)
			project.PUT("/:project_id/title", d.ProjectHandler.RenameProject)
			project.DELETE("/:project_id", d.ProjectHandler.DeleteProject)

			project.POST("/:project_id/file", d.FileHandler.UploadFile)
			project.PUT("/:project_id/file/main", d.FileHandler.SetMainVideo)

			project.POST("/:project_id/chat", d.ChatHandler.Chat)

			project.GET("/:project_id/sandbox", d.SandboxHandler.ListSandbox)
			project.GET("/:project_id/sandbox/:area/:name", d.SandboxHandler.GetFile)
		}
	}
	return r
}
