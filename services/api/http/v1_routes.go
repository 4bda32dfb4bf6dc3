package http

// registerV1Routes sets up the v1 API structure
// Groups: /api/v1/core, /api/v1/availabilities, /api/v1/insumos, /api/v1/session
func (s *Server) registerV1Routes() {
	v1 := s.engine.Group("/api/v1")
	v1.Use(apiVersionMiddleware()) // Add X-API-Version: v1 header

	// Core endpoints - unit metadata
	core := v1.Group("/core")
	{
		core.GET("/units", s.handleV1ListUnits)
		core.GET("/units/:id", s.handleV1GetUnit)
	}

	// Availability figures from the upstream systems (read-only)
	v1.GET("/availabilities", s.handleV1ListAvailabilities)

	// Insumo endpoints - prior submissions, the submission pipeline, export
	ins := v1.Group("/insumos")
	{
		ins.GET("", s.handleV1ListInsumos)
		ins.POST("", s.handleV1SubmitInsumos)
		ins.POST("/form", s.handleV1SubmitInsumoForm)
		ins.GET("/flash", s.handleV1InsumoFlash)
		ins.GET("/export", s.handleV1ExportInsumos)
	}

	// Session endpoints - selector state persistence
	v1.GET("/session", s.handleV1GetSession)
	v1.PUT("/session", s.handleV1PutSession)
}
