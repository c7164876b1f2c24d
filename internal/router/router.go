// Package router wires handlers to routes and assembles the gin engine.
package router

import (
	"github.com/martijnhiemstra/selfsuffient/internal/config"
	"github.com/martijnhiemstra/selfsuffient/internal/handler"
	"github.com/martijnhiemstra/selfsuffient/internal/middleware"
	"github.com/martijnhiemstra/selfsuffient/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// New builds the HTTP engine with all routes registered.
func New(db *gorm.DB, cfg *config.Config) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.CORS())
	r.MaxMultipartMemory = cfg.MaxUploadBytes()

	email := service.NewEmailSender(cfg)
	calendar := service.NewCalendarService(cfg)
	categorizer := service.NewCategorizer()

	authH := handler.NewAuthHandler(db, cfg, email)
	projectH := handler.NewProjectHandler(db, cfg)
	diaryH := handler.NewDiaryHandler(db)
	galleryH := handler.NewGalleryHandler(db, cfg)
	blogH := handler.NewBlogHandler(db, cfg)
	libraryH := handler.NewLibraryHandler(db)
	taskH := handler.NewTaskHandler(db)
	routineH := handler.NewRoutineHandler(db)
	dashboardH := handler.NewDashboardHandler(db)
	checklistH := handler.NewChecklistHandler(db)
	financeH := handler.NewFinanceHandler(db)
	budgetH := handler.NewBudgetHandler(db)
	importH := handler.NewImportHandler(db, cfg)
	exportH := handler.NewExportHandler(db)
	publicH := handler.NewPublicHandler(db)
	adminH := handler.NewAdminHandler(db)
	healthH := handler.NewHealthHandler(db)
	fileH := handler.NewFileHandler(db, cfg)
	calendarH := handler.NewCalendarHandler(db, calendar)
	openaiH := handler.NewOpenAIHandler(db, cfg, categorizer)

	api := r.Group("/api")
	api.GET("/health", healthH.Check)
	api.GET("/files/:filename", fileH.Serve)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authH.Login)
		auth.POST("/forgot-password", authH.ForgotPassword)
		auth.POST("/reset-password", authH.ResetPassword)
	}

	public := api.Group("/public")
	{
		public.GET("/projects", publicH.ListProjects)
		public.GET("/projects/:projectID", publicH.GetProject)
		public.GET("/projects/:projectID/blog", publicH.ListBlog)
		public.GET("/projects/:projectID/blog/:entryID", publicH.GetBlog)
		public.GET("/projects/:projectID/gallery", publicH.ListGallery)
		public.GET("/projects/:projectID/library", publicH.ListLibrary)
		public.GET("/projects/:projectID/library/:entryID", publicH.GetLibrary)
	}

	// The Google OAuth callback arrives without our bearer token; the
	// state parameter identifies the user.
	api.GET("/google-calendar/callback", calendarH.Callback)

	authed := api.Group("")
	authed.Use(middleware.Auth(cfg.JWT.Secret, db))
	{
		me := authed.Group("/auth")
		{
			me.GET("/me", authH.Me)
			me.PUT("/me", authH.UpdateMe)
			me.POST("/change-password", authH.ChangePassword)
			me.POST("/test-email", authH.TestEmail)
		}

		projects := authed.Group("/projects")
		{
			projects.GET("", projectH.List)
			projects.POST("", projectH.Create)
			projects.GET("/:projectID", projectH.Get)
			projects.PUT("/:projectID", projectH.Update)
			projects.DELETE("/:projectID", projectH.Delete)
			projects.POST("/:projectID/image", projectH.UploadImage)
			projects.GET("/:projectID/dashboard", dashboardH.Overview)

			diary := projects.Group("/:projectID/diary")
			{
				diary.GET("", diaryH.List)
				diary.POST("", diaryH.Create)
				diary.GET("/:entryID", diaryH.Get)
				diary.PUT("/:entryID", diaryH.Update)
				diary.DELETE("/:entryID", diaryH.Delete)
			}

			gallery := projects.Group("/:projectID/gallery")
			{
				gallery.GET("/folders", galleryH.ListFolders)
				gallery.POST("/folders", galleryH.CreateFolder)
				gallery.PUT("/folders/:folderID", galleryH.UpdateFolder)
				gallery.DELETE("/folders/:folderID", galleryH.DeleteFolder)
				gallery.GET("/folders/:folderID/path", galleryH.FolderPath)
				gallery.GET("/images", galleryH.ListImages)
				gallery.POST("/images", galleryH.UploadImage)
				gallery.PUT("/images/:imageID/move", galleryH.MoveImage)
				gallery.DELETE("/images/:imageID", galleryH.DeleteImage)
			}

			blog := projects.Group("/:projectID/blog")
			{
				blog.GET("", blogH.List)
				blog.POST("", blogH.Create)
				blog.GET("/:entryID", blogH.Get)
				blog.PUT("/:entryID", blogH.Update)
				blog.DELETE("/:entryID", blogH.Delete)
				blog.POST("/:entryID/images", blogH.UploadImage)
				blog.DELETE("/images/:imageID", blogH.DeleteImage)
			}

			library := projects.Group("/:projectID/library")
			{
				library.GET("/folders", libraryH.ListFolders)
				library.POST("/folders", libraryH.CreateFolder)
				library.PUT("/folders/:folderID", libraryH.UpdateFolder)
				library.DELETE("/folders/:folderID", libraryH.DeleteFolder)
				library.GET("/folders/:folderID/path", libraryH.FolderPath)
				library.GET("", libraryH.ListEntries)
				library.POST("", libraryH.CreateEntry)
				library.GET("/:entryID", libraryH.GetEntry)
				library.PUT("/:entryID", libraryH.UpdateEntry)
				library.DELETE("/:entryID", libraryH.DeleteEntry)
			}

			tasks := projects.Group("/:projectID/tasks")
			{
				tasks.GET("", taskH.List)
				tasks.POST("", taskH.Create)
				tasks.GET("/:taskID", taskH.Get)
				tasks.PUT("/:taskID", taskH.Update)
				tasks.DELETE("/:taskID", taskH.Delete)
			}

			routines := projects.Group("/:projectID/routines")
			{
				routines.GET("", routineH.List)
				routines.POST("", routineH.Create)
				routines.PUT("/:taskID", routineH.Update)
				routines.DELETE("/:taskID", routineH.Delete)
				routines.POST("/:taskID/complete", routineH.Complete)
				routines.DELETE("/:taskID/complete", routineH.Uncomplete)
			}
		}

		checklists := authed.Group("/checklists")
		{
			checklists.GET("", checklistH.List)
			checklists.POST("", checklistH.Create)
			checklists.GET("/:checklistID", checklistH.Get)
			checklists.PUT("/:checklistID", checklistH.Update)
			checklists.DELETE("/:checklistID", checklistH.Delete)
			checklists.POST("/:checklistID/items", checklistH.AddItem)
			checklists.PUT("/:checklistID/items/:itemID", checklistH.UpdateItem)
			checklists.POST("/:checklistID/items/:itemID/toggle", checklistH.ToggleItem)
			checklists.DELETE("/:checklistID/items/:itemID", checklistH.DeleteItem)
			checklists.POST("/:checklistID/reset", checklistH.Reset)
		}

		dashboard := authed.Group("/dashboard")
		{
			dashboard.GET("/data", dashboardH.Data)
			dashboard.GET("/all-tasks", dashboardH.AllTasks)
		}

		finance := authed.Group("/finance")
		{
			finance.GET("/accounts", financeH.ListAccounts)
			finance.POST("/accounts", financeH.CreateAccount)
			finance.PUT("/accounts/:accountID", financeH.UpdateAccount)
			finance.DELETE("/accounts/:accountID", financeH.DeleteAccount)

			finance.GET("/categories", financeH.ListCategories)
			finance.POST("/categories", financeH.CreateCategory)
			finance.POST("/categories/defaults", financeH.CreateDefaultCategories)
			finance.PUT("/categories/:categoryID", financeH.UpdateCategory)
			finance.DELETE("/categories/:categoryID", financeH.DeleteCategory)

			finance.GET("/transactions", financeH.ListTransactions)
			finance.POST("/transactions", financeH.CreateTransaction)
			finance.POST("/transactions/transfer", financeH.Transfer)
			finance.PUT("/transactions/:transactionID", financeH.UpdateTransaction)
			finance.DELETE("/transactions/:transactionID", financeH.DeleteTransaction)

			finance.GET("/recurring", financeH.ListRecurring)
			finance.POST("/recurring", financeH.CreateRecurring)
			finance.PUT("/recurring/:recurringID", financeH.UpdateRecurring)
			finance.DELETE("/recurring/:recurringID", financeH.DeleteRecurring)

			finance.GET("/savings-goals", financeH.ListSavingsGoals)
			finance.POST("/savings-goals", financeH.CreateSavingsGoal)
			finance.PUT("/savings-goals/:goalID", financeH.UpdateSavingsGoal)
			finance.DELETE("/savings-goals/:goalID", financeH.DeleteSavingsGoal)

			finance.GET("/dashboard", financeH.Dashboard)
			finance.GET("/monthly", financeH.Monthly)
			finance.GET("/runway", financeH.Runway)
			finance.GET("/export", exportH.Transactions)
		}

		budgetGroup := authed.Group("/budget")
		{
			budgetGroup.GET("/periods", budgetH.ListPeriods)
			budgetGroup.POST("/periods", budgetH.CreatePeriod)
			budgetGroup.GET("/periods/:periodID", budgetH.GetPeriod)
			budgetGroup.PUT("/periods/:periodID", budgetH.UpdatePeriod)
			budgetGroup.DELETE("/periods/:periodID", budgetH.DeletePeriod)
			budgetGroup.POST("/periods/:periodID/items", budgetH.CreateItem)
			budgetGroup.PUT("/items/:itemID", budgetH.UpdateItem)
			budgetGroup.DELETE("/items/:itemID", budgetH.DeleteItem)
			budgetGroup.GET("/comparison", budgetH.Comparison)
		}

		importGroup := authed.Group("/import")
		{
			importGroup.POST("/preview", importH.Preview)
			importGroup.POST("/confirm", importH.Confirm)
			importGroup.GET("/sample-csv", importH.SampleCSV)
		}

		googleCalendar := authed.Group("/google-calendar")
		{
			googleCalendar.GET("/status", calendarH.Status)
			googleCalendar.GET("/auth-url", calendarH.AuthURL)
			googleCalendar.POST("/disconnect", calendarH.Disconnect)
			googleCalendar.GET("/calendars", calendarH.ListCalendars)
			googleCalendar.PUT("/calendar", calendarH.SelectCalendar)
			googleCalendar.POST("/sync-task", calendarH.SyncTask)
		}

		openai := authed.Group("/openai")
		{
			openai.GET("/settings", openaiH.Settings)
			openai.PUT("/settings", openaiH.UpdateSettings)
			openai.DELETE("/settings", openaiH.DeleteSettings)
			openai.POST("/test", openaiH.Test)
			openai.POST("/categorize", openaiH.Categorize)
		}

		admin := authed.Group("/admin")
		{
			admin.GET("/users", adminH.ListUsers)
			admin.POST("/users", adminH.CreateUser)
			admin.PUT("/users/:userID", adminH.UpdateUser)
			admin.DELETE("/users/:userID", adminH.DeleteUser)
			admin.GET("/stats", adminH.Stats)
		}
	}

	return r
}
