package api

import (
	"context"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/qrdesk/qr-admin-api/docs"
	v1 "github.com/qrdesk/qr-admin-api/internal/api/handler/v1"
	"github.com/qrdesk/qr-admin-api/internal/api/middleware"
	"github.com/qrdesk/qr-admin-api/internal/config"
	"github.com/qrdesk/qr-admin-api/internal/queue"
	"github.com/qrdesk/qr-admin-api/internal/repository"
	"github.com/qrdesk/qr-admin-api/internal/repository/dao"
	"github.com/qrdesk/qr-admin-api/internal/service"
	"github.com/qrdesk/qr-admin-api/internal/storage"
)

const basePath = "/api/v1"

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
	Hub    *v1.NotificationHub
	Pool   *queue.Pool

	users *service.UserService
}

type repositories struct {
	users         *repository.UserRepository
	plans         *repository.PlanRepository
	qrs           *repository.QrRepository
	questions     *repository.QuestionRepository
	items         *repository.ItemRepository
	stock         *repository.StockRepository
	responses     *repository.FormResponseRepository
	wishes        *repository.WishRepository
	pins          *repository.PinRepository
	batches       *repository.QrBatchRepository
	exports       *repository.WishImageExportRepository
	notifications *repository.NotificationRepository
}

func newRepositories(db *gorm.DB) repositories {
	return repositories{
		users:         repository.NewUserRepository(dao.NewUserDAO(db)),
		plans:         repository.NewPlanRepository(dao.NewPlanDAO(db)),
		qrs:           repository.NewQrRepository(dao.NewQrDAO(db)),
		questions:     repository.NewQuestionRepository(dao.NewQuestionDAO(db)),
		items:         repository.NewItemRepository(dao.NewItemDAO(db)),
		stock:         repository.NewStockRepository(dao.NewStockDAO(db)),
		responses:     repository.NewFormResponseRepository(dao.NewFormResponseDAO(db)),
		wishes:        repository.NewWishRepository(dao.NewWishDAO(db)),
		pins:          repository.NewPinRepository(dao.NewPinDAO(db)),
		batches:       repository.NewQrBatchRepository(dao.NewQrBatchDAO(db)),
		exports:       repository.NewWishImageExportRepository(dao.NewWishImageExportDAO(db)),
		notifications: repository.NewNotificationRepository(dao.NewNotificationDAO(db)),
	}
}

// NewServer wires every layer. Background jobs go to jobs and are handled
// by s.Pool, private holds generated archives and public the wish cards.
func NewServer(conf *config.AppConfig, db *gorm.DB, jobs queue.Queue, private, public *storage.Disk) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
		Hub:    v1.NewNotificationHub(conf.API.AllowedCORSDomains),
		Pool:   queue.NewPool(jobs, conf.Worker.Concurrency),
	}

	repos := newRepositories(db)
	links := service.Links{APIBase: APIBase(conf.API.BaseURL)}

	s.users = service.NewUserService(repos.users)
	notifications := service.NewNotificationService(repos.notifications, s.Hub)
	qrs := service.NewQrService(repos.qrs, repos.questions, repos.items)
	wishes := service.NewWishService(repos.wishes, repos.qrs, public)
	batches := service.NewQrBatchService(repos.batches, private, jobs, links, conf.Batch.MaxQuantity)
	exports := service.NewWishImageExportService(repos.exports, repos.wishes, repos.qrs, public, private, jobs, notifications, links)
	generator := service.NewQrBatchGenerator(repos.batches, private, repos.users, notifications, links,
		conf.Batch.InsertChunkSize, conf.Batch.MaxCodesPerPDF)

	s.Pool.Register(queue.KindGenerateQrBatch, generator.Handle)
	s.Pool.Register(queue.KindExportWishImages, exports.Handle)

	s.MountMiddlewares()
	s.MountHandlers(handlers{
		auth:          v1.NewAuthHandler(conf.API, service.NewAuthService(repos.users)),
		users:         v1.NewUserHandler(s.users),
		plans:         v1.NewPlanHandler(service.NewPlanService(repos.plans)),
		qrs:           v1.NewQrHandler(qrs),
		questions:     v1.NewQuestionHandler(service.NewQuestionService(repos.questions, repos.qrs)),
		items:         v1.NewItemHandler(service.NewItemService(repos.items, repos.qrs)),
		stock:         v1.NewStockHandler(service.NewStockService(repos.stock, repos.qrs)),
		responses:     v1.NewFormResponseHandler(service.NewFormResponseService(repos.responses, repos.qrs)),
		wishes:        v1.NewWishHandler(wishes),
		pins:          v1.NewPinHandler(service.NewPinService(repos.pins, repos.qrs), qrs),
		batches:       v1.NewQrBatchHandler(batches),
		exports:       v1.NewWishImageExportHandler(exports),
		notifications: v1.NewNotificationHandler(notifications, s.Hub),
		public: v1.NewPublicHandler(
			service.NewPublicService(repos.qrs, repos.questions, repos.responses, repos.items, repos.stock, repos.pins),
			wishes,
		),
	})

	return s
}

// EnsureAdmin creates the configured bootstrap admin when no admin exists.
func (s *Server) EnsureAdmin(ctx context.Context) error {
	api := s.Config.API
	if api.BootstrapAdminEmail == "" || api.BootstrapAdminPassword == "" {
		return nil
	}

	return s.users.EnsureAdmin(ctx, api.BootstrapAdminName, api.BootstrapAdminEmail, api.BootstrapAdminPassword)
}

// APIBase turns the configured host into the absolute prefix of links
// handed out in payloads.
func APIBase(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	return base + basePath
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

type handlers struct {
	auth          *v1.AuthHandler
	users         *v1.UserHandler
	plans         *v1.PlanHandler
	qrs           *v1.QrHandler
	questions     *v1.QuestionHandler
	items         *v1.ItemHandler
	stock         *v1.StockHandler
	responses     *v1.FormResponseHandler
	wishes        *v1.WishHandler
	pins          *v1.PinHandler
	batches       *v1.QrBatchHandler
	exports       *v1.WishImageExportHandler
	notifications *v1.NotificationHandler
	public        *v1.PublicHandler
}

func (s *Server) MountHandlers(h handlers) {
	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/login", h.auth.HandleLogin)
	}

	public := s.Router.Group(basePath + "/public")
	{
		public.GET("/entry", h.public.HandleEntry)
		public.GET("/qrs/:token", h.public.HandleForm)
		public.POST("/qrs/:token/submit", h.public.HandleSubmit)
		public.POST("/qrs/:token/wishes", h.public.HandleSubmitWish)
		public.GET("/qrs/:token/items", h.public.HandleWheelItems)
		public.GET("/qrs/:token/pins/:pin/check", h.public.HandleCheckPin)
		public.POST("/qrs/:token/spin", h.public.HandleSpin)
	}

	admin := s.Router.Group(basePath,
		middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT(),
		middleware.RequireAdmin(s.users),
	)
	{
		admin.GET("/users", h.users.HandleListUsers)
		admin.POST("/users", h.users.HandleCreateUser)
		admin.GET("/users/:userID", h.users.HandleGetUser)
		admin.PUT("/users/:userID", h.users.HandleUpdateUser)
		admin.DELETE("/users/:userID", h.users.HandleDeleteUser)

		admin.GET("/plans", h.plans.HandleListPlans)
		admin.POST("/plans", h.plans.HandleCreatePlan)
		admin.PUT("/plans/:planID", h.plans.HandleUpdatePlan)
		admin.DELETE("/plans/:planID", h.plans.HandleDeletePlan)

		admin.GET("/qrs", h.qrs.HandleListQrs)
		admin.POST("/qrs", h.qrs.HandleCreateQr)
		admin.GET("/qrs/:qrID", h.qrs.HandleGetQr)
		admin.PUT("/qrs/:qrID", h.qrs.HandleUpdateQr)
		admin.DELETE("/qrs/:qrID", h.qrs.HandleDeleteQr)
		admin.POST("/qrs/:qrID/regenerate-token", h.qrs.HandleRegenerateToken)

		admin.GET("/qrs/:qrID/questions", h.questions.HandleListQuestions)
		admin.POST("/qrs/:qrID/questions", h.questions.HandleCreateQuestion)
		admin.PUT("/qrs/:qrID/questions/:questionID", h.questions.HandleUpdateQuestion)
		admin.DELETE("/qrs/:qrID/questions/:questionID", h.questions.HandleDeleteQuestion)

		admin.GET("/qrs/:qrID/items", h.items.HandleListItems)
		admin.POST("/qrs/:qrID/items", h.items.HandleCreateItem)
		admin.PUT("/qrs/:qrID/items/:itemID", h.items.HandleUpdateItem)
		admin.DELETE("/qrs/:qrID/items/:itemID", h.items.HandleDeleteItem)

		admin.GET("/qrs/:qrID/stock-transactions", h.stock.HandleListTransactions)
		admin.POST("/qrs/:qrID/stock-transactions", h.stock.HandleRecordTransaction)

		admin.GET("/qrs/:qrID/responses", h.responses.HandleListResponses)
		admin.GET("/qrs/:qrID/responses/:responseID", h.responses.HandleGetResponse)
		admin.PATCH("/qrs/:qrID/responses/:responseID", h.responses.HandleUpdateResponseStatus)
		admin.DELETE("/qrs/:qrID/responses/:responseID", h.responses.HandleDeleteResponse)

		admin.GET("/qrs/:qrID/wishes", h.wishes.HandleListWishes)
		admin.PATCH("/qrs/:qrID/wishes/:wishID", h.wishes.HandleUpdateWishStatus)
		admin.DELETE("/qrs/:qrID/wishes/:wishID", h.wishes.HandleDeleteWish)

		admin.GET("/qrs/:qrID/pins", h.pins.HandleListPins)
		admin.POST("/qrs/:qrID/pins", h.pins.HandleGeneratePins)
		admin.GET("/qrs/:qrID/pins/export", h.pins.HandleExportPins)

		admin.GET("/qrs/:qrID/wish-image-exports", h.exports.HandleListExports)
		admin.POST("/qrs/:qrID/wish-image-exports", h.exports.HandleRequestExport)
		admin.GET("/wish-image-exports/:exportID/download", h.exports.HandleDownloadExport)

		admin.GET("/qr-batches/settings", h.batches.HandleBatchSettings)
		admin.GET("/qr-batches", h.batches.HandleListBatches)
		admin.POST("/qr-batches", h.batches.HandleCreateBatch)
		admin.GET("/qr-batches/:batchID", h.batches.HandleGetBatch)
		admin.GET("/qr-batches/:batchID/download", h.batches.HandleDownloadBatch)

		admin.GET("/notifications", h.notifications.HandleFeed)
		admin.GET("/notifications/poll", h.notifications.HandlePoll)
		admin.POST("/notifications/mark-all-read", h.notifications.HandleMarkAllRead)
		admin.POST("/notifications/:notificationID/read", h.notifications.HandleMarkRead)
		admin.GET("/notifications/ws", h.notifications.HandleWebSocket)
	}

	s.Router.GET("/", v1.HandleHealth)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "QR Admin API"
	docs.SwaggerInfo.Description = "Admin and public API for QR codes, their forms, wishes and prize wheels."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
