package internal

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Store      Store
	Tokens     *TokenService
	Hasher     Hasher
	Aggregator *Aggregator
	Submitter  *Submitter
	Metrics    *Metrics
	Log        *zap.Logger
}

func NewDeps(store Store, tokens *TokenService, hasher Hasher, metrics *Metrics, log *zap.Logger) *Deps {
	return &Deps{
		Store:      store,
		Tokens:     tokens,
		Hasher:     hasher,
		Aggregator: NewAggregator(store, 4),
		Submitter:  NewSubmitter(store),
		Metrics:    metrics,
		Log:        log,
	}
}

func NewRouter(d *Deps) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Recovery(d.Log), RequestLogger(d.Log))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", d.Metrics.Handler())
	}
	r.NoRoute(RouteNotFound())

	r.GET("/healthz", Health(d))
	r.POST("/signup", Signup(d))
	r.POST("/login", Login(d))

	auth := Authenticate(d.Tokens)
	r.GET("/me", auth, Me(d))
	r.PATCH("/me", auth, PatchMe(d))
	r.DELETE("/me", auth, DeleteMe(d))
	r.POST("/new", auth, SubmitRecord(d))

	admin := r.Group("/admin", auth, RequireRole(RoleAdmin))
	{
		admin.GET("/users", AdminUsers(d))
		admin.GET("/user/:id", AdminGetUser(d))
		admin.PATCH("/user/:id", AdminPatchUser(d))
		admin.DELETE("/user/:id", AdminDeleteUser(d))
		admin.POST("/user/:id", AdminSubmitRecord(d))
	}

	r.GET("/:record_type/:category/:cup", Leaderboard(d))
	return r
}
