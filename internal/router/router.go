package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/fleetfilm/fleetfilm-api/internal/handler"
	"github.com/fleetfilm/fleetfilm-api/internal/middleware"
	"github.com/fleetfilm/fleetfilm-api/internal/model"
)

// Handlers bundles everything the router mounts so main.go passes one
// struct instead of nine arguments.
type Handlers struct {
	Auth     *handler.AuthHandler
	Films    *handler.FilmHandler
	Pipeline *handler.PipelineHandler
	Votes    *handler.VoteHandler
	Location *handler.LocationHandler
	Metadata *handler.MetadataHandler
	Export   *handler.ExportHandler
	Users    *handler.UserHandler
}

// RegisterRoutes wires the full HTTP surface. Three tiers:
//   - public: health check and the auth endpoints themselves
//   - member: any signed-in user (browse, submit, vote)
//   - committee/admin: status transitions, locations, export
//
// Role enforcement happens here on the server; the client UI hiding a
// button is not a security boundary.
func RegisterRoutes(e *echo.Echo, h Handlers, db *sql.DB, jwtSecret string) {
	e.GET("/healthz", handler.Health(db))

	g := e.Group("/v1/auth")
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login)
	g.POST("/refresh", h.Auth.Refresh)
	g.POST("/refresh-access", h.Auth.RefreshAccess)
	// Logout takes a refresh token in the body (or a bearer header for
	// all-sessions logout), so it stays outside the JWT group.
	g.POST("/logout", h.Auth.Logout)

	// Any signed-in member: browse the pipeline, suggest films, vote.
	member := e.Group("/v1")
	member.Use(middleware.JWTAuth(jwtSecret))
	member.GET("/me", h.Auth.Me)
	member.POST("/films", h.Films.Submit)
	member.GET("/films", h.Films.List)
	member.GET("/films/:id", h.Films.Get)
	member.PUT("/films/:id/vote", h.Votes.Cast)
	member.GET("/films/:id/tally", h.Votes.Tally)
	member.GET("/locations", h.Location.List)
	member.GET("/locations/:id", h.Location.Get)
	member.GET("/metadata/search", h.Metadata.Search)
	member.GET("/metadata/:imdbID", h.Metadata.Details)

	// Committee and admins: everything that moves a film or edits shared
	// reference data.
	committee := e.Group("/v1")
	committee.Use(middleware.JWTAuth(jwtSecret))
	committee.Use(middleware.RequireRole(model.RoleCommittee, model.RoleAdmin))
	committee.PATCH("/films/:id", h.Films.UpdateDetails)
	committee.POST("/films/:id/review", h.Pipeline.MoveToReview)
	committee.POST("/films/:id/validate", h.Pipeline.ValidateBasic)
	committee.POST("/films/:id/voting", h.Pipeline.StartVoting)
	committee.POST("/films/:id/distributor", h.Pipeline.ResolveDistributor)
	committee.POST("/films/:id/programme", h.Pipeline.SelectForProgramme)
	committee.POST("/films/:id/discard", h.Pipeline.Discard)
	committee.POST("/films/:id/restore", h.Pipeline.Restore)
	committee.POST("/films/:id/archive", h.Pipeline.Archive)
	committee.POST("/films/next-programme/archive", h.Pipeline.ArchiveNextProgramme)
	committee.PUT("/films/:id/schedule", h.Pipeline.Schedule)
	committee.POST("/locations", h.Location.Create)
	committee.PUT("/locations/:id", h.Location.Update)
	committee.DELETE("/locations/:id", h.Location.Delete)
	committee.GET("/addresses", h.Location.LookupAddresses)
	committee.GET("/export/greenlist.csv", h.Export.Greenlist)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.PUT("/users/:id/role", h.Users.UpdateRole)
}
