package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/tuition-center-api/internal/middleware"
	"github.com/noah-isme/tuition-center-api/internal/service"
)

// Router groups the HTTP handlers and the middleware dependencies that gate them.
type Router struct {
	Auth               *AuthHandler
	Users              *UserHandler
	Teachers           *TeacherHandler
	Classes            *ClassHandler
	Subjects           *SubjectHandler
	SubjectAssignments *SubjectAssignmentHandler
	Students           *StudentHandler
	Guardians          *GuardianHandler
	Enrollments        *EnrollmentHandler
	Deletion           *DeletionHandler
	Codes              *CodeHintHandler
	Dashboard          *DashboardHandler

	Tokens     middleware.TokenValidator
	Audit      middleware.AuditWriter
	Invalidate func(ctx context.Context)
	Logger     *zap.Logger
}

// Register mounts every API route on api. Authorization runs before any handler so a rejected
// request never reaches service code.
func (r *Router) Register(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	auth.POST("/login", r.Auth.Login)
	auth.POST("/login/admin", r.Auth.AdminLogin)
	auth.POST("/login/staff", r.Auth.StaffLogin)
	auth.POST("/refresh", r.Auth.Refresh)

	authed := api.Group("")
	authed.Use(middleware.JWT(r.Tokens))
	authed.POST("/auth/logout", r.Auth.Logout)
	authed.POST("/auth/change-password", r.Auth.ChangePassword)
	authed.GET("/auth/me", r.Auth.Me)

	admin := middleware.RequireAdmin()
	staff := middleware.RequireStaffOrAdmin()

	protected := authed.Group("")
	protected.Use(staff)
	if r.Invalidate != nil {
		protected.Use(middleware.InvalidateOnWrite(r.Invalidate))
	}

	users := protected.Group("/users/staff", admin)
	users.GET("", r.Users.ListStaff)
	users.POST("", r.Users.CreateStaff)
	users.PUT("/:id/password", r.Users.ChangePassword)
	users.DELETE("/:id", r.Users.DeleteStaff)

	teachers := protected.Group("/teachers")
	teachers.GET("", r.Teachers.List)
	teachers.GET("/:id", r.Teachers.Get)
	teachers.POST("", r.audit("teachers"), r.Teachers.Create)
	teachers.PUT("/:id", r.audit("teachers"), r.Teachers.Update)
	teachers.DELETE("/:id", admin, r.Deletion.DeleteTeacher)

	classes := protected.Group("/classes")
	classes.GET("", r.Classes.List)
	classes.GET("/next-code", r.Codes.Next(service.HintClasses))
	classes.GET("/:id", r.Classes.Get)
	classes.GET("/:id/roster", r.Classes.Roster)
	classes.POST("", r.audit("classes"), r.Classes.Create)
	classes.PUT("/:id", r.audit("classes"), r.Classes.Update)
	classes.DELETE("/:id", admin, r.Deletion.DeleteClass)

	subjects := protected.Group("/subjects")
	subjects.GET("", r.Subjects.List)
	subjects.GET("/next-code", r.Codes.Next(service.HintSubjects))
	subjects.GET("/:id", r.Subjects.Get)
	subjects.POST("", r.audit("subjects"), r.Subjects.Create)
	subjects.PUT("/:id", r.audit("subjects"), r.Subjects.Update)
	subjects.DELETE("/:id", admin, r.Deletion.DeleteSubject)

	assignments := protected.Group("/subject-assignments")
	assignments.GET("", r.SubjectAssignments.List)
	assignments.GET("/next-code", r.Codes.Next(service.HintAssignments))
	assignments.GET("/:id", r.SubjectAssignments.Get)
	assignments.POST("", r.audit("subject_assignments"), r.SubjectAssignments.Create)
	assignments.PUT("/:id", r.audit("subject_assignments"), r.SubjectAssignments.Update)
	assignments.DELETE("/:id", admin, r.audit("subject_assignments"), r.SubjectAssignments.Delete)

	students := protected.Group("/students")
	students.GET("", r.Students.List)
	students.GET("/next-code", r.Codes.Next(service.HintStudents))
	students.GET("/:id", r.Students.Get)
	students.POST("", r.audit("students"), r.Students.Create)
	students.PUT("/:id", r.audit("students"), r.Students.Update)
	students.DELETE("/:id", admin, r.audit("students"), r.Students.Delete)

	guardians := protected.Group("/guardians")
	guardians.GET("", r.Guardians.List)
	guardians.GET("/:id", r.Guardians.Get)
	guardians.POST("", r.audit("guardians"), r.Guardians.Create)
	guardians.PUT("/:id", r.audit("guardians"), r.Guardians.Update)
	guardians.DELETE("/:id", r.audit("guardians"), r.Guardians.Delete)

	enrollments := protected.Group("/enrollments")
	enrollments.GET("", r.Enrollments.List)
	enrollments.GET("/:id", r.Enrollments.Get)
	enrollments.POST("", admin, r.Enrollments.Create)
	enrollments.PUT("/:id", r.audit("enrollments"), r.Enrollments.Update)
	enrollments.DELETE("/:id", admin, r.audit("enrollments"), r.Enrollments.Delete)

	if r.Dashboard != nil {
		protected.GET("/dashboard", middleware.WithResponseMeta(), r.Dashboard.Summary)
	}
}

func (r *Router) audit(resource string) gin.HandlerFunc {
	return middleware.Audit(r.Audit, resource, r.Logger)
}
