package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/kardemumma/internal/app"
	"github.com/shrimpsizemoose/kardemumma/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	portal := handlers.NewPortalHandler(service)

	http.HandleFunc("POST /api/v1/login", portal.HandleLogin)

	http.HandleFunc("POST /api/v1/admin/users", portal.HandleCreateUser)
	http.HandleFunc("GET /api/v1/admin/users", portal.HandleListUsers)
	http.HandleFunc("DELETE /api/v1/admin/users/{userID}", portal.HandleDeleteUser)
	http.HandleFunc("POST /api/v1/admin/users/bulk", portal.HandleBulkImportUsers)
	http.HandleFunc("POST /api/v1/admin/labs", portal.HandleCreateLab)
	http.HandleFunc("GET /api/v1/admin/labs", portal.HandleListLabs)
	http.HandleFunc("POST /api/v1/admin/labs/bulk", portal.HandleBulkImportLabs)
	http.HandleFunc("POST /api/v1/admin/assignments", portal.HandleCreateAssignment)
	http.HandleFunc("GET /api/v1/admin/assignments", portal.HandleListAssignments)

	http.HandleFunc("GET /api/v1/faculty/labs", portal.HandleAssignedLabs)
	http.HandleFunc("GET /api/v1/faculty/labs/{assignmentID}/students", portal.HandleStudentsForLab)
	http.HandleFunc("POST /api/v1/faculty/labs/{assignmentID}/marks", portal.HandleSubmitMarks)
	http.HandleFunc("GET /api/v1/faculty/labs/{assignmentID}/marks", portal.HandleMarkHistory)

	http.HandleFunc("GET /api/v1/student/me/marks", portal.HandleMyMarks)
	http.HandleFunc("GET /api/v1/student/me/profile", portal.HandleMyProfile)
	http.HandleFunc("POST /api/v1/me/password", portal.HandleUpdatePassword)

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting kardemumma server on %s", service.Config.Server.Port)
	if !service.Sessions.Enabled() {
		logger.Info.Println("Auth disabled, trusting identity headers")
	}
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Kardemumma server failed: %v", err)
	}
}
