package main

import "taskly/internal/app"

// @title           Taskly API
// @version         1.0
// @description     Multi-tenant task management backend.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	app.Run()
}
