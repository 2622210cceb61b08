package server

//go:generate swag init -g internal/server/server.go -o internal/server/docs

// @title Thoth User API (demo)
// @version 0.1
// @description In-process implementation of the User API endpoints consumed by thamos.
// @contact.name Thamos Maintainers
// @contact.url https://github.com/raysh454/thamos
// @BasePath /api/v1
