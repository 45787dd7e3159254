package server

//go:generate swag init -g internal/server/server.go -o docs/swagger

// @title NodePress Designer API
// @version 0.1
// @description Interactive documentation for the theme designer API surface.
// @contact.name NodePress Maintainers
// @contact.url https://github.com/nodepress/designer
// @BasePath /
