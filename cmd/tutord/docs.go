package main

// General API documentation for swaggo. Run `swag init -g cmd/tutord/docs.go` to regenerate docs.
//
// @title           tutord API
// @version         1.0
// @description     HTTP API for the on-device tutor model: asset download, initialization and generation.
//
// @contact.name   tutord maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
